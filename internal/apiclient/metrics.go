package apiclient

import (
	"sync/atomic"
	"time"
)

// Metrics tracks backend call metrics for one client
type Metrics struct {
	calls   int64
	errors  int64
	latency int64 // total latency in nanoseconds
}

// MetricsSnapshot is a point-in-time copy of Metrics
type MetricsSnapshot struct {
	Calls   int64
	Errors  int64
	Latency time.Duration
}

func (m *Metrics) record(duration time.Duration, err error) {
	atomic.AddInt64(&m.calls, 1)
	atomic.AddInt64(&m.latency, duration.Nanoseconds())
	if err != nil {
		atomic.AddInt64(&m.errors, 1)
	}
}

func (m *Metrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Calls:   atomic.LoadInt64(&m.calls),
		Errors:  atomic.LoadInt64(&m.errors),
		Latency: time.Duration(atomic.LoadInt64(&m.latency)),
	}
}

// AverageLatency returns the average latency in milliseconds
func (s MetricsSnapshot) AverageLatency() float64 {
	if s.Calls == 0 {
		return 0
	}
	return float64(s.Latency.Nanoseconds()) / float64(s.Calls) / 1e6
}

// ErrorRate returns the error rate as a percentage
func (s MetricsSnapshot) ErrorRate() float64 {
	if s.Calls == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Calls) * 100
}
