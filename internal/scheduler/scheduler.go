package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/civictrack/civictrack-go/internal/dashboard"
	"github.com/civictrack/civictrack-go/internal/logging"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Refresher is whatever gets refreshed on schedule.
type Refresher interface {
	Refetch(ctx context.Context) error
}

// RefreshScheduler forces a project refresh on a cron schedule. Expressions
// take a leading seconds field ("0 */5 * * * *") or a descriptor ("@every 5m").
type RefreshScheduler struct {
	cron      *cron.Cron
	refresher Refresher
	spec      string
	runs      atomic.Int64
	failures  atomic.Int64
}

func NewRefreshScheduler(spec string, refresher Refresher) (*RefreshScheduler, error) {
	s := &RefreshScheduler{
		cron:      cron.New(cron.WithSeconds()),
		refresher: refresher,
		spec:      spec,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *RefreshScheduler) Start() {
	log.Printf("Refresh scheduler started (schedule %q)", s.spec)
	s.cron.Start()
}

// Stop halts the schedule and returns a context that is done once any running
// refresh has finished.
func (s *RefreshScheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce performs one scheduled refresh.
func (s *RefreshScheduler) RunOnce(ctx context.Context) {
	ctx = logging.WithRequestID(ctx, "cron-"+uuid.NewString())
	logger := logging.New(ctx)

	s.runs.Add(1)
	err := s.refresher.Refetch(ctx)
	switch {
	case errors.Is(err, dashboard.ErrSuperseded):
		logger.LogInfo("scheduler.refresh", "superseded by a newer refresh")
		return
	case err != nil && !errors.Is(err, context.Canceled):
		s.failures.Add(1)
		logger.LogError("scheduler.refresh", err)
		return
	}
	logger.LogInfo("scheduler.refresh", "scheduled refresh finished")
}

// Runs returns how many refreshes have been attempted and how many failed.
func (s *RefreshScheduler) Runs() (total, failed int64) {
	return s.runs.Load(), s.failures.Load()
}
