package normalize

import (
	"time"

	"github.com/civictrack/civictrack-go/internal/projects/domain"
)

// Normalizer maps backend records to projects. It holds no state besides its
// clock and progress estimator, so one value can be shared freely.
type Normalizer struct {
	now      func() time.Time
	estimate ProgressEstimator
}

// Option customises a Normalizer.
type Option func(*Normalizer)

// WithClock sets the time source used for progress estimation.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// WithProgressEstimator replaces EstimateProgressFromDates.
func WithProgressEstimator(estimate ProgressEstimator) Option {
	return func(n *Normalizer) {
		if estimate != nil {
			n.estimate = estimate
		}
	}
}

// New creates a Normalizer using the wall clock and the date heuristic.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		now:      time.Now,
		estimate: EstimateProgressFromDates,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Project normalizes a single record. It never fails.
func (n *Normalizer) Project(raw domain.RawProject) domain.Project {
	status := MapStatus(raw.Status)
	isActive := true
	if raw.IsActive != nil {
		isActive = *raw.IsActive
	}
	feedbackCount := 0
	if raw.FeedbackCount != nil {
		feedbackCount = *raw.FeedbackCount
	}

	return domain.Project{
		ID:                 raw.ID,
		Title:              text(raw.Title),
		Description:        text(raw.Description),
		Category:           Category(raw.Category),
		Status:             status,
		Budget:             Budget(raw.Budget),
		Department:         text(raw.Department),
		Contractor:         text(raw.Contractor),
		Coordinates:        domain.Coordinates{copyFloat(raw.Latitude), copyFloat(raw.Longitude)},
		City:               text(raw.City),
		Location:           text(firstPresent(raw.Location, raw.City)),
		StartDate:          optional(raw.StartDate),
		ExpectedCompletion: optional(raw.ExpectedCompletionDate),
		ActualCompletion:   optional(raw.ActualCompletionDate),
		CreatedAt:          optional(raw.CreatedAt),
		UpdatedAt:          optional(raw.UpdatedAt),
		IsActive:           isActive,
		FeedbackCount:      feedbackCount,
		Progress:           n.estimate(raw.StartDate, raw.ExpectedCompletionDate, status, n.now()),
		Image:              optional(firstPresent(raw.Image, raw.ImageURL)),
	}
}

// Projects normalizes a collection, preserving order. A nil input yields an
// empty, non-nil slice.
func (n *Normalizer) Projects(raws []domain.RawProject) []domain.Project {
	out := make([]domain.Project, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.Project(raw))
	}
	return out
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optional treats an empty string like an absent value.
func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func firstPresent(values ...*string) *string {
	for _, v := range values {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
