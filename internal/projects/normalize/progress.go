package normalize

import (
	"math"
	"strings"
	"time"

	"github.com/civictrack/civictrack-go/internal/projects/domain"
)

// ProgressEstimator derives a 0-100 progress value for a project. The backend
// does not send progress yet; swap the estimator once it does.
type ProgressEstimator func(startDate, expectedCompletion *string, status domain.Status, now time.Time) int

// maxOpenProgress is the ceiling for any project that is not completed.
const maxOpenProgress = 99

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// EstimateProgressFromDates is the date-based heuristic: elapsed share of the
// planned duration, rounded, clamped to [0, 99]. Completed is always 100;
// proposed and cancelled are always 0, as is anything with a missing,
// unparseable or non-positive schedule.
func EstimateProgressFromDates(startDate, expectedCompletion *string, status domain.Status, now time.Time) int {
	switch status {
	case domain.StatusCompleted:
		return 100
	case domain.StatusProposed, domain.StatusCancelled:
		return 0
	}

	start, ok := parseDate(startDate)
	if !ok {
		return 0
	}
	end, ok := parseDate(expectedCompletion)
	if !ok {
		return 0
	}

	total := end.Sub(start)
	if total <= 0 {
		return 0
	}

	elapsed := now.Sub(start)
	// half rounds up, including for negative values
	pct := math.Floor(float64(elapsed)/float64(total)*100 + 0.5)
	return int(math.Max(0, math.Min(pct, maxOpenProgress)))
}

// parseDate accepts ISO dates and date-times. Values without a zone are read as UTC.
func parseDate(value *string) (time.Time, bool) {
	if value == nil {
		return time.Time{}, false
	}
	s := strings.TrimSpace(*value)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
