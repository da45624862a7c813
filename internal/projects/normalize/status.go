package normalize

import (
	"strings"

	"github.com/civictrack/civictrack-go/internal/projects/domain"
)

var statusTable = map[string]domain.Status{
	"PROPOSED":    domain.StatusProposed,
	"IN_PROGRESS": domain.StatusInProgress,
	"COMPLETED":   domain.StatusCompleted,
	"ON_HOLD":     domain.StatusOnHold,
	"CANCELLED":   domain.StatusCancelled,
}

// MapStatus converts a backend status enum to its slug. Unknown values are
// transliterated (SOME_NEW_STATUS -> some-new-status); an absent or empty value
// maps to proposed.
func MapStatus(raw *string) domain.Status {
	if raw == nil || *raw == "" {
		return domain.StatusProposed
	}
	if s, ok := statusTable[*raw]; ok {
		return s
	}
	return domain.Status(slug(*raw))
}

// Category converts a backend category enum to its slug, "other" when absent.
func Category(raw *string) string {
	if raw == nil || *raw == "" {
		return "other"
	}
	return slug(*raw)
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", "-")
}
