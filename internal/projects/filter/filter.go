package filter

import (
	"strings"

	"github.com/civictrack/civictrack-go/internal/projects/domain"
)

// AllStatuses is the status filter value that disables status filtering.
const AllStatuses = "all"

// Criteria narrows a project collection.
type Criteria struct {
	Status string // AllStatuses or an exact status slug
	Query  string // free text; blank means no text filtering
}

// Apply returns the projects matching both the status filter and the query, in
// input order. The input slice is never modified.
func Apply(projects []domain.Project, c Criteria) []domain.Project {
	out := make([]domain.Project, 0, len(projects))
	blank := strings.TrimSpace(c.Query) == ""
	query := strings.ToLower(c.Query)
	for _, p := range projects {
		if !MatchesStatus(p, c.Status) {
			continue
		}
		if !blank && !matchesQuery(p, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MatchesStatus reports whether p passes the status filter. Statuses are
// normalized already, so the comparison is exact.
func MatchesStatus(p domain.Project, status string) bool {
	return status == AllStatuses || string(p.Status) == status
}

// MatchesQuery reports whether the query occurs, case-insensitively, in the
// title, department or description. Surrounding whitespace is part of the
// match; a query that is only whitespace matches everything.
func MatchesQuery(p domain.Project, query string) bool {
	return strings.TrimSpace(query) == "" || matchesQuery(p, strings.ToLower(query))
}

func matchesQuery(p domain.Project, lowered string) bool {
	return strings.Contains(strings.ToLower(p.Title), lowered) ||
		strings.Contains(strings.ToLower(p.Department), lowered) ||
		strings.Contains(strings.ToLower(p.Description), lowered)
}
