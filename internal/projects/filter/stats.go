package filter

import "github.com/civictrack/civictrack-go/internal/projects/domain"

// Stats summarises a project collection for the status bar.
type Stats struct {
	Total       int                   `json:"total"`
	ByStatus    map[domain.Status]int `json:"byStatus"`
	TotalBudget float64               `json:"totalBudget"`
}

// Summarize counts projects per status and adds up their budgets. Every known
// status is present in ByStatus, zero or not.
func Summarize(projects []domain.Project) Stats {
	s := Stats{
		Total:    len(projects),
		ByStatus: make(map[domain.Status]int, len(domain.KnownStatuses)),
	}
	for _, status := range domain.KnownStatuses {
		s.ByStatus[status] = 0
	}
	for _, p := range projects {
		s.ByStatus[p.Status]++
		s.TotalBudget += p.Budget
	}
	return s
}
