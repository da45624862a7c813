package dashboard

import (
	"github.com/civictrack/civictrack-go/internal/projects/domain"
	"github.com/civictrack/civictrack-go/internal/projects/filter"
)

// Phase is the coordinator's fetch state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)

// Snapshot is the state published to rendering surfaces. Version increases
// with every change so consumers can drop out-of-order deliveries.
type Snapshot struct {
	Version          uint64           `json:"version"`
	Phase            Phase            `json:"phase"`
	FilteredProjects []domain.Project `json:"filteredProjects"`
	AllProjects      []domain.Project `json:"allProjects"`
	StatusFilter     string           `json:"statusFilter"`
	SearchQuery      string           `json:"searchQuery"`
	Loading          bool             `json:"loading"`
	Error            *string          `json:"error"`
	Selected         *domain.Project  `json:"selected"`
	Stats            filter.Stats     `json:"stats"`
}
