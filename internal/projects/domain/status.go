package domain

// Status is the lowercase-hyphenated status slug.
type Status string

const (
	StatusProposed   Status = "proposed"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusOnHold     Status = "on-hold"
	StatusCancelled  Status = "cancelled"
)

// KnownStatuses lists the closed status set in display order.
var KnownStatuses = []Status{
	StatusProposed,
	StatusInProgress,
	StatusCompleted,
	StatusOnHold,
	StatusCancelled,
}

// Known reports whether s belongs to the closed status set.
func (s Status) Known() bool {
	switch s {
	case StatusProposed, StatusInProgress, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	}
	return false
}

// Label returns the display label used by legends and badges.
func (s Status) Label() string {
	switch s {
	case StatusProposed:
		return "Proposed"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusOnHold:
		return "On Hold"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}
