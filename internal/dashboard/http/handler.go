package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/civictrack/civictrack-go/internal/apiclient"
	"github.com/civictrack/civictrack-go/internal/dashboard"
	"github.com/civictrack/civictrack-go/internal/feedback"
	"github.com/civictrack/civictrack-go/internal/projects/domain"
	"github.com/gin-gonic/gin"
)

const defaultKeepAlive = 15 * time.Second

// ProjectLookup loads a single project.
type ProjectLookup interface {
	GetProjectByID(ctx context.Context, id string) (*domain.Project, error)
}

// CityLookup lists the projects of a city.
type CityLookup interface {
	GetByCity(ctx context.Context, city string) ([]domain.Project, error)
}

// FeedbackService submits and lists feedback.
type FeedbackService interface {
	Submit(ctx context.Context, sub feedback.Submission) (*feedback.Feedback, error)
	ListByProject(ctx context.Context, projectID string) ([]feedback.Feedback, error)
}

type Handler struct {
	dash      *dashboard.Coordinator
	projects  ProjectLookup
	cities    CityLookup
	feedback  FeedbackService
	keepAlive time.Duration
}

type Option func(*Handler)

// WithKeepAlive sets the interval between SSE keep-alive comments.
func WithKeepAlive(d time.Duration) Option {
	return func(h *Handler) { h.keepAlive = d }
}

func New(dash *dashboard.Coordinator, projects ProjectLookup, cities CityLookup, fb FeedbackService, opts ...Option) *Handler {
	h := &Handler{
		dash:      dash,
		projects:  projects,
		cities:    cities,
		feedback:  fb,
		keepAlive: defaultKeepAlive,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// writeError maps an error onto the response: validation errors are 400,
// unknown projects 404, everything from the backend 502.
func writeError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, feedback.ErrInvalidProjectID),
		errors.Is(err, feedback.ErrEmptyComment),
		errors.Is(err, feedback.ErrCommentTooLong),
		errors.Is(err, feedback.ErrTooManyPhotos):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrProjectNotFound), apiclient.StatusCode(err) == http.StatusNotFound:
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"ok": false, "error": err.Error()})
}
