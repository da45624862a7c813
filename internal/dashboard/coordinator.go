package dashboard

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/civictrack/civictrack-go/internal/logging"
	"github.com/civictrack/civictrack-go/internal/projects/domain"
	"github.com/civictrack/civictrack-go/internal/projects/filter"
)

// ErrSuperseded is returned by Load and Refetch when a newer fetch or an
// invalidation started before this one finished. Its result is discarded.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

const publishTimeout = 2 * time.Second

// ProjectRepository is the part of the project repository the coordinator drives.
type ProjectRepository interface {
	GetAllProjects(ctx context.Context, forceRefresh bool) ([]domain.Project, error)
	GetProjectByID(ctx context.Context, id string) (*domain.Project, error)
	InvalidateCache()
}

// Publisher receives every snapshot the coordinator produces.
type Publisher interface {
	Publish(ctx context.Context, snap Snapshot) error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPublisher forwards every snapshot to p.
func WithPublisher(p Publisher) Option {
	return func(c *Coordinator) { c.publisher = p }
}

// Coordinator owns the dashboard state: filters, the project collection, the
// fetch phase and the current selection. Every change recomputes the visible
// collection and is fanned out to subscribers.
type Coordinator struct {
	repo      ProjectRepository
	publisher Publisher

	mu         sync.Mutex
	phase      Phase
	all        []domain.Project
	filtered   []domain.Project
	status     string
	query      string
	errMsg     *string
	selected   *domain.Project
	generation uint64
	version    uint64

	subs   map[int]chan Snapshot
	nextID int
}

// New returns an idle coordinator with the "all" status filter and no query.
func New(repo ProjectRepository, opts ...Option) *Coordinator {
	c := &Coordinator{
		repo:     repo,
		phase:    PhaseIdle,
		all:      []domain.Project{},
		filtered: []domain.Project{},
		status:   filter.AllStatuses,
		subs:     make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the collection, serving it from the repository cache if present.
func (c *Coordinator) Load(ctx context.Context) error {
	return c.fetch(ctx, false)
}

// Refetch forces a repository refresh.
func (c *Coordinator) Refetch(ctx context.Context) error {
	return c.fetch(ctx, true)
}

func (c *Coordinator) fetch(ctx context.Context, force bool) error {
	logger := logging.New(ctx)

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.phase = PhaseLoading
	snap := c.changedLocked()
	c.mu.Unlock()
	c.publish(ctx, snap)

	logger.LogInfof("dashboard.fetch", "fetch started force_refresh=%t generation=%d", force, gen)
	projects, err := c.repo.GetAllProjects(ctx, force)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		logger.LogWarnf("dashboard.fetch", "discarding result of superseded fetch generation=%d", gen)
		return ErrSuperseded
	}
	if err != nil {
		msg := err.Error()
		c.phase = PhaseFailed
		c.errMsg = &msg
		c.all = []domain.Project{}
	} else {
		c.phase = PhaseReady
		c.errMsg = nil
		c.all = projects
		if c.all == nil {
			c.all = []domain.Project{}
		}
	}
	c.recomputeLocked()
	snap = c.changedLocked()
	c.mu.Unlock()

	if err != nil {
		logger.LogError("dashboard.fetch", err)
	}
	c.publish(ctx, snap)
	return err
}

// Invalidate clears the repository cache and returns to idle. Any fetch still
// in flight is superseded. The last collection stays visible until the next load.
func (c *Coordinator) Invalidate() {
	c.repo.InvalidateCache()

	c.mu.Lock()
	c.generation++
	c.phase = PhaseIdle
	c.errMsg = nil
	snap := c.changedLocked()
	c.mu.Unlock()
	c.publish(context.Background(), snap)
}

// SetStatusFilter replaces the status filter and recomputes the visible set.
func (c *Coordinator) SetStatusFilter(status string) Snapshot {
	c.mu.Lock()
	c.status = status
	c.recomputeLocked()
	snap := c.changedLocked()
	c.mu.Unlock()
	c.publish(context.Background(), snap)
	return snap
}

// SetSearchQuery replaces the search query and recomputes the visible set.
func (c *Coordinator) SetSearchQuery(query string) Snapshot {
	c.mu.Lock()
	c.query = query
	c.recomputeLocked()
	snap := c.changedLocked()
	c.mu.Unlock()
	c.publish(context.Background(), snap)
	return snap
}

// Select loads a project's details and makes it the current selection. On
// error the previous selection is kept.
func (c *Coordinator) Select(ctx context.Context, id string) (*domain.Project, error) {
	p, err := c.repo.GetProjectByID(ctx, id)
	if err != nil {
		logging.New(ctx).LogError("dashboard.select", err)
		return nil, err
	}

	c.mu.Lock()
	c.selected = p
	snap := c.changedLocked()
	c.mu.Unlock()
	c.publish(ctx, snap)
	return p, nil
}

// ClearSelection drops the current selection.
func (c *Coordinator) ClearSelection() {
	c.mu.Lock()
	c.selected = nil
	snap := c.changedLocked()
	c.mu.Unlock()
	c.publish(context.Background(), snap)
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel that receives every subsequent snapshot, and a
// function that ends the subscription. A subscriber that falls behind only
// sees the latest snapshot.
func (c *Coordinator) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (c *Coordinator) recomputeLocked() {
	c.filtered = filter.Apply(c.all, filter.Criteria{Status: c.status, Query: c.query})
}

// changedLocked bumps the version, fans the new snapshot out and returns it.
func (c *Coordinator) changedLocked() Snapshot {
	c.version++
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (c *Coordinator) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version:          c.version,
		Phase:            c.phase,
		FilteredProjects: slices.Clone(c.filtered),
		AllProjects:      slices.Clone(c.all),
		StatusFilter:     c.status,
		SearchQuery:      c.query,
		Loading:          c.phase == PhaseLoading,
		Stats:            filter.Summarize(c.filtered),
	}
	if c.errMsg != nil {
		msg := *c.errMsg
		snap.Error = &msg
	}
	if c.selected != nil {
		sel := *c.selected
		snap.Selected = &sel
	}
	return snap
}

func (c *Coordinator) publish(ctx context.Context, snap Snapshot) {
	if c.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := c.publisher.Publish(ctx, snap); err != nil {
		logging.New(ctx).LogWarnf("dashboard.publish", "failed to publish snapshot version=%d: %v", snap.Version, err)
	}
}
