package repository

import (
	"context"
	"slices"

	"github.com/civictrack/civictrack-go/internal/logging"
	"github.com/civictrack/civictrack-go/internal/projects/domain"
	"golang.org/x/sync/singleflight"
)

// Source fetches normalized projects from the backend.
type Source interface {
	GetAll(ctx context.Context) ([]domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
}

// Repository puts a whole-collection cache in front of a Source.
//
// Without WithSingleFlight, concurrent forced refreshes each hit the backend
// and the cache ends up with whichever response lands last.
type Repository struct {
	source Source
	cache  *Cache
	group  *singleflight.Group
}

// Option customises a Repository.
type Option func(*Repository)

// WithSingleFlight coalesces concurrent collection fetches into one backend
// call whose result every caller shares.
func WithSingleFlight() Option {
	return func(r *Repository) {
		r.group = &singleflight.Group{}
	}
}

// New creates a Repository. A nil cache gets a private one.
func New(source Source, cache *Cache, opts ...Option) *Repository {
	if cache == nil {
		cache = NewCache()
	}
	r := &Repository{source: source, cache: cache}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache returns the cache the repository writes to.
func (r *Repository) Cache() *Cache {
	return r.cache
}

// GetAllProjects returns the cached collection unless forceRefresh is set or
// nothing is cached, in which case it fetches, replaces the cache and returns
// the fresh collection. A failed fetch leaves the cache untouched.
func (r *Repository) GetAllProjects(ctx context.Context, forceRefresh bool) ([]domain.Project, error) {
	if !forceRefresh {
		if projects, ok := r.cache.Get(); ok {
			return projects, nil
		}
	}

	if r.group == nil {
		return r.refresh(ctx)
	}
	// Callers that join the flight must not fail because the first caller
	// went away; the client timeout still bounds the fetch.
	v, err, shared := r.group.Do("all", func() (any, error) {
		return r.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.New(ctx).LogInfo("get_all_projects", "joined in-flight refresh")
	}
	return slices.Clone(v.([]domain.Project)), nil
}

func (r *Repository) refresh(ctx context.Context) ([]domain.Project, error) {
	projects, err := r.source.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Replace(projects)
	return projects, nil
}

// GetProjectByID always fetches directly; the collection cache is neither read
// nor written.
func (r *Repository) GetProjectByID(ctx context.Context, id string) (*domain.Project, error) {
	return r.source.GetByID(ctx, id)
}

// InvalidateCache clears the cache so the next GetAllProjects fetches.
func (r *Repository) InvalidateCache() {
	r.cache.Invalidate()
}
