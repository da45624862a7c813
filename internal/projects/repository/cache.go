package repository

import (
	"slices"
	"sync"

	"github.com/civictrack/civictrack-go/internal/projects/domain"
)

// Cache holds the whole project collection as one unit. It is created once per
// process or session and handed to the repositories that share it. The
// collection is replaced wholesale, never patched.
type Cache struct {
	mu       sync.RWMutex
	projects []domain.Project
	loaded   bool
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns a copy of the cached collection and whether one is present. An
// empty collection that was loaded still counts as present.
func (c *Cache) Get() ([]domain.Project, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, false
	}
	return slices.Clone(c.projects), true
}

// Replace swaps in a new collection.
func (c *Cache) Replace(projects []domain.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects = slices.Clone(projects)
	if c.projects == nil {
		c.projects = []domain.Project{}
	}
	c.loaded = true
}

// Invalidate drops the cached collection.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects = nil
	c.loaded = false
}
