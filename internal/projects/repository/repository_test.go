package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/civictrack/civictrack-go/internal/projects/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls   atomic.Int32
	batches [][]domain.Project
	err     error
	delay   func(call int32)
}

func (s *countingSource) GetAll(ctx context.Context) ([]domain.Project, error) {
	n := s.calls.Add(1)
	if s.delay != nil {
		s.delay(n)
	}
	if s.err != nil {
		return nil, s.err
	}
	idx := int(n) - 1
	if idx >= len(s.batches) {
		idx = len(s.batches) - 1
	}
	return s.batches[idx], nil
}

func (s *countingSource) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return &domain.Project{ID: id}, nil
}

func batch(ids ...string) []domain.Project {
	out := make([]domain.Project, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Project{ID: id, Status: domain.StatusProposed})
	}
	return out
}

func TestRepository_CachesCollection(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{batches: [][]domain.Project{batch("a"), batch("a", "b")}}
	repo := New(src, nil)

	first, err := repo.GetAllProjects(ctx, false)
	require.NoError(t, err)
	second, err := repo.GetAllProjects(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, first, second)
}

func TestRepository_ForceRefreshReplacesCache(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{batches: [][]domain.Project{batch("a"), batch("a", "b")}}
	repo := New(src, nil)

	_, err := repo.GetAllProjects(ctx, false)
	require.NoError(t, err)
	fresh, err := repo.GetAllProjects(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, int32(2), src.calls.Load())
	assert.Len(t, fresh, 2)
	cached, ok := repo.Cache().Get()
	require.True(t, ok)
	assert.Len(t, cached, 2)
}

func TestRepository_InvalidateForcesFetch(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{batches: [][]domain.Project{batch("a")}}
	repo := New(src, nil)

	_, err := repo.GetAllProjects(ctx, false)
	require.NoError(t, err)
	repo.InvalidateCache()
	_, err = repo.GetAllProjects(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, int32(2), src.calls.Load())
}

func TestRepository_EmptyCollectionIsCached(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{batches: [][]domain.Project{{}}}
	repo := New(src, nil)

	for i := 0; i < 3; i++ {
		projects, err := repo.GetAllProjects(ctx, false)
		require.NoError(t, err)
		assert.NotNil(t, projects)
		assert.Empty(t, projects)
	}
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestRepository_FailedFetchKeepsCache(t *testing.T) {
	ctx := context.Background()
	cache := NewCache()
	cache.Replace(batch("kept"))
	src := &countingSource{err: errors.New("backend down")}
	repo := New(src, cache)

	_, err := repo.GetAllProjects(ctx, true)
	require.Error(t, err)

	cached, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, "kept", cached[0].ID)
}

func TestRepository_ReturnedSliceDoesNotAliasCache(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{batches: [][]domain.Project{batch("a")}}
	repo := New(src, nil)

	projects, err := repo.GetAllProjects(ctx, false)
	require.NoError(t, err)
	projects[0].Title = "changed"

	again, err := repo.GetAllProjects(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "", again[0].Title)
}

func TestRepository_ConcurrentForcedRefreshLastWriteWins(t *testing.T) {
	ctx := context.Background()
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	src := &countingSource{
		batches: [][]domain.Project{batch("slow"), batch("fast")},
		delay: func(call int32) {
			if call == 1 {
				close(firstStarted)
				<-releaseFirst
			}
		},
	}
	repo := New(src, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = repo.GetAllProjects(ctx, true)
	}()
	<-firstStarted
	_, err := repo.GetAllProjects(ctx, true)
	require.NoError(t, err)
	close(releaseFirst)
	wg.Wait()

	assert.Equal(t, int32(2), src.calls.Load())
	cached, _ := repo.Cache().Get()
	assert.Equal(t, "slow", cached[0].ID)
}

func TestRepository_SingleFlightCoalescesRefreshes(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	src := &countingSource{
		batches: [][]domain.Project{batch("a")},
		delay:   func(int32) { <-release },
	}
	repo := New(src, nil, WithSingleFlight())

	var wg sync.WaitGroup
	results := make([][]domain.Project, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = repo.GetAllProjects(ctx, true)
		}(i)
	}
	// give the goroutines time to join the in-flight call
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for _, r := range results {
		assert.Len(t, r, 1)
	}
}

type ctxAwareSource struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *ctxAwareSource) GetAll(ctx context.Context) ([]domain.Project, error) {
	s.once.Do(func() { close(s.started) })
	<-s.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return batch("a"), nil
}

func (s *ctxAwareSource) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return nil, domain.ErrProjectNotFound
}

func TestRepository_SingleFlightSurvivesLeaderCancel(t *testing.T) {
	src := &ctxAwareSource{started: make(chan struct{}), release: make(chan struct{})}
	repo := New(src, nil, WithSingleFlight())

	leaderCtx, cancel := context.WithCancel(context.Background())
	type result struct {
		projects []domain.Project
		err      error
	}
	leader := make(chan result, 1)
	go func() {
		p, err := repo.GetAllProjects(leaderCtx, true)
		leader <- result{p, err}
	}()
	<-src.started

	follower := make(chan result, 1)
	go func() {
		p, err := repo.GetAllProjects(context.Background(), true)
		follower <- result{p, err}
	}()
	time.Sleep(100 * time.Millisecond)

	cancel()
	close(src.release)

	got := <-follower
	require.NoError(t, got.err)
	assert.Len(t, got.projects, 1)
	got = <-leader
	require.NoError(t, got.err)

	cached, err := repo.GetAllProjects(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

type mockSource struct {
	mock.Mock
}

func (m *mockSource) GetAll(ctx context.Context) ([]domain.Project, error) {
	args := m.Called(ctx)
	projects, _ := args.Get(0).([]domain.Project)
	return projects, args.Error(1)
}

func (m *mockSource) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Project)
	return p, args.Error(1)
}

func TestRepository_GetProjectByIDBypassesCache(t *testing.T) {
	ctx := context.Background()
	src := &mockSource{}
	src.On("GetByID", ctx, "a").Return(&domain.Project{ID: "a", Title: "fresh"}, nil).Twice()
	repo := New(src, nil)

	for i := 0; i < 2; i++ {
		p, err := repo.GetProjectByID(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "fresh", p.Title)
	}

	_, ok := repo.Cache().Get()
	assert.False(t, ok)
	src.AssertExpectations(t)
	src.AssertNotCalled(t, "GetAll", mock.Anything)
}
