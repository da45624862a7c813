package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/civictrack/civictrack-go/internal/dashboard"
	"github.com/civictrack/civictrack-go/internal/feedback"
	"github.com/civictrack/civictrack-go/internal/projects/domain"
	"github.com/civictrack/civictrack-go/internal/projects/normalize"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	mu       sync.Mutex
	projects []domain.Project
	err      error
}

func (s *stubRepo) GetAllProjects(ctx context.Context, force bool) ([]domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projects, s.err
}

func (s *stubRepo) GetProjectByID(ctx context.Context, id string) (*domain.Project, error) {
	for _, p := range s.projects {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (s *stubRepo) InvalidateCache() {}

type stubCities struct{}

func (stubCities) GetByCity(ctx context.Context, city string) ([]domain.Project, error) {
	if city == "Colombo" {
		return []domain.Project{{ID: "c1", City: city, Status: domain.StatusProposed}}, nil
	}
	return []domain.Project{}, nil
}

type stubFeedback struct {
	got    *feedback.Submission
	photos []string
}

func (s *stubFeedback) Submit(ctx context.Context, sub feedback.Submission) (*feedback.Feedback, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	s.got = &sub
	for _, p := range sub.Photos {
		data, _ := io.ReadAll(p.Content)
		s.photos = append(s.photos, p.Filename+":"+string(data))
	}
	return &feedback.Feedback{ID: "fb-1", ProjectID: sub.ProjectID, Comment: sub.Comment}, nil
}

func (s *stubFeedback) ListByProject(ctx context.Context, id string) ([]feedback.Feedback, error) {
	return []feedback.Feedback{{ID: "fb-1", ProjectID: id}}, nil
}

const projectUUID = "3f2b8c1e-7a4d-4e5f-9b6a-1c2d3e4f5a6b"

func sampleProjects() []domain.Project {
	start := "2025-01-01"
	return []domain.Project{
		{ID: "1", Title: "Downtown Bridge", Status: domain.StatusProposed, Budget: 4500000, StartDate: &start},
		{ID: "2", Title: "Park Pathway", Status: domain.StatusInProgress, Budget: 950000},
		{ID: "3", Title: "Library", Status: domain.StatusCompleted, Budget: 500},
	}
}

type fixture struct {
	router *gin.Engine
	dash   *dashboard.Coordinator
	repo   *stubRepo
	fb     *stubFeedback
}

func setup(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &stubRepo{projects: sampleProjects()}
	dash := dashboard.New(repo)
	fb := &stubFeedback{}
	h := New(dash, repo, stubCities{}, fb, opts...)

	router := gin.New()
	h.Register(router.Group("/api/v1"))
	return &fixture{router: router, dash: dash, repo: repo, fb: fb}
}

func (f *fixture) do(t *testing.T, method, path string, body io.Reader, contentType string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr, out
}

func (f *fixture) doJSON(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	return f.do(t, method, path, strings.NewReader(body), "application/json")
}

func dashboardOf(t *testing.T, out map[string]any) map[string]any {
	t.Helper()
	d, ok := out["dashboard"].(map[string]any)
	require.True(t, ok, "missing dashboard in %v", out)
	return d
}

func TestGetDashboard_Idle(t *testing.T) {
	f := setup(t)
	rr, out := f.do(t, http.MethodGet, "/api/v1/dashboard", nil, "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, out["ok"])
	d := dashboardOf(t, out)
	assert.Equal(t, "idle", d["phase"])
	assert.Equal(t, "all", d["statusFilter"])
}

func TestRefetchThenFilterAndSearch(t *testing.T) {
	f := setup(t)

	rr, out := f.do(t, http.MethodPost, "/api/v1/dashboard/refetch", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	d := dashboardOf(t, out)
	assert.Equal(t, "ready", d["phase"])
	assert.Len(t, d["filteredProjects"], 3)

	rr, out = f.doJSON(t, http.MethodPut, "/api/v1/dashboard/filter", `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	d = dashboardOf(t, out)
	assert.Len(t, d["filteredProjects"], 1)
	assert.Len(t, d["allProjects"], 3)

	rr, out = f.doJSON(t, http.MethodPut, "/api/v1/dashboard/filter", `{"status":"all"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	rr, out = f.doJSON(t, http.MethodPut, "/api/v1/dashboard/search", `{"query":"bridge"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	d = dashboardOf(t, out)
	assert.Len(t, d["filteredProjects"], 1)
	assert.Equal(t, "bridge", d["searchQuery"])

	rr, out = f.doJSON(t, http.MethodPut, "/api/v1/dashboard/search", `{"query":""}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, dashboardOf(t, out)["filteredProjects"], 3)
}

func TestGetDashboard_OversizedBudgetStillRenders(t *testing.T) {
	f := setup(t)
	title := "Overflow"
	huge := normalize.New().Project(domain.RawProject{ID: "huge", Title: &title, Budget: json.RawMessage(`"1e400"`)})
	f.repo.projects = append(f.repo.projects, huge)

	rr, _ := f.do(t, http.MethodPost, "/api/v1/dashboard/refetch", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr, out := f.do(t, http.MethodGet, "/api/v1/dashboard", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	d := dashboardOf(t, out)
	require.Len(t, d["allProjects"], 4)
	last := d["allProjects"].([]any)[3].(map[string]any)
	assert.Equal(t, "huge", last["id"])
	assert.Equal(t, 0.0, last["budget"])
}

func TestSetFilter_RejectsBadBody(t *testing.T) {
	f := setup(t)
	rr, out := f.doJSON(t, http.MethodPut, "/api/v1/dashboard/filter", `{"status":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, false, out["ok"])

	rr, _ = f.doJSON(t, http.MethodPut, "/api/v1/dashboard/search", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRefetch_FailureIs502WithFailedState(t *testing.T) {
	f := setup(t)
	f.repo.err = errors.New("network error, please try again")

	rr, out := f.do(t, http.MethodPost, "/api/v1/dashboard/refetch", nil, "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "network error, please try again", out["error"])
	d := dashboardOf(t, out)
	assert.Equal(t, "failed", d["phase"])
	assert.Empty(t, d["filteredProjects"])
}

func TestGetStats(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.dash.Load(context.Background()))

	rr, out := f.do(t, http.MethodGet, "/api/v1/dashboard/stats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	stats := out["stats"].(map[string]any)
	assert.Equal(t, float64(3), stats["total"])
	display := out["display"].(map[string]any)
	assert.Equal(t, "$5.5M", display["totalBudget"])
	assert.Equal(t, "$5,450,500", display["totalBudgetPrecise"])
}

func TestSelection(t *testing.T) {
	f := setup(t)

	rr, out := f.doJSON(t, http.MethodPut, "/api/v1/dashboard/selection", `{"id":"2"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	sel := dashboardOf(t, out)["selected"].(map[string]any)
	assert.Equal(t, "2", sel["id"])

	rr, _ = f.doJSON(t, http.MethodPut, "/api/v1/dashboard/selection", `{"id":"99"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, out = f.do(t, http.MethodDelete, "/api/v1/dashboard/selection", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, dashboardOf(t, out)["selected"])
}

func TestInvalidate(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.dash.Load(context.Background()))

	rr, out := f.do(t, http.MethodPost, "/api/v1/dashboard/invalidate", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "idle", dashboardOf(t, out)["phase"])
}

func TestGetProject(t *testing.T) {
	f := setup(t)

	rr, out := f.do(t, http.MethodGet, "/api/v1/projects/1", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1", out["project"].(map[string]any)["id"])
	display := out["display"].(map[string]any)
	assert.Equal(t, "$4,500,000", display["budget"])
	assert.Equal(t, "$4.5M", display["compact"])
	assert.Equal(t, "January 1, 2025", display["startDate"])
	assert.Equal(t, "Proposed", display["status"])

	rr, out = f.do(t, http.MethodGet, "/api/v1/projects/404", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "project not found", out["error"])
}

func TestListByCity(t *testing.T) {
	f := setup(t)
	rr, out := f.do(t, http.MethodGet, "/api/v1/projects/city/Colombo", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, out["projects"], 1)

	rr, out = f.do(t, http.MethodGet, "/api/v1/projects/city/Kandy", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, out["projects"])
}

func multipartBody(t *testing.T, fields map[string]string, photos map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, content := range photos {
		part, err := mw.CreateFormFile("photos", name)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestSubmitFeedback(t *testing.T) {
	f := setup(t)
	body, ct := multipartBody(t,
		map[string]string{"comment": "Great work", "anonymous": "true", "latitude": "6.93"},
		map[string]string{"site.jpg": "jpeg"},
	)

	rr, out := f.do(t, http.MethodPost, "/api/v1/projects/"+projectUUID+"/feedback", body, ct)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "fb-1", out["feedback"].(map[string]any)["id"])

	require.NotNil(t, f.fb.got)
	assert.True(t, f.fb.got.IsAnonymous)
	require.NotNil(t, f.fb.got.Latitude)
	assert.InDelta(t, 6.93, *f.fb.got.Latitude, 1e-9)
	assert.Nil(t, f.fb.got.Longitude)
	assert.Equal(t, []string{"site.jpg:jpeg"}, f.fb.photos)
}

func TestSubmitFeedback_Validation(t *testing.T) {
	f := setup(t)

	body, ct := multipartBody(t, map[string]string{"comment": " "}, nil)
	rr, out := f.do(t, http.MethodPost, "/api/v1/projects/"+projectUUID+"/feedback", body, ct)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, feedback.ErrEmptyComment.Error(), out["error"])

	body, ct = multipartBody(t, map[string]string{"comment": "x", "anonymous": "maybe"}, nil)
	rr, _ = f.do(t, http.MethodPost, "/api/v1/projects/"+projectUUID+"/feedback", body, ct)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	body, ct = multipartBody(t, map[string]string{"comment": "x"}, nil)
	rr, _ = f.do(t, http.MethodPost, "/api/v1/projects/not-a-uuid/feedback", body, ct)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListFeedback(t *testing.T) {
	f := setup(t)
	rr, out := f.do(t, http.MethodGet, "/api/v1/projects/"+projectUUID+"/feedback", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, out["feedback"], 1)
}

func readEvent(t *testing.T, r *bufio.Reader) (string, map[string]any) {
	t.Helper()
	var event string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			var out map[string]any
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &out))
			return event, out
		}
	}
}

func TestStreamDashboard(t *testing.T) {
	f := setup(t, WithKeepAlive(time.Hour))
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/dashboard/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	r := bufio.NewReader(resp.Body)

	event, out := readEvent(t, r)
	assert.Equal(t, "initial", event)
	assert.Equal(t, "idle", dashboardOf(t, out)["phase"])

	f.dash.SetSearchQuery("library")
	event, out = readEvent(t, r)
	assert.Equal(t, "update", event)
	assert.Equal(t, "library", dashboardOf(t, out)["searchQuery"])
}

func TestStreamDashboard_KeepAlive(t *testing.T) {
	f := setup(t, WithKeepAlive(20*time.Millisecond))
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/dashboard/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	r := bufio.NewReader(resp.Body)
	_, _ = readEvent(t, r)
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, ": keep-alive") {
			return
		}
	}
}
