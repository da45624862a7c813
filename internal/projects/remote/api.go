package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/civictrack/civictrack-go/internal/apiclient"
	"github.com/civictrack/civictrack-go/internal/projects/domain"
	"github.com/civictrack/civictrack-go/internal/projects/normalize"
)

// ProjectAPI reads projects from the backend and returns them normalized.
type ProjectAPI struct {
	client     *apiclient.Client
	normalizer *normalize.Normalizer
}

// NewProjectAPI creates a ProjectAPI. A nil normalizer uses normalize.New().
func NewProjectAPI(client *apiclient.Client, normalizer *normalize.Normalizer) *ProjectAPI {
	if normalizer == nil {
		normalizer = normalize.New()
	}
	return &ProjectAPI{client: client, normalizer: normalizer}
}

// GetAll fetches every project.
func (a *ProjectAPI) GetAll(ctx context.Context) ([]domain.Project, error) {
	return a.list(ctx, "/projects")
}

// GetByID fetches a single project. A 404 is reported as domain.ErrProjectNotFound.
func (a *ProjectAPI) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidID
	}

	var raw domain.RawProject
	if err := a.client.GetJSON(ctx, "/projects/"+url.PathEscape(id), &raw); err != nil {
		if apiclient.StatusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", domain.ErrProjectNotFound, err)
		}
		return nil, err
	}

	p := a.normalizer.Project(raw)
	return &p, nil
}

// GetByCity fetches the projects located in city.
func (a *ProjectAPI) GetByCity(ctx context.Context, city string) ([]domain.Project, error) {
	return a.list(ctx, "/projects/city/"+url.PathEscape(city))
}

func (a *ProjectAPI) list(ctx context.Context, path string) ([]domain.Project, error) {
	payload, err := a.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return a.normalizer.Projects(decodeCollection(payload)), nil
}

// decodeCollection treats anything but a JSON array as an empty collection.
func decodeCollection(payload []byte) []domain.RawProject {
	var raws []domain.RawProject
	if err := json.Unmarshal(payload, &raws); err != nil {
		return nil
	}
	return raws
}
