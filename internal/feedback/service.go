package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/civictrack/civictrack-go/internal/apiclient"
	"github.com/civictrack/civictrack-go/internal/logging"
	"github.com/google/uuid"
)

// CacheInvalidator is told when stored project data has gone stale.
type CacheInvalidator interface {
	InvalidateCache()
}

// Service submits and lists project feedback.
type Service struct {
	client      *apiclient.Client
	invalidator CacheInvalidator
	userID      uuid.UUID
}

// NewService returns a Service. Submissions carry the nil UUID as user id
// until authenticated users exist. invalidator may be nil.
func NewService(client *apiclient.Client, invalidator CacheInvalidator) *Service {
	return &Service{client: client, invalidator: invalidator, userID: uuid.Nil}
}

// Submit validates s, uploads its first photo if any, and posts the feedback.
// A failed upload is logged and the feedback is sent without an image.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Feedback, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	logger := logging.New(ctx)

	var imageURL *string
	if len(sub.Photos) > 0 {
		u, err := s.Upload(ctx, sub.Photos[0])
		if err != nil {
			logger.LogWarnf("feedback.upload", "photo upload failed, submitting without image: %v", err)
		} else {
			imageURL = &u
		}
	}

	req := request{
		ProjectID:   sub.ProjectID,
		UserID:      s.userID.String(),
		Comment:     strings.TrimSpace(sub.Comment),
		ImageURL:    imageURL,
		IsAnonymous: sub.IsAnonymous,
		Latitude:    sub.Latitude,
		Longitude:   sub.Longitude,
	}
	var out Feedback
	if err := s.client.PostJSON(ctx, "/feedback", req, &out); err != nil {
		logger.LogError("feedback.submit", err)
		return nil, fmt.Errorf("submit feedback: %w", err)
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateCache()
	}
	logger.LogInfof("feedback.submit", "feedback submitted project_id=%s with_image=%t", sub.ProjectID, imageURL != nil)
	return &out, nil
}

// Upload sends a photo to POST /upload and returns the stored file's URL.
func (s *Service) Upload(ctx context.Context, p Photo) (string, error) {
	payload, err := s.client.PostFile(ctx, "/upload", "file", p.Filename, p.Content)
	if err != nil {
		return "", err
	}
	u := uploadedURL(payload)
	if u == "" {
		return "", fmt.Errorf("upload returned no file url")
	}
	return u, nil
}

// ListByProject returns the feedback left on a project.
func (s *Service) ListByProject(ctx context.Context, projectID string) ([]Feedback, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, ErrInvalidProjectID
	}
	var out []Feedback
	if err := s.client.GetJSON(ctx, "/projects/"+url.PathEscape(projectID)+"/feedback", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Feedback{}
	}
	return out, nil
}

// uploadedURL reads the upload payload: a JSON string, an object with a url
// field, or plain text.
func uploadedURL(payload []byte) string {
	var s string
	if err := json.Unmarshal(payload, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(payload, &obj); err == nil {
		return strings.TrimSpace(obj.URL)
	}
	if bytes.HasPrefix(bytes.TrimSpace(payload), []byte("{")) {
		return ""
	}
	return strings.TrimSpace(string(payload))
}
