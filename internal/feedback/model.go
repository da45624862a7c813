package feedback

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxCommentLength = 500
	MaxPhotos        = 4
)

var (
	ErrInvalidProjectID = errors.New("project id must be a UUID")
	ErrEmptyComment     = errors.New("comment is required")
	ErrCommentTooLong   = errors.New("comment exceeds 500 characters")
	ErrTooManyPhotos    = errors.New("at most 4 photos can be attached")
)

// Photo is an image attached to a submission.
type Photo struct {
	Filename string
	Content  io.Reader
}

// Submission is feedback as entered by a citizen.
type Submission struct {
	ProjectID   string
	Comment     string
	Photos      []Photo
	IsAnonymous bool
	Latitude    *float64
	Longitude   *float64
}

// Validate checks the submission before anything is sent.
func (s Submission) Validate() error {
	if _, err := uuid.Parse(s.ProjectID); err != nil {
		return ErrInvalidProjectID
	}
	comment := strings.TrimSpace(s.Comment)
	if comment == "" {
		return ErrEmptyComment
	}
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return ErrCommentTooLong
	}
	if len(s.Photos) > MaxPhotos {
		return ErrTooManyPhotos
	}
	return nil
}

// request is the body of POST /feedback.
type request struct {
	ProjectID   string   `json:"projectId"`
	UserID      string   `json:"userId"`
	Comment     string   `json:"comment"`
	ImageURL    *string  `json:"imageUrl"`
	IsAnonymous bool     `json:"isAnonymous"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// Feedback is a stored feedback entry as returned by the backend.
type Feedback struct {
	ID          string   `json:"id"`
	ProjectID   string   `json:"projectId"`
	UserID      string   `json:"userId"`
	Comment     string   `json:"comment"`
	ImageURL    *string  `json:"imageUrl"`
	IsAnonymous bool     `json:"isAnonymous"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
}
