package domain

import "encoding/json"

// RawProject is the project record as the backend sends it. Every field is
// optional; the normalizer decides the defaults. It is never mutated.
type RawProject struct {
	ID                     string          `json:"id"`
	Title                  *string         `json:"title"`
	Description            *string         `json:"description"`
	Category               *string         `json:"category"`
	Status                 *string         `json:"status"`
	Budget                 json.RawMessage `json:"budget"` // decimal as string, sometimes a number
	Department             *string         `json:"department"`
	Contractor             *string         `json:"contractor"`
	Latitude               *float64        `json:"latitude"`
	Longitude              *float64        `json:"longitude"`
	City                   *string         `json:"city"`
	Location               *string         `json:"location"`
	StartDate              *string         `json:"startDate"`
	ExpectedCompletionDate *string         `json:"expectedCompletionDate"`
	ActualCompletionDate   *string         `json:"actualCompletionDate"`
	CreatedAt              *string         `json:"createdAt"`
	UpdatedAt              *string         `json:"updatedAt"`
	IsActive               *bool           `json:"isActive"`
	FeedbackCount          *int            `json:"feedbackCount"`
	Image                  *string         `json:"image"`
	ImageURL               *string         `json:"imageUrl"`
}

// Coordinates is a (latitude, longitude) pair. Either side is nil when the
// backend omitted it; values are passed through without range checks.
type Coordinates [2]*float64

// Lat returns the latitude and whether it is present.
func (c Coordinates) Lat() (float64, bool) {
	if c[0] == nil {
		return 0, false
	}
	return *c[0], true
}

// Lng returns the longitude and whether it is present.
func (c Coordinates) Lng() (float64, bool) {
	if c[1] == nil {
		return 0, false
	}
	return *c[1], true
}

// Project is the normalized view model every other component works with.
// It is built fresh on each normalization pass and never modified afterwards.
type Project struct {
	ID                 string      `json:"id"`
	Title              string      `json:"title"`
	Description        string      `json:"description"`
	Category           string      `json:"category"`
	Status             Status      `json:"status"`
	Budget             float64     `json:"budget"`
	Department         string      `json:"department"`
	Contractor         string      `json:"contractor"`
	Coordinates        Coordinates `json:"coordinates"`
	City               string      `json:"city"`
	Location           string      `json:"location"`
	StartDate          *string     `json:"startDate"`
	ExpectedCompletion *string     `json:"expectedCompletion"`
	ActualCompletion   *string     `json:"actualCompletion"`
	CreatedAt          *string     `json:"createdAt"`
	UpdatedAt          *string     `json:"updatedAt"`
	IsActive           bool        `json:"isActive"`
	FeedbackCount      int         `json:"feedbackCount"`
	Progress           int         `json:"progress"`
	Image              *string     `json:"image"`
}
