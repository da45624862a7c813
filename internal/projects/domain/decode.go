package domain

import (
	"bytes"
	"encoding/json"
)

// UnmarshalJSON decodes a record field by field. A member with an unexpected
// type is treated as absent, and a non-object input yields an empty record, so
// one malformed field never rejects the whole record or collection.
func (r *RawProject) UnmarshalJSON(data []byte) error {
	*r = RawProject{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil
	}

	r.ID = identifier(fields["id"])
	r.Title = field[string](fields, "title")
	r.Description = field[string](fields, "description")
	r.Category = field[string](fields, "category")
	r.Status = field[string](fields, "status")
	if budget, ok := fields["budget"]; ok {
		r.Budget = append(json.RawMessage(nil), budget...)
	}
	r.Department = field[string](fields, "department")
	r.Contractor = field[string](fields, "contractor")
	r.Latitude = field[float64](fields, "latitude")
	r.Longitude = field[float64](fields, "longitude")
	r.City = field[string](fields, "city")
	r.Location = field[string](fields, "location")
	r.StartDate = field[string](fields, "startDate")
	r.ExpectedCompletionDate = field[string](fields, "expectedCompletionDate")
	r.ActualCompletionDate = field[string](fields, "actualCompletionDate")
	r.CreatedAt = field[string](fields, "createdAt")
	r.UpdatedAt = field[string](fields, "updatedAt")
	r.IsActive = field[bool](fields, "isActive")
	r.FeedbackCount = field[int](fields, "feedbackCount")
	r.Image = field[string](fields, "image")
	r.ImageURL = field[string](fields, "imageUrl")
	return nil
}

func field[T any](fields map[string]json.RawMessage, key string) *T {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var v *T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// identifier accepts both string and numeric ids.
func identifier(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
