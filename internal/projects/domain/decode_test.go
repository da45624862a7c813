package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawProject_DecodesBackendRecord(t *testing.T) {
	body := `{
		"id": "3f0c5a8e-1111-4c1e-9c1e-000000000001",
		"title": "Downtown Bridge Renovation",
		"status": "IN_PROGRESS",
		"budget": "4500000.00",
		"latitude": 40.7589,
		"longitude": -73.9851,
		"isActive": false,
		"feedbackCount": 7
	}`

	var raw RawProject
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	assert.Equal(t, "3f0c5a8e-1111-4c1e-9c1e-000000000001", raw.ID)
	require.NotNil(t, raw.Title)
	assert.Equal(t, "Downtown Bridge Renovation", *raw.Title)
	assert.Equal(t, `"4500000.00"`, string(raw.Budget))
	require.NotNil(t, raw.Latitude)
	assert.Equal(t, 40.7589, *raw.Latitude)
	require.NotNil(t, raw.IsActive)
	assert.False(t, *raw.IsActive)
	require.NotNil(t, raw.FeedbackCount)
	assert.Equal(t, 7, *raw.FeedbackCount)
	assert.Nil(t, raw.Description)
}

func TestRawProject_MistypedFieldIsAbsent(t *testing.T) {
	var raw RawProject
	require.NoError(t, json.Unmarshal([]byte(`{"id": 12, "latitude": "north", "title": 5}`), &raw))
	assert.Equal(t, "12", raw.ID)
	assert.Nil(t, raw.Latitude)
	assert.Nil(t, raw.Title)
}

func TestRawProject_CollectionSurvivesBadElement(t *testing.T) {
	var raws []RawProject
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"a"}, 42, null, {"id":"b"}]`), &raws))
	require.Len(t, raws, 4)
	assert.Equal(t, "a", raws[0].ID)
	assert.Equal(t, RawProject{}, raws[1])
	assert.Equal(t, "b", raws[3].ID)
}

func TestCoordinates_MarshalAsPair(t *testing.T) {
	lat, lng := 40.7, -73.9
	data, err := json.Marshal(Coordinates{&lat, &lng})
	require.NoError(t, err)
	assert.JSONEq(t, `[40.7,-73.9]`, string(data))

	data, err = json.Marshal(Coordinates{})
	require.NoError(t, err)
	assert.JSONEq(t, `[null,null]`, string(data))

	_, ok := Coordinates{}.Lat()
	assert.False(t, ok)
}

func TestStatus_Known(t *testing.T) {
	for _, s := range KnownStatuses {
		assert.True(t, s.Known(), s)
	}
	assert.False(t, Status("some-new-status").Known())
	assert.Equal(t, "In Progress", StatusInProgress.Label())
	assert.Equal(t, "some-new-status", Status("some-new-status").Label())
}
