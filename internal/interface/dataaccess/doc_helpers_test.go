package dataaccess

import (
	"encoding/json"
	"testing"
	"time"

	"acmeair-service/internal/domain/entity"
	"acmeair-service/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocID(t *testing.T) {
	booking := &entity.Booking{ID: "b-1", CustomerID: "uid0@email.com"}
	id, err := docID(booking)
	require.NoError(t, err)
	assert.Equal(t, "b-1", id)

	_, err = docID(struct{ Name string }{Name: "no id"})
	assert.Error(t, err)
}

func TestDecodeRows(t *testing.T) {
	rows := []json.RawMessage{
		json.RawMessage(`{"_id":"b-1","customerId":"uid0@email.com"}`),
		json.RawMessage(`{"_id":"b-2","customerId":"uid1@email.com"}`),
	}
	var bookings []entity.Booking
	require.NoError(t, decodeRows(rows, &bookings))
	require.Len(t, bookings, 2)
	assert.Equal(t, "b-2", bookings[1].ID)
	assert.Equal(t, "uid1@email.com", bookings[1].CustomerID)
}

func TestMatchCriteria(t *testing.T) {
	departure := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	flight := entity.Flight{
		ID:                     "f-1",
		FlightSegmentID:        "AA0",
		ScheduledDepartureTime: departure,
	}
	raw, err := json.Marshal(flight)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.True(t, matchCriteria(doc, repository.Criteria{
		"flightSegmentId":        "AA0",
		"scheduledDepartureTime": departure,
	}))
	assert.False(t, matchCriteria(doc, repository.Criteria{
		"flightSegmentId":        "AA0",
		"scheduledDepartureTime": departure.Add(24 * time.Hour),
	}))
	assert.False(t, matchCriteria(doc, repository.Criteria{"unknownField": "x"}))
	assert.True(t, matchCriteria(doc, repository.Criteria{}))
}
