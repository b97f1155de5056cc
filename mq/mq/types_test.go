package mq_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadguide/mq/mq"
)

func TestTripChangeMessage_JSONUsesActionNames(t *testing.T) {
	msg := mq.TripChangeMessage{
		TripID:  uuid.MustParse("8f5a7c1e-0000-4000-8000-000000000001"),
		Entity:  mq.EntityTrip,
		Action:  mq.ActionUpdate,
		Changes: []string{"InitialBudget"},
	}
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"action":"update"`)

	var back mq.TripChangeMessage
	require.NoError(t, json.Unmarshal(body, &back))
	assert.Equal(t, mq.ActionUpdate, back.Action)
	assert.Equal(t, msg.TripID, back.GetTopic())

	assert.Error(t, json.Unmarshal([]byte(`{"action":"explode"}`), &back))
}

func TestRoutingKey(t *testing.T) {
	id := uuid.MustParse("8f5a7c1e-0000-4000-8000-000000000001")
	msg := mq.TripChangeMessage{TripID: id, Entity: mq.EntityCategory, Action: mq.ActionDelete}
	assert.Equal(t, "trip.8f5a7c1e-0000-4000-8000-000000000001.category.delete", msg.RoutingKey())
	assert.Equal(t, "action(7)", mq.Action(7).String())
}
