package gcppubsub_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadguide/logging"
	"nomadguide/mq/gcppubsub"
	"nomadguide/mq/mq"
)

// These tests need the Pub/Sub emulator:
//
//	gcloud beta emulators pubsub start --project=test-project
//
// and PUBSUB_EMULATOR_HOST exported. They are skipped otherwise.
const testProjectID = "test-project"

func getTestQueue(t *testing.T) *gcppubsub.GCPTripChangeQueue {
	t.Helper()
	if os.Getenv("PUBSUB_EMULATOR_HOST") == "" {
		t.Skip("PUBSUB_EMULATOR_HOST not set, skipping Pub/Sub tests")
	}
	q, err := gcppubsub.NewGCPTripChangeQueue(context.Background(), testProjectID, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func receiveMsgWithTimeout[T any](tb testing.TB, ch <-chan T, timeout time.Duration) (T, bool) {
	tb.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			var zero T
			return zero, false
		}
		return msg, true
	case <-time.After(timeout):
		var zero T
		return zero, false
	}
}

func TestPublishSubscribe_FilteredByTrip(t *testing.T) {
	q := getTestQueue(t)
	ctx := context.Background()
	tripA, tripB := uuid.New(), uuid.New()

	_, chA, err := q.Subscribe(tripA)
	require.NoError(t, err)
	_, chB, err := q.Subscribe(tripB)
	require.NoError(t, err)

	msg := mq.TripChangeMessage{
		TripID: tripA, Entity: mq.EntityRecurring, Action: mq.ActionUpdate,
		EntityID: uuid.New(), Changes: []string{"Amount"},
	}
	require.NoError(t, q.Publish(ctx, msg))

	got, ok := receiveMsgWithTimeout(t, chA, 10*time.Second)
	require.True(t, ok)
	assert.Equal(t, msg.EntityID, got.EntityID)
	assert.Equal(t, []string{"Amount"}, got.Changes)

	_, ok = receiveMsgWithTimeout(t, chB, time.Second)
	assert.False(t, ok)
}

func TestDeSubscribe(t *testing.T) {
	q := getTestQueue(t)
	id, ch, err := q.Subscribe(uuid.New())
	require.NoError(t, err)

	require.NoError(t, q.DeSubscribe(id))
	_, ok := receiveMsgWithTimeout(t, ch, 10*time.Second)
	assert.False(t, ok)
}
