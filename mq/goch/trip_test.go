package goch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadguide/mq/mq"
)

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

func isChanClosed[T any](ch <-chan T) bool {
	select {
	case _, ok := <-ch:
		return !ok
	default:
		return false
	}
}

func change(tripID uuid.UUID, action mq.Action) mq.TripChangeMessage {
	return mq.TripChangeMessage{
		TripID:   tripID,
		Entity:   mq.EntityTransaction,
		Action:   action,
		EntityID: uuid.New(),
	}
}

func TestPublish_RoutesByTrip(t *testing.T) {
	ctx := context.Background()
	q := NewChannelTripChangeQueue(4)
	tripA, tripB := uuid.New(), uuid.New()

	_, chA, err := q.Subscribe(tripA)
	require.NoError(t, err)
	_, chB, err := q.Subscribe(tripB)
	require.NoError(t, err)

	msg := change(tripA, mq.ActionCreate)
	require.NoError(t, q.Publish(ctx, msg))

	got, ok := receiveMsgWithTimeout(t, chA, 100*time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, msg.EntityID, got.EntityID)

	_, ok = receiveMsgWithTimeout(t, chB, 50*time.Millisecond)
	assert.False(t, ok, "trip B must not see trip A's changes")
}

func TestPublish_FanOut(t *testing.T) {
	ctx := context.Background()
	q := NewChannelTripChangeQueue(4)
	trip := uuid.New()

	_, ch1, _ := q.Subscribe(trip)
	_, ch2, _ := q.Subscribe(trip)
	require.NoError(t, q.Publish(ctx, change(trip, mq.ActionUpdate)))

	_, ok1 := receiveMsgWithTimeout(t, ch1, 100*time.Millisecond)
	_, ok2 := receiveMsgWithTimeout(t, ch2, 100*time.Millisecond)
	assert.True(t, ok1)
	assert.True(t, ok2)
}

func TestPublish_FullBufferDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	q := NewChannelTripChangeQueue(1)
	trip := uuid.New()
	_, ch, _ := q.Subscribe(trip)

	require.NoError(t, q.Publish(ctx, change(trip, mq.ActionCreate)))
	err := q.Publish(ctx, change(trip, mq.ActionCreate))
	assert.True(t, errors.Is(err, ErrQueueFull))

	_, ok := receiveMsgWithTimeout(t, ch, 100*time.Millisecond)
	assert.True(t, ok)
}

func TestDeSubscribe_ClosesChannel(t *testing.T) {
	q := NewChannelTripChangeQueue(0)
	id, ch, _ := q.Subscribe(uuid.New())

	require.NoError(t, q.DeSubscribe(id))
	assert.True(t, isChanClosed(ch))
	assert.Equal(t, 0, q.Subscribers())
	assert.Error(t, q.DeSubscribe(id))
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	q := NewChannelTripChangeQueue(0)
	trip := uuid.New()
	_, ch, _ := q.Subscribe(trip)

	require.NoError(t, q.Close())
	assert.True(t, isChanClosed(ch))
	assert.ErrorIs(t, q.Publish(ctx, change(trip, mq.ActionDelete)), ErrQueueClosed)
	_, _, err := q.Subscribe(trip)
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestSubscribeProcessor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewChannelTripChangeQueue(4)
	trip := uuid.New()

	out := make(chan mq.Action)
	err := mq.SubscribeProcessor(ctx, trip, q, func(m mq.TripChangeMessage) (mq.Action, bool, error) {
		return m.Action, m.Action == mq.ActionDelete, nil
	}, out)
	require.NoError(t, err)
	require.Equal(t, 1, q.Subscribers())

	require.NoError(t, q.Publish(ctx, change(trip, mq.ActionDelete)))
	require.NoError(t, q.Publish(ctx, change(trip, mq.ActionUpdate)))

	got, ok := receiveMsgWithTimeout(t, out, time.Second)
	require.True(t, ok)
	assert.Equal(t, mq.ActionUpdate, got, "deletes are skipped by the transform")

	cancel()
	_, ok = receiveMsgWithTimeout(t, out, time.Second)
	assert.False(t, ok, "output closes once the context ends")
	assert.Eventually(t, func() bool { return q.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}
