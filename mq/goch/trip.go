package goch

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"nomadguide/mq/mq"
)

const defaultBufferSize = 16

type subscriber struct {
	tripID uuid.UUID
	ch     chan mq.TripChangeMessage
}

// ChannelTripChangeQueue fans messages out to in-process subscribers
// over buffered Go channels. Publishing never blocks: a subscriber
// whose buffer is full misses the message.
type ChannelTripChangeQueue struct {
	bufferSize  int
	mu          sync.RWMutex
	subscribers map[uuid.UUID]subscriber
	closed      bool
}

// NewChannelTripChangeQueue creates a queue whose subscriber channels
// hold bufferSize messages. A bufferSize of 0 or less uses the default.
func NewChannelTripChangeQueue(bufferSize int) *ChannelTripChangeQueue {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &ChannelTripChangeQueue{
		bufferSize:  bufferSize,
		subscribers: make(map[uuid.UUID]subscriber),
	}
}

func (q *ChannelTripChangeQueue) Publish(_ context.Context, msg mq.TripChangeMessage) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	dropped := 0
	for _, sub := range q.subscribers {
		if sub.tripID != msg.TripID {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		return fmt.Errorf("%w: %d subscriber(s) of trip %s missed a message", ErrQueueFull, dropped, msg.TripID)
	}
	return nil
}

func (q *ChannelTripChangeQueue) Subscribe(tripID uuid.UUID) (uuid.UUID, <-chan mq.TripChangeMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return uuid.Nil, nil, ErrQueueClosed
	}
	id := uuid.New()
	ch := make(chan mq.TripChangeMessage, q.bufferSize)
	q.subscribers[id] = subscriber{tripID: tripID, ch: ch}
	return id, ch, nil
}

func (q *ChannelTripChangeQueue) DeSubscribe(id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sub, ok := q.subscribers[id]
	if !ok {
		return fmt.Errorf("subscriber with ID %s not found", id)
	}
	delete(q.subscribers, id)
	close(sub.ch)
	return nil
}

// Close ends every subscription.
func (q *ChannelTripChangeQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	for id, sub := range q.subscribers {
		close(sub.ch)
		delete(q.subscribers, id)
	}
	return nil
}

// Subscribers reports how many subscriptions are open.
func (q *ChannelTripChangeQueue) Subscribers() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.subscribers)
}

// --- Error Definitions ---
type QueueError string

func (e QueueError) Error() string {
	return string(e)
}

const (
	ErrQueueFull   QueueError = "message queue is full"
	ErrQueueClosed QueueError = "message queue is closed"
)
