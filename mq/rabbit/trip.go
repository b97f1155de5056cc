package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"nomadguide/logging"
	"nomadguide/mq/mq"
)

const publishTimeout = 5 * time.Second

type consumer struct {
	channel *amqp.Channel
	out     chan mq.TripChangeMessage
}

// RabbitTripChangeQueue publishes trip changes to a topic exchange.
// Every subscription owns an AMQP channel and an exclusive queue bound
// to its trip, so closing the channel tears the subscription down.
type RabbitTripChangeQueue struct {
	conn    *amqp.Connection
	pubMu   sync.Mutex
	publish *amqp.Channel
	log     *slog.Logger

	mu        sync.Mutex
	consumers map[uuid.UUID]*consumer
}

func NewRabbitTripChangeQueue(conn *amqp.Connection, log *slog.Logger) (*RabbitTripChangeQueue, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	if err := declareExchange(ch); err != nil {
		ch.Close()
		return nil, err
	}
	return &RabbitTripChangeQueue{
		conn:      conn,
		publish:   ch,
		log:       logging.For(log, logging.ComponentMQ).With("transport", mq.ModeRabbitMQ),
		consumers: make(map[uuid.UUID]*consumer),
	}, nil
}

func (q *RabbitTripChangeQueue) Publish(ctx context.Context, msg mq.TripChangeMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// amqp channels are not safe for concurrent publishing
	q.pubMu.Lock()
	defer q.pubMu.Unlock()
	err = q.publish.PublishWithContext(ctx,
		exchangeName,     // exchange
		msg.RoutingKey(), // routing key
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   msg.At,
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (q *RabbitTripChangeQueue) Subscribe(tripID uuid.UUID) (uuid.UUID, <-chan mq.TripChangeMessage, error) {
	ch, err := q.conn.Channel()
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	queueName, err := declareTripQueue(ch, tripID.String())
	if err != nil {
		ch.Close()
		return uuid.Nil, nil, err
	}
	deliveries, err := ch.Consume(
		queueName, // queue
		"",        // consumer
		true,      // auto-ack
		true,      // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		ch.Close()
		return uuid.Nil, nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	subscriberID := uuid.New()
	c := &consumer{channel: ch, out: make(chan mq.TripChangeMessage, 8)}

	q.mu.Lock()
	q.consumers[subscriberID] = c
	q.mu.Unlock()

	go func() {
		// deliveries closes once the channel does
		defer close(c.out)
		for d := range deliveries {
			var msg mq.TripChangeMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				q.log.Warn("failed to unmarshal trip change", "error", err, "subscription", subscriberID)
				continue
			}
			select {
			case c.out <- msg:
			case <-time.After(time.Second):
				q.log.Warn("timeout handing trip change to consumer, skipping", "subscription", subscriberID)
			}
		}
	}()

	return subscriberID, c.out, nil
}

func (q *RabbitTripChangeQueue) DeSubscribe(subscriberID uuid.UUID) error {
	q.mu.Lock()
	c, ok := q.consumers[subscriberID]
	delete(q.consumers, subscriberID)
	q.mu.Unlock()

	if !ok {
		return fmt.Errorf("consumer with ID %s not found", subscriberID)
	}
	return c.channel.Close()
}

// Close closes every subscription, the publishing channel and the
// connection.
func (q *RabbitTripChangeQueue) Close() error {
	q.mu.Lock()
	for id, c := range q.consumers {
		c.channel.Close()
		delete(q.consumers, id)
	}
	q.mu.Unlock()

	if q.publish != nil {
		q.publish.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}
