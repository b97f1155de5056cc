package gcppubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"

	"nomadguide/logging"
	"nomadguide/mq/mq"
)

const (
	tripIDAttribute = "tripId"
	changesTopicID  = "trip-changes"
)

// subscriptionInfo holds details about an active Pub/Sub subscription.
type subscriptionInfo struct {
	gcpSubscription *pubsub.Subscription
	cancel          context.CancelFunc
}

// GenericPubSubService publishes messages of type M to one topic and
// gives every subscriber its own subscription filtered by trip.
type GenericPubSubService[M mq.TopicProvider] struct {
	client              *pubsub.Client
	topic               *pubsub.Topic
	activeSubscriptions map[uuid.UUID]*subscriptionInfo
	subscriptionsMutex  sync.Mutex
	ctx                 context.Context
	log                 *slog.Logger
}

// NewGenericPubSubService ensures topicID exists, creating it if needed.
func NewGenericPubSubService[M mq.TopicProvider](ctx context.Context, client *pubsub.Client, topicID string, log *slog.Logger) (*GenericPubSubService[M], error) {
	if client == nil {
		return nil, fmt.Errorf("GCP Pub/Sub client is nil")
	}
	log = logging.For(log, logging.ComponentMQ).With("transport", mq.ModeGCPPubSub, "topic", topicID)

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existence of topic %s: %w", topicID, err)
	}
	if !exists {
		topic, err = client.CreateTopic(ctx, topicID)
		if err != nil {
			return nil, fmt.Errorf("failed to create topic %s: %w", topicID, err)
		}
		log.Info("created Pub/Sub topic")
	}

	return &GenericPubSubService[M]{
		client:              client,
		topic:               topic,
		activeSubscriptions: make(map[uuid.UUID]*subscriptionInfo),
		ctx:                 ctx,
		log:                 log,
	}, nil
}

// Publish sends msg with its topic as the tripId attribute and waits
// for the server to accept it.
func (s *GenericPubSubService[M]) Publish(ctx context.Context, msg M) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	result := s.topic.Publish(ctx, &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			tripIDAttribute: msg.GetTopic().String(),
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", s.topic.ID(), err)
	}
	return nil
}

// Subscribe creates a filtered subscription on GCP and starts receiving.
// The GCP subscription is deleted when the receiver stops.
func (s *GenericPubSubService[M]) Subscribe(tripID uuid.UUID) (uuid.UUID, <-chan M, error) {
	subscriptionID := uuid.New()
	gcpSubName := fmt.Sprintf("sub-%s-%s", tripID, subscriptionID)

	gcpSub, err := s.client.CreateSubscription(s.ctx, gcpSubName, pubsub.SubscriptionConfig{
		Topic:            s.topic,
		Filter:           fmt.Sprintf("attributes.%s = \"%s\"", tripIDAttribute, tripID),
		ExpirationPolicy: 24 * time.Hour,
		AckDeadline:      10 * time.Second,
	})
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to create GCP subscription %s: %w", gcpSubName, err)
	}

	msgChan := make(chan M, 5)
	receiveCtx, cancel := context.WithCancel(s.ctx)

	s.subscriptionsMutex.Lock()
	s.activeSubscriptions[subscriptionID] = &subscriptionInfo{gcpSubscription: gcpSub, cancel: cancel}
	s.subscriptionsMutex.Unlock()

	log := s.log.With("subscription", subscriptionID)
	go func() {
		defer func() {
			s.subscriptionsMutex.Lock()
			delete(s.activeSubscriptions, subscriptionID)
			s.subscriptionsMutex.Unlock()

			if err := gcpSub.Delete(context.Background()); err != nil {
				log.Warn("failed to delete GCP subscription", "error", err)
			}
			close(msgChan)
		}()

		err := gcpSub.Receive(receiveCtx, func(ctx context.Context, pubsubMsg *pubsub.Message) {
			pubsubMsg.Ack()

			var msg M
			if err := json.Unmarshal(pubsubMsg.Data, &msg); err != nil {
				log.Warn("failed to unmarshal message", "error", err)
				return
			}
			select {
			case msgChan <- msg:
			case <-time.After(2 * time.Second):
				log.Warn("timeout handing message to subscriber, skipping")
			case <-receiveCtx.Done():
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("receive loop stopped", "error", err)
		}
	}()

	return subscriptionID, msgChan, nil
}

// DeSubscribe stops the receiver. Its goroutine removes the bookkeeping
// and the GCP subscription.
func (s *GenericPubSubService[M]) DeSubscribe(id uuid.UUID) error {
	s.subscriptionsMutex.Lock()
	info, ok := s.activeSubscriptions[id]
	if ok {
		info.cancel()
	}
	s.subscriptionsMutex.Unlock()

	if !ok {
		return fmt.Errorf("subscription ID %s not found", id)
	}
	return nil
}

// Close cancels every receiver.
func (s *GenericPubSubService[M]) Close() {
	s.subscriptionsMutex.Lock()
	defer s.subscriptionsMutex.Unlock()
	for _, info := range s.activeSubscriptions {
		info.cancel()
	}
}

// GCPTripChangeQueue is the mq.TripChangeQueue backed by Pub/Sub.
type GCPTripChangeQueue struct {
	client  *pubsub.Client
	service *GenericPubSubService[mq.TripChangeMessage]
}

func NewGCPTripChangeQueue(ctx context.Context, projectID string, log *slog.Logger) (*GCPTripChangeQueue, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP Pub/Sub client for project %s: %w", projectID, err)
	}
	service, err := NewGenericPubSubService[mq.TripChangeMessage](ctx, client, changesTopicID, log)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &GCPTripChangeQueue{client: client, service: service}, nil
}

func (q *GCPTripChangeQueue) Publish(ctx context.Context, msg mq.TripChangeMessage) error {
	return q.service.Publish(ctx, msg)
}

func (q *GCPTripChangeQueue) Subscribe(tripID uuid.UUID) (uuid.UUID, <-chan mq.TripChangeMessage, error) {
	return q.service.Subscribe(tripID)
}

func (q *GCPTripChangeQueue) DeSubscribe(id uuid.UUID) error {
	return q.service.DeSubscribe(id)
}

func (q *GCPTripChangeQueue) Close() error {
	q.service.Close()
	q.service.topic.Stop()
	return q.client.Close()
}
