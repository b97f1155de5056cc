package mq

import (
	"context"

	"github.com/google/uuid"
)

// Transport modes selectable through MQ_MODE.
const (
	ModeGoChan    = "go_chan"
	ModeRabbitMQ  = "rabbitmq"
	ModeGCPPubSub = "gcp_pub_sub"
)

// TopicProvider is implemented by messages routed by trip.
type TopicProvider interface {
	GetTopic() uuid.UUID
}

// TripChangeQueue carries TripChangeMessages. Subscribers only see the
// messages of the trip they subscribed to.
type TripChangeQueue interface {
	Publish(ctx context.Context, msg TripChangeMessage) error
	Subscribe(tripID uuid.UUID) (uuid.UUID, <-chan TripChangeMessage, error)
	DeSubscribe(id uuid.UUID) error
	Close() error
}
