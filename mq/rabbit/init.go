package rabbit

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeName = "trip_events_exchange"

func NewRabbitConnection(addr string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

func declareExchange(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchangeName, err)
	}
	return nil
}

// declareTripQueue creates a server-named queue that lives as long as
// its channel and receives every change of tripID.
func declareTripQueue(ch *amqp.Channel, tripID string) (string, error) {
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return "", fmt.Errorf("failed to declare queue: %w", err)
	}
	bindingKey := fmt.Sprintf("trip.%s.#", tripID)
	if err := ch.QueueBind(q.Name, bindingKey, exchangeName, false, nil); err != nil {
		return "", fmt.Errorf("failed to bind queue %s to %s: %w", q.Name, bindingKey, err)
	}
	return q.Name, nil
}
