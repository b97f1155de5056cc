package mq

import (
	"context"

	"github.com/google/uuid"

	"nomadguide/logging"
)

// Subscriber is anything that can be subscribed to by topic.
type Subscriber[M any] interface {
	Subscribe(uuid.UUID) (uuid.UUID, <-chan M, error)
	DeSubscribe(id uuid.UUID) error
}

// SubscribeProcessor subscribes service to topicID and feeds every
// message through transform into out, in a single goroutine so outputs
// keep message order. It returns once the subscription is registered.
// out is closed when ctx ends or the input channel closes. A transform
// returning skip drops the message.
func SubscribeProcessor[S Subscriber[M], M any, O any](
	ctx context.Context,
	topicID uuid.UUID,
	service S,
	transform func(msg M) (out O, skip bool, err error),
	out chan<- O,
) error {
	uid, in, err := service.Subscribe(topicID)
	if err != nil {
		close(out)
		return err
	}
	log := logging.For(logging.FromContext(ctx), logging.ComponentMQ).With("subscription", uid, "topic", topicID)

	go func() {
		defer func() {
			if err := service.DeSubscribe(uid); err != nil {
				log.Debug("de-subscribe failed", "error", err)
			}
			close(out)
		}()

		for {
			select {
			case msg, ok := <-in:
				if !ok {
					return
				}
				o, skip, err := transform(msg)
				if err != nil {
					log.Warn("dropping message", "error", err)
					continue
				}
				if skip {
					continue
				}
				select {
				case out <- o:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
