// Package live keeps a trip summary current by recomputing it whenever
// the change bus reports a write under the trip.
package live

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	dbt "nomadguide/db/db"
	"nomadguide/logging"
	"nomadguide/mq/mq"
	"nomadguide/report"
)

// Summarizer recomputes a trip summary from the store.
type Summarizer interface {
	Summary(ctx context.Context, tripID uuid.UUID) (*report.Summary, error)
}

// Update is one element of a live stream. Deleted is set, with no
// Summary, once the trip is gone; nothing follows it.
type Update struct {
	TripID  uuid.UUID             `json:"tripId"`
	Summary *report.Summary       `json:"summary,omitempty"`
	Cause   *mq.TripChangeMessage `json:"cause,omitempty"`
	Deleted bool                  `json:"deleted,omitempty"`
}

// cosmeticFields do not affect any computed figure.
var cosmeticFields = []string{"Name", "Description"}

type Recomputer struct {
	summarizer Summarizer
	queue      mq.TripChangeQueue
	log        *slog.Logger
}

func NewRecomputer(summarizer Summarizer, queue mq.TripChangeQueue, log *slog.Logger) *Recomputer {
	return &Recomputer{
		summarizer: summarizer,
		queue:      queue,
		log:        logging.For(log, logging.ComponentLive),
	}
}

// Watch streams the summary of tripID: first the current one, then a
// fresh one after every relevant change. The subscription is registered
// before the first summary is computed, so no write goes unseen.
// Updates for one trip are computed in order by a single goroutine. The
// stream closes when ctx is done.
func (r *Recomputer) Watch(ctx context.Context, tripID uuid.UUID) (<-chan Update, error) {
	wctx, cancel := context.WithCancel(ctx)

	events := make(chan Update)
	transform := func(msg mq.TripChangeMessage) (Update, bool, error) {
		return r.recompute(wctx, tripID, msg)
	}
	if err := mq.SubscribeProcessor(wctx, tripID, r.queue, transform, events); err != nil {
		cancel()
		return nil, err
	}

	initial, err := r.summarizer.Summary(wctx, tripID)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan Update, 1)
	out <- Update{TripID: tripID, Summary: initial}
	go func() {
		defer close(out)
		defer cancel()
		for u := range events {
			select {
			case out <- u:
			case <-wctx.Done():
				return
			}
		}
	}()
	r.log.DebugContext(ctx, "watching trip", "trip_id", tripID)
	return out, nil
}

func (r *Recomputer) recompute(ctx context.Context, tripID uuid.UUID, msg mq.TripChangeMessage) (Update, bool, error) {
	if Cosmetic(msg) {
		return Update{}, true, nil
	}
	cause := msg
	if msg.Entity == mq.EntityTrip && msg.Action == mq.ActionDelete {
		return Update{TripID: tripID, Cause: &cause, Deleted: true}, false, nil
	}

	summary, err := r.summarizer.Summary(ctx, tripID)
	if errors.Is(err, dbt.ErrNotFound) {
		return Update{TripID: tripID, Cause: &cause, Deleted: true}, false, nil
	}
	if err != nil {
		return Update{}, false, err
	}
	return Update{TripID: tripID, Summary: summary, Cause: &cause}, false, nil
}

// Cosmetic reports whether msg is a trip update that touched only
// fields no figure depends on.
func Cosmetic(msg mq.TripChangeMessage) bool {
	if msg.Entity != mq.EntityTrip || msg.Action != mq.ActionUpdate || len(msg.Changes) == 0 {
		return false
	}
	for _, c := range msg.Changes {
		if !slices.Contains(cosmeticFields, c) {
			return false
		}
	}
	return true
}
