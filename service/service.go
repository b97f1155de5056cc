// Package service ties the store, the change bus and the rate provider
// to the balance and reporting engine. Every write validates its input,
// persists it and then announces the change on the bus.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"nomadguide/balance"
	dbt "nomadguide/db/db"
	"nomadguide/logging"
	"nomadguide/mq/mq"
	"nomadguide/rates"
)

// RateSource is the part of rates.Provider the service needs.
type RateSource interface {
	GetRates(ctx context.Context, forceRefresh bool) rates.Result
}

type Service struct {
	store      dbt.TripStore
	queue      mq.TripChangeQueue
	rates      RateSource
	thresholds balance.Thresholds
	now        func() time.Time
	log        *slog.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = logging.For(l, logging.ComponentService) }
}

func WithThresholds(t balance.Thresholds) Option {
	return func(s *Service) { s.thresholds = t }
}

func New(store dbt.TripStore, queue mq.TripChangeQueue, rateSource RateSource, opts ...Option) *Service {
	s := &Service{
		store:      store,
		queue:      queue,
		rates:      rateSource,
		thresholds: balance.DefaultThresholds(),
		now:        time.Now,
		log:        logging.For(logging.Discard(), logging.ComponentService),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the backing store, for request scoped data loaders.
func (s *Service) Store() dbt.TripStore {
	return s.store
}

func (s *Service) Queue() mq.TripChangeQueue {
	return s.queue
}

// publish announces a committed change. A failed publish is logged
// only, the write it describes already succeeded.
func (s *Service) publish(ctx context.Context, tripID uuid.UUID, entity mq.Entity, action mq.Action, entityID uuid.UUID, changes []string) {
	msg := mq.TripChangeMessage{
		TripID:   tripID,
		Entity:   entity,
		Action:   action,
		EntityID: entityID,
		Changes:  changes,
		At:       s.now().UTC(),
	}
	if err := s.queue.Publish(ctx, msg); err != nil {
		s.log.WarnContext(ctx, "failed to publish trip change",
			"trip_id", tripID, "entity", entity, "action", action, "error", err)
	}
}

// ignoredFields never count as a change worth announcing.
var ignoredFields = []string{"ID", "TripID", "UserID", "CreatedAt", "UpdatedAt"}
