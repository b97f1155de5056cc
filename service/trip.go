package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"nomadguide/libs/diff"
	"nomadguide/model"
	"nomadguide/mq/mq"
	"nomadguide/validate"
)

// CreateTrip stores a new trip together with its default categories.
func (s *Service) CreateTrip(ctx context.Context, trip model.Trip) (*model.Trip, error) {
	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}
	now := s.now()
	trip.CreatedAt, trip.UpdatedAt = now, now
	if err := validate.Trip(trip); err != nil {
		return nil, err
	}

	if err := s.store.CreateTrip(ctx, &trip); err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}
	if err := s.store.CreateCategories(ctx, model.DefaultCategories(trip.ID)); err != nil {
		// A trip is never left without its default categories.
		if delErr := s.store.DeleteTrip(ctx, trip.ID); delErr != nil {
			s.log.ErrorContext(ctx, "could not roll back trip", "trip_id", trip.ID, "error", delErr)
		}
		return nil, fmt.Errorf("seed categories of trip %s: %w", trip.ID, err)
	}

	s.log.InfoContext(ctx, "trip created", "trip_id", trip.ID, "user_id", trip.UserID)
	s.publish(ctx, trip.ID, mq.EntityTrip, mq.ActionCreate, trip.ID, nil)
	return &trip, nil
}

func (s *Service) GetTrip(ctx context.Context, id uuid.UUID) (*model.Trip, error) {
	return s.store.GetTrip(ctx, id)
}

func (s *Service) ListTrips(ctx context.Context, userID string) ([]model.Trip, error) {
	return s.store.ListTrips(ctx, userID)
}

// UpdateTrip replaces the editable fields of a trip. Ownership, the
// active flag and creation time are kept from the stored row.
func (s *Service) UpdateTrip(ctx context.Context, trip model.Trip) (*model.Trip, error) {
	existing, err := s.store.GetTrip(ctx, trip.ID)
	if err != nil {
		return nil, err
	}
	trip.UserID = existing.UserID
	trip.IsActive = existing.IsActive
	trip.CreatedAt = existing.CreatedAt
	trip.UpdatedAt = s.now()
	if err := validate.Trip(trip); err != nil {
		return nil, err
	}

	changes, err := diff.Changes(*existing, trip, ignoredFields...)
	if err != nil {
		return nil, fmt.Errorf("diff trip %s: %w", trip.ID, err)
	}
	if len(changes) == 0 {
		return existing, nil
	}
	if err := s.store.UpdateTrip(ctx, &trip); err != nil {
		return nil, fmt.Errorf("update trip: %w", err)
	}
	s.publish(ctx, trip.ID, mq.EntityTrip, mq.ActionUpdate, trip.ID, changes)
	return &trip, nil
}

// ActivateTrip makes id the user's only active trip.
func (s *Service) ActivateTrip(ctx context.Context, id uuid.UUID) (*model.Trip, error) {
	if err := s.store.ActivateTrip(ctx, id); err != nil {
		return nil, err
	}
	trip, err := s.store.GetTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, id, mq.EntityTrip, mq.ActionUpdate, id, []string{"IsActive"})
	return trip, nil
}

// DeleteTrip removes the trip and everything recorded under it.
func (s *Service) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteTrip(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "trip deleted", "trip_id", id)
	s.publish(ctx, id, mq.EntityTrip, mq.ActionDelete, id, nil)
	return nil
}
