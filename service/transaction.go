package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	dbt "nomadguide/db/db"
	"nomadguide/libs/diff"
	"nomadguide/model"
	"nomadguide/mq/mq"
	"nomadguide/validate"
)

// checkCategory rejects a category that is not one of the trip's own
// categories of the same type.
func (s *Service) checkCategory(ctx context.Context, tripID uuid.UUID, categoryID *uuid.UUID, txType model.TransactionType) error {
	if categoryID == nil {
		return nil
	}
	categories, err := s.store.ListCategories(ctx, tripID)
	if err != nil {
		return err
	}
	ok := slices.ContainsFunc(categories, func(c model.Category) bool {
		return c.ID == *categoryID && c.Type == txType
	})
	if !ok {
		return &validate.ValidationError{Fields: []validate.FieldError{{
			Field:   "CategoryID",
			Message: fmt.Sprintf("is not a %s category of this trip", txType),
		}}}
	}
	return nil
}

func (s *Service) CreateTransaction(ctx context.Context, tx model.Transaction) (*model.Transaction, error) {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	now := s.now()
	tx.CreatedAt, tx.UpdatedAt = now, now
	if err := validate.Transaction(tx); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, tx.TripID, tx.CategoryID, tx.Type); err != nil {
		return nil, err
	}

	if err := s.store.CreateTransaction(ctx, &tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	s.publish(ctx, tx.TripID, mq.EntityTransaction, mq.ActionCreate, tx.ID, nil)
	return &tx, nil
}

func (s *Service) ListTransactions(ctx context.Context, tripID uuid.UUID, txType model.TransactionType) ([]model.Transaction, error) {
	return s.store.ListTransactions(ctx, tripID, txType)
}

// UpdateTransaction keeps the trip and creation time of the stored row.
func (s *Service) UpdateTransaction(ctx context.Context, tx model.Transaction) (*model.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, tx.ID)
	if err != nil {
		return nil, err
	}
	tx.TripID = existing.TripID
	tx.CreatedAt = existing.CreatedAt
	tx.UpdatedAt = s.now()
	if err := validate.Transaction(tx); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, tx.TripID, tx.CategoryID, tx.Type); err != nil {
		return nil, err
	}

	changes, err := diff.Changes(*existing, tx, ignoredFields...)
	if err != nil {
		return nil, fmt.Errorf("diff transaction %s: %w", tx.ID, err)
	}
	if len(changes) == 0 {
		return existing, nil
	}
	if err := s.store.UpdateTransaction(ctx, &tx); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, tx.TripID, mq.EntityTransaction, mq.ActionUpdate, tx.ID, changes)
	return &tx, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	tripID, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, tripID, mq.EntityTransaction, mq.ActionDelete, id, nil)
	return nil
}

func (s *Service) CreateRecurring(ctx context.Context, r model.RecurringTransaction) (*model.RecurringTransaction, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := s.now()
	r.CreatedAt, r.UpdatedAt = now, now
	if err := validate.Recurring(r); err != nil {
		return nil, err
	}
	if err := s.store.CreateRecurring(ctx, &r); err != nil {
		return nil, fmt.Errorf("create recurring transaction: %w", err)
	}
	s.publish(ctx, r.TripID, mq.EntityRecurring, mq.ActionCreate, r.ID, nil)
	return &r, nil
}

func (s *Service) ListRecurring(ctx context.Context, tripID uuid.UUID) ([]model.RecurringTransaction, error) {
	return s.store.ListRecurring(ctx, tripID)
}

func (s *Service) UpdateRecurring(ctx context.Context, r model.RecurringTransaction) (*model.RecurringTransaction, error) {
	existing, err := s.store.GetRecurring(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	r.TripID = existing.TripID
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = s.now()
	if err := validate.Recurring(r); err != nil {
		return nil, err
	}

	changes, err := diff.Changes(*existing, r, ignoredFields...)
	if err != nil {
		return nil, fmt.Errorf("diff recurring transaction %s: %w", r.ID, err)
	}
	if len(changes) == 0 {
		return existing, nil
	}
	if err := s.store.UpdateRecurring(ctx, &r); err != nil {
		return nil, fmt.Errorf("update recurring transaction: %w", err)
	}
	s.publish(ctx, r.TripID, mq.EntityRecurring, mq.ActionUpdate, r.ID, changes)
	return &r, nil
}

func (s *Service) DeleteRecurring(ctx context.Context, id uuid.UUID) error {
	tripID, err := s.store.DeleteRecurring(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, tripID, mq.EntityRecurring, mq.ActionDelete, id, nil)
	return nil
}

func (s *Service) ListCategories(ctx context.Context, tripID uuid.UUID) ([]model.Category, error) {
	return s.store.ListCategories(ctx, tripID)
}

func (s *Service) CreateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if err := validate.Category(c); err != nil {
		return nil, err
	}
	if err := s.store.CreateCategories(ctx, []model.Category{c}); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.publish(ctx, c.TripID, mq.EntityCategory, mq.ActionCreate, c.ID, nil)
	return &c, nil
}

// UpdateCategory edits a category in place. Its trip and type are fixed
// once created.
func (s *Service) UpdateCategory(ctx context.Context, tripID uuid.UUID, c model.Category) (*model.Category, error) {
	categories, err := s.store.ListCategories(ctx, tripID)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(categories, func(e model.Category) bool { return e.ID == c.ID })
	if idx < 0 {
		return nil, fmt.Errorf("category with ID %s in trip %s: %w", c.ID, tripID, dbt.ErrNotFound)
	}
	existing := categories[idx]
	c.TripID = existing.TripID
	c.Type = existing.Type
	if err := validate.Category(c); err != nil {
		return nil, err
	}

	changes, err := diff.Changes(existing, c, ignoredFields...)
	if err != nil {
		return nil, fmt.Errorf("diff category %s: %w", c.ID, err)
	}
	if len(changes) == 0 {
		return &existing, nil
	}
	if err := s.store.UpdateCategory(ctx, &c); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	s.publish(ctx, c.TripID, mq.EntityCategory, mq.ActionUpdate, c.ID, changes)
	return &c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tripID, err := s.store.DeleteCategory(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, tripID, mq.EntityCategory, mq.ActionDelete, id, nil)
	return nil
}
