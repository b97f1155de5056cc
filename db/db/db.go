package db

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"nomadguide/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// TripStore persists trips and everything that hangs off them. Lists of
// transactions come back ordered by Date descending.
type TripStore interface {
	// Trip
	CreateTrip(ctx context.Context, trip *model.Trip) error
	GetTrip(ctx context.Context, id uuid.UUID) (*model.Trip, error)
	ListTrips(ctx context.Context, userID string) ([]model.Trip, error)
	UpdateTrip(ctx context.Context, trip *model.Trip) error
	// ActivateTrip makes id the only active trip of its user.
	ActivateTrip(ctx context.Context, id uuid.UUID) error
	// DeleteTrip removes the trip with its transactions, recurring
	// transactions and categories.
	DeleteTrip(ctx context.Context, id uuid.UUID) error

	// Transaction
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	// ListTransactions filters by txType unless it is empty.
	ListTransactions(ctx context.Context, tripID uuid.UUID, txType model.TransactionType) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *model.Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) (tripID uuid.UUID, err error)

	// Recurring
	CreateRecurring(ctx context.Context, r *model.RecurringTransaction) error
	GetRecurring(ctx context.Context, id uuid.UUID) (*model.RecurringTransaction, error)
	ListRecurring(ctx context.Context, tripID uuid.UUID) ([]model.RecurringTransaction, error)
	UpdateRecurring(ctx context.Context, r *model.RecurringTransaction) error
	DeleteRecurring(ctx context.Context, id uuid.UUID) (tripID uuid.UUID, err error)

	// Category
	CreateCategories(ctx context.Context, categories []model.Category) error
	ListCategories(ctx context.Context, tripID uuid.UUID) ([]model.Category, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	// DeleteCategory detaches the category from its transactions.
	DeleteCategory(ctx context.Context, id uuid.UUID) (tripID uuid.UUID, err error)

	// Data Loader
	DataLoaderGetTrips(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Trip, error)
	DataLoaderGetTransactions(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]model.Transaction, error)
	DataLoaderGetRecurring(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]model.RecurringTransaction, error)
}
