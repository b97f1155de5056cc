package mem

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	dbt "nomadguide/db/db"
	"nomadguide/model"
)

// inMemoryTripStore is an in-memory implementation of dbt.TripStore.
// Every read returns copies so callers never alias stored values.
type inMemoryTripStore struct {
	trips        map[uuid.UUID]*model.Trip
	transactions map[uuid.UUID]*model.Transaction
	recurring    map[uuid.UUID]*model.RecurringTransaction
	categories   map[uuid.UUID]*model.Category

	mu sync.RWMutex
}

func NewInMemoryTripStore() dbt.TripStore {
	return &inMemoryTripStore{
		trips:        make(map[uuid.UUID]*model.Trip),
		transactions: make(map[uuid.UUID]*model.Transaction),
		recurring:    make(map[uuid.UUID]*model.RecurringTransaction),
		categories:   make(map[uuid.UUID]*model.Category),
	}
}

func notFound(kind string, id uuid.UUID) error {
	return fmt.Errorf("%s with ID %s: %w", kind, id, dbt.ErrNotFound)
}

func conflict(kind string, id uuid.UUID) error {
	return fmt.Errorf("%s with ID %s: %w", kind, id, dbt.ErrConflict)
}

func copyTransaction(tx *model.Transaction) model.Transaction {
	out := *tx
	if tx.CategoryID != nil {
		id := *tx.CategoryID
		out.CategoryID = &id
	}
	return out
}

func copyRecurring(r *model.RecurringTransaction) model.RecurringTransaction {
	out := *r
	if r.LastApplied != nil {
		t := *r.LastApplied
		out.LastApplied = &t
	}
	return out
}

// byDateDesc orders transactions newest first, then by creation.
func byDateDesc(a, b model.Transaction) int {
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

func (s *inMemoryTripStore) CreateTrip(_ context.Context, trip *model.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.trips[trip.ID]; exists {
		return conflict("trip", trip.ID)
	}
	if trip.IsActive {
		s.deactivateUser(trip.UserID)
	}
	t := *trip
	s.trips[trip.ID] = &t
	return nil
}

func (s *inMemoryTripStore) GetTrip(_ context.Context, id uuid.UUID) (*model.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trip, exists := s.trips[id]
	if !exists {
		return nil, notFound("trip", id)
	}
	t := *trip
	return &t, nil
}

func (s *inMemoryTripStore) ListTrips(_ context.Context, userID string) ([]model.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Trip{}
	for _, trip := range s.trips {
		if trip.UserID == userID {
			out = append(out, *trip)
		}
	}
	slices.SortFunc(out, func(a, b model.Trip) int { return b.StartDate.Compare(a.StartDate) })
	return out, nil
}

func (s *inMemoryTripStore) UpdateTrip(_ context.Context, trip *model.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.trips[trip.ID]; !exists {
		return notFound("trip", trip.ID)
	}
	if trip.IsActive {
		s.deactivateUser(trip.UserID)
	}
	t := *trip
	s.trips[trip.ID] = &t
	return nil
}

func (s *inMemoryTripStore) ActivateTrip(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trip, exists := s.trips[id]
	if !exists {
		return notFound("trip", id)
	}
	s.deactivateUser(trip.UserID)
	trip.IsActive = true
	return nil
}

// deactivateUser must be called with the write lock held.
func (s *inMemoryTripStore) deactivateUser(userID string) {
	for _, t := range s.trips {
		if t.UserID == userID {
			t.IsActive = false
		}
	}
}

func (s *inMemoryTripStore) DeleteTrip(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.trips[id]; !exists {
		return notFound("trip", id)
	}
	delete(s.trips, id)
	for txID, tx := range s.transactions {
		if tx.TripID == id {
			delete(s.transactions, txID)
		}
	}
	for rID, r := range s.recurring {
		if r.TripID == id {
			delete(s.recurring, rID)
		}
	}
	for cID, c := range s.categories {
		if c.TripID == id {
			delete(s.categories, cID)
		}
	}
	return nil
}

func (s *inMemoryTripStore) CreateTransaction(_ context.Context, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.trips[tx.TripID]; !exists {
		return notFound("trip", tx.TripID)
	}
	if _, exists := s.transactions[tx.ID]; exists {
		return conflict("transaction", tx.ID)
	}
	t := copyTransaction(tx)
	s.transactions[tx.ID] = &t
	return nil
}

func (s *inMemoryTripStore) GetTransaction(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, exists := s.transactions[id]
	if !exists {
		return nil, notFound("transaction", id)
	}
	t := copyTransaction(tx)
	return &t, nil
}

func (s *inMemoryTripStore) ListTransactions(_ context.Context, tripID uuid.UUID, txType model.TransactionType) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.trips[tripID]; !exists {
		return nil, notFound("trip", tripID)
	}
	return s.transactionsOf(tripID, txType), nil
}

func (s *inMemoryTripStore) transactionsOf(tripID uuid.UUID, txType model.TransactionType) []model.Transaction {
	out := []model.Transaction{}
	for _, tx := range s.transactions {
		if tx.TripID != tripID || (txType != "" && tx.Type != txType) {
			continue
		}
		out = append(out, copyTransaction(tx))
	}
	slices.SortFunc(out, byDateDesc)
	return out
}

func (s *inMemoryTripStore) UpdateTransaction(_ context.Context, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[tx.ID]; !exists {
		return notFound("transaction", tx.ID)
	}
	t := copyTransaction(tx)
	s.transactions[tx.ID] = &t
	return nil
}

func (s *inMemoryTripStore) DeleteTransaction(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, exists := s.transactions[id]
	if !exists {
		return uuid.Nil, notFound("transaction", id)
	}
	delete(s.transactions, id)
	return tx.TripID, nil
}

func (s *inMemoryTripStore) CreateRecurring(_ context.Context, r *model.RecurringTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.trips[r.TripID]; !exists {
		return notFound("trip", r.TripID)
	}
	if _, exists := s.recurring[r.ID]; exists {
		return conflict("recurring transaction", r.ID)
	}
	c := copyRecurring(r)
	s.recurring[r.ID] = &c
	return nil
}

func (s *inMemoryTripStore) GetRecurring(_ context.Context, id uuid.UUID) (*model.RecurringTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.recurring[id]
	if !exists {
		return nil, notFound("recurring transaction", id)
	}
	c := copyRecurring(r)
	return &c, nil
}

func (s *inMemoryTripStore) ListRecurring(_ context.Context, tripID uuid.UUID) ([]model.RecurringTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.trips[tripID]; !exists {
		return nil, notFound("trip", tripID)
	}
	return s.recurringOf(tripID), nil
}

func (s *inMemoryTripStore) recurringOf(tripID uuid.UUID) []model.RecurringTransaction {
	out := []model.RecurringTransaction{}
	for _, r := range s.recurring {
		if r.TripID == tripID {
			out = append(out, copyRecurring(r))
		}
	}
	slices.SortFunc(out, func(a, b model.RecurringTransaction) int { return a.StartDate.Compare(b.StartDate) })
	return out
}

func (s *inMemoryTripStore) UpdateRecurring(_ context.Context, r *model.RecurringTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.recurring[r.ID]; !exists {
		return notFound("recurring transaction", r.ID)
	}
	c := copyRecurring(r)
	s.recurring[r.ID] = &c
	return nil
}

func (s *inMemoryTripStore) DeleteRecurring(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.recurring[id]
	if !exists {
		return uuid.Nil, notFound("recurring transaction", id)
	}
	delete(s.recurring, id)
	return r.TripID, nil
}

func (s *inMemoryTripStore) CreateCategories(_ context.Context, categories []model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range categories {
		if _, exists := s.trips[c.TripID]; !exists {
			return notFound("trip", c.TripID)
		}
		if _, exists := s.categories[c.ID]; exists {
			return conflict("category", c.ID)
		}
	}
	for _, c := range categories {
		cc := c
		s.categories[c.ID] = &cc
	}
	return nil
}

func (s *inMemoryTripStore) ListCategories(_ context.Context, tripID uuid.UUID) ([]model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.trips[tripID]; !exists {
		return nil, notFound("trip", tripID)
	}
	out := []model.Category{}
	for _, c := range s.categories {
		if c.TripID == tripID {
			out = append(out, *c)
		}
	}
	slices.SortFunc(out, func(a, b model.Category) int {
		return cmp.Or(cmp.Compare(a.Type, b.Type), cmp.Compare(a.Name, b.Name))
	})
	return out, nil
}

func (s *inMemoryTripStore) UpdateCategory(_ context.Context, c *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categories[c.ID]; !exists {
		return notFound("category", c.ID)
	}
	cc := *c
	s.categories[c.ID] = &cc
	return nil
}

func (s *inMemoryTripStore) DeleteCategory(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.categories[id]
	if !exists {
		return uuid.Nil, notFound("category", id)
	}
	delete(s.categories, id)
	for _, tx := range s.transactions {
		if tx.CategoryID != nil && *tx.CategoryID == id {
			tx.CategoryID = nil
		}
	}
	return c.TripID, nil
}

func (s *inMemoryTripStore) DataLoaderGetTrips(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID]*model.Trip, len(ids))
	for _, id := range ids {
		if trip, exists := s.trips[id]; exists {
			t := *trip
			out[id] = &t
		}
	}
	return out, nil
}

func (s *inMemoryTripStore) DataLoaderGetTransactions(_ context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID][]model.Transaction, len(tripIDs))
	for _, id := range tripIDs {
		out[id] = s.transactionsOf(id, "")
	}
	return out, nil
}

func (s *inMemoryTripStore) DataLoaderGetRecurring(_ context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]model.RecurringTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID][]model.RecurringTransaction, len(tripIDs))
	for _, id := range tripIDs {
		out[id] = s.recurringOf(id)
	}
	return out, nil
}
