package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbt "nomadguide/db/db"
	"nomadguide/model"
)

// GORMTripStore is the PostgreSQL implementation of dbt.TripStore.
// Cascading deletes and detaching categories rely on the foreign keys
// created by the migrations.
type GORMTripStore struct {
	db *gorm.DB
}

func NewGORMTripStore(db *gorm.DB) dbt.TripStore {
	return &GORMTripStore{db: db}
}

// translate maps driver errors onto the store sentinels.
func translate(err error, kind string, id uuid.UUID) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s with ID %s: %w", kind, id, dbt.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s with ID %s: %w", kind, id, dbt.ErrConflict)
	default:
		return fmt.Errorf("%s with ID %s: %w", kind, id, err)
	}
}

func notFound(kind string, id uuid.UUID) error {
	return fmt.Errorf("%s with ID %s: %w", kind, id, dbt.ErrNotFound)
}

func (s *GORMTripStore) CreateTrip(ctx context.Context, trip *model.Trip) error {
	m := toTripModel(trip)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.IsActive {
			if err := deactivateUser(tx, m.UserID); err != nil {
				return err
			}
		}
		return tx.Create(&m).Error
	})
	if err != nil {
		return translate(err, "trip", trip.ID)
	}
	trip.CreatedAt, trip.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (s *GORMTripStore) GetTrip(ctx context.Context, id uuid.UUID) (*model.Trip, error) {
	var m TripModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err, "trip", id)
	}
	trip := m.toTrip()
	return &trip, nil
}

func (s *GORMTripStore) ListTrips(ctx context.Context, userID string) ([]model.Trip, error) {
	var models []TripModel
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("start_date DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list trips for user %s: %w", userID, err)
	}
	trips := make([]model.Trip, 0, len(models))
	for _, m := range models {
		trips = append(trips, m.toTrip())
	}
	return trips, nil
}

func (s *GORMTripStore) UpdateTrip(ctx context.Context, trip *model.Trip) error {
	m := toTripModel(trip)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.IsActive {
			if err := deactivateUser(tx, m.UserID); err != nil {
				return err
			}
		}
		// Select keeps zero values such as an emptied description
		result := tx.Model(&TripModel{ID: m.ID}).
			Select("name", "description", "start_date", "end_date", "initial_budget", "currency", "is_active").
			Updates(m)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return translate(err, "trip", trip.ID)
	}
	return nil
}

func deactivateUser(tx *gorm.DB, userID string) error {
	return tx.Model(&TripModel{}).
		Where("user_id = ? AND is_active", userID).
		Update("is_active", false).Error
}

func (s *GORMTripStore) ActivateTrip(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m TripModel
		if err := tx.Select("id", "user_id").First(&m, "id = ?", id).Error; err != nil {
			return err
		}
		if err := deactivateUser(tx, m.UserID); err != nil {
			return err
		}
		return tx.Model(&TripModel{ID: id}).Update("is_active", true).Error
	})
	if err != nil {
		return translate(err, "trip", id)
	}
	return nil
}

func (s *GORMTripStore) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&TripModel{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error, "trip", id)
	}
	if result.RowsAffected == 0 {
		return notFound("trip", id)
	}
	return nil
}

func (s *GORMTripStore) CreateTransaction(ctx context.Context, t *model.Transaction) error {
	m := toTransactionModel(t)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return notFound("trip", t.TripID)
		}
		return translate(err, "transaction", t.ID)
	}
	t.CreatedAt, t.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (s *GORMTripStore) GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var m TransactionModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err, "transaction", id)
	}
	t := m.toTransaction()
	return &t, nil
}

func (s *GORMTripStore) ListTransactions(ctx context.Context, tripID uuid.UUID, txType model.TransactionType) ([]model.Transaction, error) {
	if err := s.tripExists(ctx, tripID); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Where("trip_id = ?", tripID)
	if txType != "" {
		q = q.Where("type = ?", string(txType))
	}
	var models []TransactionModel
	if err := q.Order("date DESC, created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions for trip %s: %w", tripID, err)
	}
	out := make([]model.Transaction, 0, len(models))
	for _, m := range models {
		out = append(out, m.toTransaction())
	}
	return out, nil
}

func (s *GORMTripStore) tripExists(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&TripModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up trip %s: %w", id, err)
	}
	if count == 0 {
		return notFound("trip", id)
	}
	return nil
}

func (s *GORMTripStore) UpdateTransaction(ctx context.Context, t *model.Transaction) error {
	m := toTransactionModel(t)
	result := s.db.WithContext(ctx).Model(&TransactionModel{ID: m.ID}).
		Select("type", "amount", "currency", "category_id", "description", "notes", "date").
		Updates(m)
	if result.Error != nil {
		return translate(result.Error, "transaction", t.ID)
	}
	if result.RowsAffected == 0 {
		return notFound("transaction", t.ID)
	}
	return nil
}

func (s *GORMTripStore) DeleteTransaction(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var m TransactionModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "trip_id").First(&m, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&TransactionModel{}, "id = ?", id).Error
	})
	if err != nil {
		return uuid.Nil, translate(err, "transaction", id)
	}
	return m.TripID, nil
}

func (s *GORMTripStore) CreateRecurring(ctx context.Context, r *model.RecurringTransaction) error {
	m := toRecurringModel(r)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return notFound("trip", r.TripID)
		}
		return translate(err, "recurring transaction", r.ID)
	}
	r.CreatedAt, r.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (s *GORMTripStore) GetRecurring(ctx context.Context, id uuid.UUID) (*model.RecurringTransaction, error) {
	var m RecurringModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err, "recurring transaction", id)
	}
	r := m.toRecurring()
	return &r, nil
}

func (s *GORMTripStore) ListRecurring(ctx context.Context, tripID uuid.UUID) ([]model.RecurringTransaction, error) {
	if err := s.tripExists(ctx, tripID); err != nil {
		return nil, err
	}
	var models []RecurringModel
	if err := s.db.WithContext(ctx).Where("trip_id = ?", tripID).Order("start_date").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list recurring transactions for trip %s: %w", tripID, err)
	}
	out := make([]model.RecurringTransaction, 0, len(models))
	for _, m := range models {
		out = append(out, m.toRecurring())
	}
	return out, nil
}

func (s *GORMTripStore) UpdateRecurring(ctx context.Context, r *model.RecurringTransaction) error {
	m := toRecurringModel(r)
	result := s.db.WithContext(ctx).Model(&RecurringModel{ID: m.ID}).
		Select("type", "amount", "currency", "frequency", "start_date", "end_date", "last_applied", "description").
		Updates(m)
	if result.Error != nil {
		return translate(result.Error, "recurring transaction", r.ID)
	}
	if result.RowsAffected == 0 {
		return notFound("recurring transaction", r.ID)
	}
	return nil
}

func (s *GORMTripStore) DeleteRecurring(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var m RecurringModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "trip_id").First(&m, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&RecurringModel{}, "id = ?", id).Error
	})
	if err != nil {
		return uuid.Nil, translate(err, "recurring transaction", id)
	}
	return m.TripID, nil
}

func (s *GORMTripStore) CreateCategories(ctx context.Context, categories []model.Category) error {
	if len(categories) == 0 {
		return nil
	}
	models := make([]CategoryModel, 0, len(categories))
	for i := range categories {
		models = append(models, toCategoryModel(&categories[i]))
	}
	if err := s.db.WithContext(ctx).Create(&models).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return notFound("trip", categories[0].TripID)
		}
		return translate(err, "category", categories[0].ID)
	}
	return nil
}

func (s *GORMTripStore) ListCategories(ctx context.Context, tripID uuid.UUID) ([]model.Category, error) {
	if err := s.tripExists(ctx, tripID); err != nil {
		return nil, err
	}
	var models []CategoryModel
	if err := s.db.WithContext(ctx).Where("trip_id = ?", tripID).Order("type, name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories for trip %s: %w", tripID, err)
	}
	out := make([]model.Category, 0, len(models))
	for _, m := range models {
		out = append(out, m.toCategory())
	}
	return out, nil
}

func (s *GORMTripStore) UpdateCategory(ctx context.Context, c *model.Category) error {
	m := toCategoryModel(c)
	result := s.db.WithContext(ctx).Model(&CategoryModel{ID: m.ID}).
		Select("type", "name", "icon", "color").
		Updates(m)
	if result.Error != nil {
		return translate(result.Error, "category", c.ID)
	}
	if result.RowsAffected == 0 {
		return notFound("category", c.ID)
	}
	return nil
}

func (s *GORMTripStore) DeleteCategory(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var m CategoryModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "trip_id").First(&m, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&CategoryModel{}, "id = ?", id).Error
	})
	if err != nil {
		return uuid.Nil, translate(err, "category", id)
	}
	return m.TripID, nil
}

func (s *GORMTripStore) DataLoaderGetTrips(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Trip, error) {
	var models []TripModel
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}
	out := make(map[uuid.UUID]*model.Trip, len(models))
	for _, m := range models {
		trip := m.toTrip()
		out[m.ID] = &trip
	}
	return out, nil
}

func (s *GORMTripStore) DataLoaderGetTransactions(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]model.Transaction, error) {
	var models []TransactionModel
	if err := s.db.WithContext(ctx).Where("trip_id IN ?", tripIDs).Order("date DESC, created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	out := make(map[uuid.UUID][]model.Transaction, len(tripIDs))
	for _, id := range tripIDs {
		out[id] = []model.Transaction{}
	}
	for _, m := range models {
		out[m.TripID] = append(out[m.TripID], m.toTransaction())
	}
	return out, nil
}

func (s *GORMTripStore) DataLoaderGetRecurring(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]model.RecurringTransaction, error) {
	var models []RecurringModel
	if err := s.db.WithContext(ctx).Where("trip_id IN ?", tripIDs).Order("start_date").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load recurring transactions: %w", err)
	}
	out := make(map[uuid.UUID][]model.RecurringTransaction, len(tripIDs))
	for _, id := range tripIDs {
		out[id] = []model.RecurringTransaction{}
	}
	for _, m := range models {
		out[m.TripID] = append(out[m.TripID], m.toRecurring())
	}
	return out, nil
}
