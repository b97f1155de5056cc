package pg

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nomadguide/calendar"
	"nomadguide/model"
)

type TripModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID        string          `gorm:"size:128;not null;index"`
	Name          string          `gorm:"size:100;not null"`
	Description   string          `gorm:"size:500;not null"`
	StartDate     time.Time       `gorm:"not null"`
	EndDate       time.Time       `gorm:"not null"`
	InitialBudget decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency      string          `gorm:"type:char(3);not null"`
	IsActive      bool            `gorm:"not null"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TripModel) TableName() string {
	return "trips"
}

type TransactionModel struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	TripID uuid.UUID `gorm:"type:uuid;not null"`
	Type   string    `gorm:"size:10;not null"`
	// NULL is the missing amount case
	Amount      decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	Currency    string              `gorm:"type:char(3);not null"`
	CategoryID  *uuid.UUID          `gorm:"type:uuid"`
	Description string              `gorm:"size:100;not null"`
	Notes       string              `gorm:"size:300;not null"`
	Date        time.Time           `gorm:"not null"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TransactionModel) TableName() string {
	return "transactions"
}

type RecurringModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TripID      uuid.UUID       `gorm:"type:uuid;not null"`
	Type        string          `gorm:"size:10;not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency    string          `gorm:"type:char(3);not null"`
	Frequency   string          `gorm:"size:16;not null"`
	StartDate   time.Time       `gorm:"not null"`
	EndDate     time.Time       `gorm:"not null"`
	LastApplied *time.Time
	Description string `gorm:"size:100;not null"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RecurringModel) TableName() string {
	return "recurring_transactions"
}

type CategoryModel struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	TripID uuid.UUID `gorm:"type:uuid;not null"`
	Type   string    `gorm:"size:10;not null"`
	Name   string    `gorm:"size:50;not null"`
	Icon   string    `gorm:"size:50;not null"`
	Color  string    `gorm:"size:9;not null"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CategoryModel) TableName() string {
	return "categories"
}

func toTripModel(t *model.Trip) TripModel {
	return TripModel{
		ID:            t.ID,
		UserID:        t.UserID,
		Name:          t.Name,
		Description:   t.Description,
		StartDate:     t.StartDate,
		EndDate:       t.EndDate,
		InitialBudget: t.InitialBudget,
		Currency:      t.Currency,
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (m TripModel) toTrip() model.Trip {
	return model.Trip{
		ID:            m.ID,
		UserID:        m.UserID,
		Name:          m.Name,
		Description:   m.Description,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		InitialBudget: m.InitialBudget,
		Currency:      m.Currency,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toTransactionModel(t *model.Transaction) TransactionModel {
	return TransactionModel{
		ID:          t.ID,
		TripID:      t.TripID,
		Type:        string(t.Type),
		Amount:      t.Amount,
		Currency:    t.Currency,
		CategoryID:  t.CategoryID,
		Description: t.Description,
		Notes:       t.Notes,
		Date:        t.Date,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (m TransactionModel) toTransaction() model.Transaction {
	return model.Transaction{
		ID:          m.ID,
		TripID:      m.TripID,
		Type:        model.TransactionType(m.Type),
		Amount:      m.Amount,
		Currency:    m.Currency,
		CategoryID:  m.CategoryID,
		Description: m.Description,
		Notes:       m.Notes,
		Date:        m.Date,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toRecurringModel(r *model.RecurringTransaction) RecurringModel {
	return RecurringModel{
		ID:          r.ID,
		TripID:      r.TripID,
		Type:        string(r.Type),
		Amount:      r.Amount,
		Currency:    r.Currency,
		Frequency:   string(r.Frequency),
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		LastApplied: r.LastApplied,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (m RecurringModel) toRecurring() model.RecurringTransaction {
	return model.RecurringTransaction{
		ID:          m.ID,
		TripID:      m.TripID,
		Type:        model.TransactionType(m.Type),
		Amount:      m.Amount,
		Currency:    m.Currency,
		Frequency:   calendar.Frequency(m.Frequency),
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		LastApplied: m.LastApplied,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toCategoryModel(c *model.Category) CategoryModel {
	return CategoryModel{
		ID:     c.ID,
		TripID: c.TripID,
		Type:   string(c.Type),
		Name:   c.Name,
		Icon:   c.Icon,
		Color:  c.Color,
	}
}

func (m CategoryModel) toCategory() model.Category {
	return model.Category{
		ID:     m.ID,
		TripID: m.TripID,
		Type:   model.TransactionType(m.Type),
		Name:   m.Name,
		Icon:   m.Icon,
		Color:  m.Color,
	}
}
