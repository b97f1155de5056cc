package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nomadguide/calendar"
)

type TransactionType string

const (
	Income  TransactionType = "income"
	Outcome TransactionType = "outcome"
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Outcome
}

type Trip struct {
	ID            uuid.UUID       `json:"id"`
	UserID        string          `json:"userId" validate:"required,max=128"`
	Name          string          `json:"name" validate:"required,max=100"`
	Description   string          `json:"description,omitempty" validate:"max=500"`
	StartDate     time.Time       `json:"startDate" validate:"required"`
	EndDate       time.Time       `json:"endDate" validate:"required"`
	InitialBudget decimal.Decimal `json:"initialBudget"`
	Currency      string          `json:"currency" validate:"required,iso4217"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Transaction is a single income or outcome. A NULL Amount is kept as
// is so the balance engine can report it.
type Transaction struct {
	ID          uuid.UUID           `json:"id"`
	TripID      uuid.UUID           `json:"tripId"`
	Type        TransactionType     `json:"type" validate:"required,oneof=income outcome"`
	Amount      decimal.NullDecimal `json:"amount"`
	Currency    string              `json:"currency" validate:"required,iso4217"`
	CategoryID  *uuid.UUID          `json:"categoryId,omitempty"`
	Description string              `json:"description" validate:"required,max=100"`
	Notes       string              `json:"notes,omitempty" validate:"max=300"`
	Date        time.Time           `json:"date" validate:"required"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// AmountOrZero returns the amount, with ok false when it is missing.
func (t Transaction) AmountOrZero() (amount decimal.Decimal, ok bool) {
	if !t.Amount.Valid {
		return decimal.Zero, false
	}
	return t.Amount.Decimal, true
}

// RecurringTransaction is a projection template. It never produces
// Transaction rows by itself.
type RecurringTransaction struct {
	ID          uuid.UUID          `json:"id"`
	TripID      uuid.UUID          `json:"tripId"`
	Type        TransactionType    `json:"type" validate:"required,oneof=income outcome"`
	Amount      decimal.Decimal    `json:"amount"`
	Currency    string             `json:"currency" validate:"required,iso4217"`
	Frequency   calendar.Frequency `json:"frequency" validate:"required,frequency"`
	StartDate   time.Time          `json:"startDate" validate:"required"`
	EndDate     time.Time          `json:"endDate" validate:"required"`
	LastApplied *time.Time         `json:"lastApplied,omitempty"`
	Description string             `json:"description,omitempty" validate:"max=100"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type Category struct {
	ID     uuid.UUID       `json:"id"`
	TripID uuid.UUID       `json:"tripId"`
	Type   TransactionType `json:"type" validate:"required,oneof=income outcome"`
	Name   string          `json:"name" validate:"required,max=50"`
	Icon   string          `json:"icon"`
	Color  string          `json:"color" validate:"omitempty,hexcolor"`
}

// Amount wraps a decimal as a present transaction amount.
func Amount(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

// FilterByType returns the transactions of kind t, preserving order.
func FilterByType(txs []Transaction, t TransactionType) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == t {
			out = append(out, tx)
		}
	}
	return out
}
