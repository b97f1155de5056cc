package currency

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StaleAfter is the age after which a rate table should be refreshed.
const StaleAfter = 24 * time.Hour

var (
	ErrMissingRate = errors.New("missing exchange rate")
	ErrInvalidRate = errors.New("invalid exchange rate")
)

// RateTable maps currency codes to their rate relative to Base.
type RateTable struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	UpdatedAt time.Time                  `json:"updatedAt"`
}

// IsStale reports whether the table is older than StaleAfter at now.
func (t RateTable) IsStale(now time.Time) bool {
	return now.Sub(t.UpdatedAt) > StaleAfter
}

// Rate returns the rate of code relative to the table base.
// The base itself is always 1, whether or not it is listed.
func (t RateTable) Rate(code string) (decimal.Decimal, error) {
	rate, ok := t.Rates[code]
	if !ok {
		if code == t.Base && code != "" {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, fmt.Errorf("%w for %s", ErrMissingRate, code)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w for %s: %s", ErrInvalidRate, code, rate)
	}
	return rate, nil
}

// Has reports whether a conversion involving code can be resolved.
func (t RateTable) Has(code string) bool {
	_, err := t.Rate(code)
	return err == nil
}

// Convert converts amount from one currency to another, pivoting through
// the table base. No rounding is applied; use Round when presenting.
func Convert(amount decimal.Decimal, from, to string, table RateTable) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	switch {
	case from == table.Base:
		toRate, err := table.Rate(to)
		if err != nil {
			return decimal.Zero, fmt.Errorf("convert %s to %s: %w", from, to, err)
		}
		return amount.Mul(toRate), nil
	case to == table.Base:
		fromRate, err := table.Rate(from)
		if err != nil {
			return decimal.Zero, fmt.Errorf("convert %s to %s: %w", from, to, err)
		}
		return amount.Div(fromRate), nil
	}

	fromRate, err := table.Rate(from)
	if err != nil {
		return decimal.Zero, fmt.Errorf("convert %s to %s: %w", from, to, err)
	}
	toRate, err := table.Rate(to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("convert %s to %s: %w", from, to, err)
	}
	return amount.Div(fromRate).Mul(toRate), nil
}

// Conversion is a priced preview of converting Amount.
type Conversion struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Converted decimal.Decimal `json:"converted"`
	Rate      decimal.Decimal `json:"rate"`
}

// Quote converts amount and also reports the unit rate between the two
// currencies. Converted and Rate are rounded for display.
func Quote(amount decimal.Decimal, from, to string, table RateTable) (Conversion, error) {
	converted, err := Convert(amount, from, to, table)
	if err != nil {
		return Conversion{}, err
	}
	unit, err := Convert(decimal.NewFromInt(1), from, to, table)
	if err != nil {
		return Conversion{}, err
	}
	return Conversion{
		Amount:    amount,
		From:      from,
		To:        to,
		Converted: Round(converted, to),
		Rate:      unit.Round(6),
	}, nil
}

// RateChange returns the percentage change from previous to current.
func RateChange(previous, current decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100))
}
