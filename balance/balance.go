package balance

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nomadguide/calendar"
	"nomadguide/currency"
	"nomadguide/model"
)

// ErrCurrencyMismatch is returned when an input is not denominated in the
// trip currency. Convert with NormalizeCurrency first.
var ErrCurrencyMismatch = errors.New("currency does not match trip currency")

var hundred = decimal.NewFromInt(100)

type WarningKind string

const (
	WarningMissingAmount WarningKind = "missing_amount"
	WarningRatesFallback WarningKind = "rates_fallback"
)

// Warning flags input that was accepted but looks wrong.
type Warning struct {
	Kind          WarningKind `json:"kind"`
	TransactionID uuid.UUID   `json:"transactionId"`
	Message       string      `json:"message"`
}

// Result is a computed amount plus the data-quality warnings raised while
// computing it.
type Result struct {
	Amount   decimal.Decimal `json:"amount"`
	Warnings []Warning       `json:"warnings,omitempty"`
}

// Total sums transaction amounts. Missing amounts count as zero and are
// reported as warnings.
func Total(txs []model.Transaction) (decimal.Decimal, []Warning) {
	sum := decimal.Zero
	var warnings []Warning
	for _, tx := range txs {
		amount, ok := tx.AmountOrZero()
		if !ok {
			warnings = append(warnings, Warning{
				Kind:          WarningMissingAmount,
				TransactionID: tx.ID,
				Message:       fmt.Sprintf("%s %s has no amount, counted as 0", tx.Type, tx.ID),
			})
			continue
		}
		sum = sum.Add(amount)
	}
	return sum, warnings
}

func sumOf(txs []model.Transaction) decimal.Decimal {
	sum, _ := Total(txs)
	return sum
}

func checkCurrency(tripCurrency, code string, id uuid.UUID) error {
	if tripCurrency == "" || code == "" || code == tripCurrency {
		return nil
	}
	return fmt.Errorf("%w: %s is in %s, trip uses %s", ErrCurrencyMismatch, id, code, tripCurrency)
}

func checkTransactions(trip model.Trip, txs []model.Transaction) error {
	for _, tx := range txs {
		if err := checkCurrency(trip.Currency, tx.Currency, tx.ID); err != nil {
			return err
		}
	}
	return nil
}

// CurrentBalance is the initial budget plus all incomes minus all outcomes.
// Every transaction must already be in the trip currency.
func CurrentBalance(trip model.Trip, incomes, outcomes []model.Transaction) (Result, error) {
	if err := checkTransactions(trip, incomes); err != nil {
		return Result{}, err
	}
	if err := checkTransactions(trip, outcomes); err != nil {
		return Result{}, err
	}

	in, inWarnings := Total(incomes)
	out, outWarnings := Total(outcomes)
	return Result{
		Amount:   trip.InitialBudget.Add(in).Sub(out),
		Warnings: append(inWarnings, outWarnings...),
	}, nil
}

// RecurringImpact is the signed amount r contributes between now and
// tripEnd. Outcomes are negative.
func RecurringImpact(r model.RecurringTransaction, now, tripEnd time.Time) decimal.Decimal {
	if r.StartDate.After(tripEnd) || r.EndDate.Before(now) {
		return decimal.Zero
	}

	effectiveStart := r.StartDate
	if now.After(effectiveStart) {
		effectiveStart = now
	}
	effectiveEnd := r.EndDate
	if tripEnd.Before(effectiveEnd) {
		effectiveEnd = tripEnd
	}
	if effectiveEnd.Before(effectiveStart) {
		return decimal.Zero
	}

	occurrences := calendar.OccurrencesBetween(r.Frequency, effectiveStart, effectiveEnd)
	impact := r.Amount.Mul(decimal.NewFromInt(int64(occurrences)))
	if r.Type == model.Outcome {
		return impact.Neg()
	}
	return impact
}

// ProjectedBalance estimates the balance at trip end by adding the
// analytic contribution of each recurring transaction to the current
// balance. It is recomputed on every call.
func ProjectedBalance(trip model.Trip, incomes, outcomes []model.Transaction, recurring []model.RecurringTransaction, now time.Time) (Result, error) {
	current, err := CurrentBalance(trip, incomes, outcomes)
	if err != nil {
		return Result{}, err
	}
	for _, r := range recurring {
		if err := checkCurrency(trip.Currency, r.Currency, r.ID); err != nil {
			return Result{}, err
		}
	}

	projected := current.Amount
	for _, r := range recurring {
		projected = projected.Add(RecurringImpact(r, now, trip.EndDate))
	}
	return Result{Amount: projected, Warnings: current.Warnings}, nil
}

// DailyAverageSpend is total outcome divided by the days elapsed since the
// trip started, at least one.
func DailyAverageSpend(outcomes []model.Transaction, tripStart, now time.Time) decimal.Decimal {
	days := max(1, calendar.CeilDays(tripStart, now))
	return sumOf(outcomes).Div(decimal.NewFromInt(int64(days)))
}

// RemainingDailyBudget spreads the current balance over the days left.
func RemainingDailyBudget(current decimal.Decimal, tripEnd, now time.Time) decimal.Decimal {
	if !current.IsPositive() || now.After(tripEnd) {
		return decimal.Zero
	}
	days := max(1, calendar.CeilDays(now, tripEnd))
	return current.Div(decimal.NewFromInt(int64(days)))
}

// BudgetUsage is the share of the initial budget spent, in percent,
// capped at 100.
func BudgetUsage(initialBudget, spent decimal.Decimal) decimal.Decimal {
	if !initialBudget.IsPositive() {
		return decimal.Zero
	}
	usage := spent.Mul(hundred).Div(initialBudget)
	if usage.GreaterThan(hundred) {
		return hundred
	}
	if usage.IsNegative() {
		return decimal.Zero
	}
	return usage
}

// NormalizeCurrency converts every transaction into the target currency.
// Transactions without a currency are assumed to already be in it.
func NormalizeCurrency(target string, txs []model.Transaction, table currency.RateTable) ([]model.Transaction, error) {
	out := make([]model.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = tx
		if tx.Currency == "" || tx.Currency == target {
			out[i].Currency = target
			continue
		}
		if tx.Amount.Valid {
			converted, err := currency.Convert(tx.Amount.Decimal, tx.Currency, target, table)
			if err != nil {
				return nil, fmt.Errorf("normalize transaction %s: %w", tx.ID, err)
			}
			out[i].Amount = model.Amount(converted)
		}
		out[i].Currency = target
	}
	return out, nil
}

// NormalizeRecurring is NormalizeCurrency for recurring templates.
func NormalizeRecurring(target string, items []model.RecurringTransaction, table currency.RateTable) ([]model.RecurringTransaction, error) {
	out := make([]model.RecurringTransaction, len(items))
	for i, r := range items {
		out[i] = r
		if r.Currency == "" || r.Currency == target {
			out[i].Currency = target
			continue
		}
		converted, err := currency.Convert(r.Amount, r.Currency, target, table)
		if err != nil {
			return nil, fmt.Errorf("normalize recurring %s: %w", r.ID, err)
		}
		out[i].Amount = converted
		out[i].Currency = target
	}
	return out, nil
}
