package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nomadguide/balance"
	"nomadguide/calendar"
	"nomadguide/model"
)

// Summary is the read model of one trip at a point in time.
type Summary struct {
	TripID               uuid.UUID         `json:"tripId"`
	Currency             string            `json:"currency"`
	InitialBudget        decimal.Decimal   `json:"initialBudget"`
	CurrentBalance       decimal.Decimal   `json:"currentBalance"`
	ProjectedBalance     decimal.Decimal   `json:"projectedBalance"`
	Status               balance.Status    `json:"status"`
	BudgetUsage          decimal.Decimal   `json:"budgetUsage"`
	DailyAverageSpend    decimal.Decimal   `json:"dailyAverageSpend"`
	RemainingDailyBudget decimal.Decimal   `json:"remainingDailyBudget"`
	ProgressPercent      int               `json:"progressPercent"`
	DurationDays         int               `json:"durationDays"`
	DaysRemaining        int               `json:"daysRemaining"`
	ActiveToday          bool              `json:"activeToday"`
	Stats                balance.Stats     `json:"stats"`
	ByCategory           []CategoryTotal   `json:"byCategory"`
	Warnings             []balance.Warning `json:"warnings,omitempty"`
	ComputedAt           time.Time         `json:"computedAt"`
}

// Input is everything Summarize needs for one trip, already in the trip
// currency.
type Input struct {
	Trip       model.Trip
	Incomes    []model.Transaction
	Outcomes   []model.Transaction
	Recurring  []model.RecurringTransaction
	Categories []model.Category
}

// Summarize recomputes every figure of a trip from scratch.
func Summarize(in Input, now time.Time, thresholds balance.Thresholds) (Summary, error) {
	trip := in.Trip

	current, err := balance.CurrentBalance(trip, in.Incomes, in.Outcomes)
	if err != nil {
		return Summary{}, err
	}
	projected, err := balance.ProjectedBalance(trip, in.Incomes, in.Outcomes, in.Recurring, now)
	if err != nil {
		return Summary{}, err
	}
	stats := balance.TransactionStats(in.Incomes, in.Outcomes)

	return Summary{
		TripID:               trip.ID,
		Currency:             trip.Currency,
		InitialBudget:        trip.InitialBudget,
		CurrentBalance:       current.Amount,
		ProjectedBalance:     projected.Amount,
		Status:               thresholds.Status(current.Amount, trip.InitialBudget),
		BudgetUsage:          balance.BudgetUsage(trip.InitialBudget, stats.TotalOutcome),
		DailyAverageSpend:    balance.DailyAverageSpend(in.Outcomes, trip.StartDate, now),
		RemainingDailyBudget: balance.RemainingDailyBudget(current.Amount, trip.EndDate, now),
		ProgressPercent:      calendar.TripProgressPercent(trip.StartDate, trip.EndDate, now),
		DurationDays:         calendar.TripDuration(trip.StartDate, trip.EndDate),
		DaysRemaining:        calendar.DaysRemaining(trip.EndDate, now),
		ActiveToday:          calendar.IsActiveToday(trip.StartDate, trip.EndDate, now),
		Stats:                stats,
		ByCategory:           SpendingByCategory(in.Outcomes, outcomeCategories(in.Categories)),
		Warnings:             current.Warnings,
		ComputedAt:           now,
	}, nil
}

func outcomeCategories(categories []model.Category) []model.Category {
	out := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if c.Type != model.Income {
			out = append(out, c)
		}
	}
	return out
}
