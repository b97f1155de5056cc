package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nomadguide/balance"
	dbt "nomadguide/db/db"
	"nomadguide/model"
	"nomadguide/report"
)

type TripOverview struct {
	Trip           model.Trip      `json:"trip"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	Spent          decimal.Decimal `json:"spent"`
	Status         balance.Status  `json:"status"`
}

// Overview is the cross-trip view of one user.
type Overview struct {
	UserID  string             `json:"userId"`
	Active  *model.Trip        `json:"active,omitempty"`
	Trips   []TripOverview     `json:"trips"`
	Budgets []report.BudgetBar `json:"budgets"`
}

func (s *Service) loader(ctx context.Context) *dbt.TripDataLoader {
	if l, ok := dbt.TripDataLoaderFrom(ctx); ok {
		return l
	}
	return dbt.NewTripDataLoader(s.store)
}

// Overview lists the user's trips with their balance and budget use.
// Per-trip transactions are fetched in one batch.
func (s *Service) Overview(ctx context.Context, userID string) (*Overview, error) {
	trips, err := s.store.ListTrips(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(trips))
	for i, t := range trips {
		ids[i] = t.ID
	}

	txsByTrip, err := s.loader(ctx).GetTransactions.LoadAll(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load transactions of user %s: %w", userID, err)
	}

	out := &Overview{UserID: userID, Trips: make([]TripOverview, 0, len(trips))}
	spending := make([]report.TripSpending, 0, len(trips))
	for i, trip := range trips {
		data := &tripData{trip: trip}
		if err := s.normalize(ctx, data, txsByTrip[i]); err != nil {
			return nil, err
		}
		current, err := balance.CurrentBalance(trip, data.incomes, data.outcomes)
		if err != nil {
			return nil, err
		}
		spent, _ := balance.Total(data.outcomes)

		out.Trips = append(out.Trips, TripOverview{
			Trip:           trip,
			CurrentBalance: current.Amount,
			Spent:          spent,
			Status:         s.thresholds.Status(current.Amount, trip.InitialBudget),
		})
		spending = append(spending, report.TripSpending{TripName: trip.Name, Budget: trip.InitialBudget, Spent: spent})
		if trip.IsActive {
			active := trip
			out.Active = &active
		}
	}
	out.Budgets = report.BudgetComparison(spending)
	return out, nil
}
