package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"nomadguide/balance"
	"nomadguide/currency"
	"nomadguide/model"
	"nomadguide/rates"
	"nomadguide/report"
)

const (
	DefaultWeekCount  = 8
	DefaultMonthCount = 6
)

// tripData is one trip with all of its collections, converted to the
// trip currency.
type tripData struct {
	trip       model.Trip
	incomes    []model.Transaction
	outcomes   []model.Transaction
	recurring  []model.RecurringTransaction
	categories []model.Category
	warnings   []balance.Warning
}

// load reads the trip and its collections concurrently.
func (s *Service) load(ctx context.Context, tripID uuid.UUID) (*tripData, error) {
	var (
		trip       *model.Trip
		txs        []model.Transaction
		recurring  []model.RecurringTransaction
		categories []model.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		trip, err = s.store.GetTrip(gctx, tripID)
		return err
	})
	g.Go(func() (err error) {
		txs, err = s.store.ListTransactions(gctx, tripID, "")
		return err
	})
	g.Go(func() (err error) {
		recurring, err = s.store.ListRecurring(gctx, tripID)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.store.ListCategories(gctx, tripID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := &tripData{trip: *trip, recurring: recurring, categories: categories}
	if err := s.normalize(ctx, data, txs); err != nil {
		return nil, err
	}
	return data, nil
}

// normalize converts foreign currency entries into the trip currency.
// Rates are only requested when something actually needs converting.
func (s *Service) normalize(ctx context.Context, data *tripData, txs []model.Transaction) error {
	target := data.trip.Currency
	foreign := slices.ContainsFunc(txs, func(tx model.Transaction) bool {
		return tx.Currency != "" && tx.Currency != target
	}) || slices.ContainsFunc(data.recurring, func(r model.RecurringTransaction) bool {
		return r.Currency != "" && r.Currency != target
	})

	if foreign {
		res := s.rates.GetRates(ctx, false)
		if !res.Success {
			data.warnings = append(data.warnings, balance.Warning{
				Kind:    balance.WarningRatesFallback,
				Message: fmt.Sprintf("live exchange rates unavailable, using fallback rates: %s", res.Error),
			})
		}
		var err error
		if txs, err = balance.NormalizeCurrency(target, txs, res.Table); err != nil {
			return err
		}
		if data.recurring, err = balance.NormalizeRecurring(target, data.recurring, res.Table); err != nil {
			return err
		}
	}

	data.incomes = model.FilterByType(txs, model.Income)
	data.outcomes = model.FilterByType(txs, model.Outcome)
	return nil
}

// Summary recomputes the read model of a trip.
func (s *Service) Summary(ctx context.Context, tripID uuid.UUID) (*report.Summary, error) {
	data, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	summary, err := report.Summarize(report.Input{
		Trip:       data.trip,
		Incomes:    data.incomes,
		Outcomes:   data.outcomes,
		Recurring:  data.recurring,
		Categories: data.categories,
	}, s.now(), s.thresholds)
	if err != nil {
		return nil, fmt.Errorf("summarize trip %s: %w", tripID, err)
	}
	summary.Warnings = append(summary.Warnings, data.warnings...)
	return &summary, nil
}

func (s *Service) CategoryReport(ctx context.Context, tripID uuid.UUID) ([]report.CategoryTotal, error) {
	data, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	outcomeCategories := slices.DeleteFunc(slices.Clone(data.categories), func(c model.Category) bool {
		return c.Type == model.Income
	})
	return report.SpendingByCategory(data.outcomes, outcomeCategories), nil
}

// DailyReport is the per day outcome series over the trip so far, with
// a centred moving average and summary figures.
type DailyReport struct {
	Points        []report.DayPoint   `json:"points"`
	MovingAverage []decimal.Decimal   `json:"movingAverage"`
	Stats         report.ChartSummary `json:"stats"`
}

const movingAverageWindow = 7

func (s *Service) DailyReport(ctx context.Context, tripID uuid.UUID) (*DailyReport, error) {
	data, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	points := report.DailySeries(data.outcomes, data.trip.StartDate, data.trip.EndDate, s.now())
	totals := report.Totals(points)
	return &DailyReport{
		Points:        points,
		MovingAverage: report.MovingAverage(totals, movingAverageWindow),
		Stats:         report.ChartStats(totals),
	}, nil
}

func (s *Service) WeeklyReport(ctx context.Context, tripID uuid.UUID, weeks int) ([]report.WeekPoint, error) {
	data, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if weeks <= 0 {
		weeks = DefaultWeekCount
	}
	return report.WeeklySeries(data.outcomes, weeks, s.now()), nil
}

func (s *Service) MonthlyReport(ctx context.Context, tripID uuid.UUID, months int) ([]report.MonthPoint, error) {
	data, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if months <= 0 {
		months = DefaultMonthCount
	}
	txs := append(slices.Clone(data.incomes), data.outcomes...)
	return report.MonthlyTrend(txs, months, s.now()), nil
}

// CurrencyReport totals the trip's transactions in the currency they
// were recorded in, so it reads the store directly.
func (s *Service) CurrencyReport(ctx context.Context, tripID uuid.UUID) ([]report.CurrencyTotal, error) {
	txs, err := s.store.ListTransactions(ctx, tripID, "")
	if err != nil {
		return nil, err
	}
	return report.CurrencyDistribution(txs), nil
}

func (s *Service) Rates(ctx context.Context, forceRefresh bool) rates.Result {
	return s.rates.GetRates(ctx, forceRefresh)
}

// Quote previews a conversion with the current rates.
func (s *Service) Quote(ctx context.Context, amount decimal.Decimal, from, to string) (currency.Conversion, rates.Result, error) {
	res := s.rates.GetRates(ctx, false)
	conv, err := currency.Quote(amount, from, to, res.Table)
	if err != nil {
		return currency.Conversion{}, res, err
	}
	return conv, res, nil
}
