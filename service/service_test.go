package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadguide/balance"
	"nomadguide/currency"
	dbt "nomadguide/db/db"
	"nomadguide/db/mem"
	"nomadguide/model"
	"nomadguide/mq/goch"
	"nomadguide/mq/mq"
	"nomadguide/rates"
	"nomadguide/service"
	"nomadguide/validate"
)

var (
	day0 = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	now  = day0.AddDate(0, 0, 5).Add(12 * time.Hour)
)

type fixedRates struct {
	result rates.Result
	calls  int
}

func (f *fixedRates) GetRates(context.Context, bool) rates.Result {
	f.calls++
	return f.result
}

func liveTable() rates.Result {
	return rates.Result{
		Success: true,
		Table: currency.RateTable{
			Base:      "USD",
			Rates:     map[string]decimal.Decimal{"USD": decimal.NewFromInt(1), "EUR": decimal.RequireFromString("0.85")},
			UpdatedAt: now,
		},
	}
}

type fixture struct {
	svc   *service.Service
	queue *goch.ChannelTripChangeQueue
	rates *fixedRates
}

func setupTest(t *testing.T) fixture {
	t.Helper()
	q := goch.NewChannelTripChangeQueue(32)
	t.Cleanup(func() { _ = q.Close() })
	r := &fixedRates{result: liveTable()}
	svc := service.New(mem.NewInMemoryTripStore(), q, r, service.WithClock(func() time.Time { return now }))
	return fixture{svc: svc, queue: q, rates: r}
}

func (f fixture) subscribe(t *testing.T, tripID uuid.UUID) <-chan mq.TripChangeMessage {
	t.Helper()
	_, ch, err := f.queue.Subscribe(tripID)
	require.NoError(t, err)
	return ch
}

func receive(t *testing.T, ch <-chan mq.TripChangeMessage) mq.TripChangeMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no change message received")
		return mq.TripChangeMessage{}
	}
}

func assertNoMessage(t *testing.T, ch <-chan mq.TripChangeMessage) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Fatalf("unexpected change message: %+v", msg)
	default:
	}
}

func tripInput(userID string) model.Trip {
	return model.Trip{
		UserID:        userID,
		Name:          "Lisbon",
		StartDate:     day0,
		EndDate:       day0.AddDate(0, 0, 10),
		InitialBudget: decimal.NewFromInt(1000),
		Currency:      "EUR",
	}
}

func categoryOf(t *testing.T, svc *service.Service, tripID uuid.UUID, typ model.TransactionType) uuid.UUID {
	t.Helper()
	categories, err := svc.ListCategories(context.Background(), tripID)
	require.NoError(t, err)
	for _, c := range categories {
		if c.Type == typ {
			return c.ID
		}
	}
	t.Fatalf("trip %s has no %s category", tripID, typ)
	return uuid.Nil
}

func txInput(tripID uuid.UUID, typ model.TransactionType, amount, code string, categoryID uuid.UUID) model.Transaction {
	return model.Transaction{
		TripID:      tripID,
		Type:        typ,
		Amount:      model.Amount(decimal.RequireFromString(amount)),
		Currency:    code,
		CategoryID:  &categoryID,
		Description: "coffee",
		Date:        day0.AddDate(0, 0, 1),
	}
}

func TestCreateTrip_SeedsCategories(t *testing.T) {
	ctx := context.Background()
	f := setupTest(t)

	trip, err := f.svc.CreateTrip(ctx, tripInput("u1"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, trip.ID)
	assert.Equal(t, now, trip.CreatedAt)

	categories, err := f.svc.ListCategories(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, categories, len(model.DefaultCategories(trip.ID)))
}

func TestCreateTrip_Invalid(t *testing.T) {
	in := tripInput("u1")
	in.EndDate = in.StartDate.AddDate(0, 0, -1)
	in.Currency = "XX"

	_, err := setupTest(t).svc.CreateTrip(context.Background(), in)
	var verr *validate.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.GreaterOrEqual(t, len(verr.Fields), 2)
}

type failingCategoryStore struct {
	dbt.TripStore
}

func (failingCategoryStore) CreateCategories(context.Context, []model.Category) error {
	return errors.New("disk full")
}

func TestCreateTrip_RollsBackWhenSeedingFails(t *testing.T) {
	ctx := context.Background()
	store := failingCategoryStore{TripStore: mem.NewInMemoryTripStore()}
	q := goch.NewChannelTripChangeQueue(8)
	t.Cleanup(func() { _ = q.Close() })
	svc := service.New(store, q, &fixedRates{result: liveTable()})

	_, err := svc.CreateTrip(ctx, tripInput("u1"))
	assert.ErrorContains(t, err, "disk full")

	trips, err := svc.ListTrips(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, trips)
}

func TestUpdateTrip_PublishesChangedFields(t *testing.T) {
	ctx := context.Background()
	f := setupTest(t)
	trip, err := f.svc.CreateTrip(ctx, tripInput("u1"))
	require.NoError(t, err)
	ch := f.subscribe(t, trip.ID)

	edit := *trip
	edit.Name = "Porto"
	edit.InitialBudget = decimal.NewFromInt(1500)
	edit.UserID = "someone-else"
	updated, err := f.svc.UpdateTrip(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, "u1", updated.UserID)

	msg := receive(t, ch)
	assert.Equal(t, mq.EntityTrip, msg.Entity)
	assert.Equal(t, mq.ActionUpdate, msg.Action)
	assert.Equal(t, []string{"InitialBudget", "Name"}, msg.Changes)

	_, err = f.svc.UpdateTrip(ctx, *updated)
	require.NoError(t, err)
	assertNoMessage(t, ch)
}

func TestActivateTrip(t *testing.T) {
	ctx := context.Background()
	f := setupTest(t)
	a, err := f.svc.CreateTrip(ctx, tripInput("u1"))
	require.NoError(t, err)
	b, err := f.svc.CreateTrip(ctx, tripInput("u1"))
	require.NoError(t, err)

	_, err = f.svc.ActivateTrip(ctx, a.ID)
	require.NoError(t, err)
	ch := f.subscribe(t, b.ID)
	_, err = f.svc.ActivateTrip(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"IsActive"}, receive(t, ch).Changes)

	trips, err := f.svc.ListTrips(ctx, "u1")
	require.NoError(t, err)
	active := 0
	for _, tr := range trips {
		if tr.IsActive {
			active++
			assert.Equal(t, b.ID, tr.ID)
		}
	}
	assert.Equal(t, 1, active)
}

func TestCreateTransaction_RejectsForeignCategory(t *testing.T) {
	ctx := context.Background()
	f := setupTest(t)
	a, err := f.svc.CreateTrip(ctx, tripInput("u1"))
	require.NoError(t, err)
	b, err := f.svc.CreateTrip(ctx, tripInput("u1"))
	require.NoError(t, err)

	_, err = f.svc.CreateTransaction(ctx, txInput(a.ID, model.Outcome, "10", "EUR", categoryOf(t, f.svc, b.ID, model.Outcome)))
	var verr *validate.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "CategoryID", verr.Fields[0].Field)

	_, err = f.svc.CreateTransaction(ctx, txInput(a.ID, model.Outcome, "10", "EUR", categoryOf(t, f.svc, a.ID, model.Income)))
	require.ErrorAs(t, err, &verr)
}

func TestTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	f := setupTest(t)
	trip, err := f.svc.CreateTrip(ctx, tripInput("u1"))
	require.NoError(t, err)
	ch := f.subscribe(t, trip.ID)

	tx, err := f.svc.CreateTransaction(ctx, txInput(trip.ID, model.Outcome, "12.50", "EUR", categoryOf(t, f.svc, trip.ID, model.Outcome)))
	require.NoError(t, err)
	assert.Equal(t, mq.ActionCreate, receive(t, ch).Action)

	edit := *tx
	edit.Amount = model.Amount(decimal.RequireFromString("13"))
	_, err = f.svc.UpdateTransaction(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, []string{"Amount"}, receive(t, ch).Changes)

	require.NoError(t, f.svc.DeleteTransaction(ctx, tx.ID))
	msg := receive(t, ch)
	assert.Equal(t, mq.ActionDelete, msg.Action)
	assert.Equal(t, tx.ID, msg.EntityID)

	err = f.svc.DeleteTransaction(ctx, tx.ID)
	assert.True(t, errors.Is(err, dbt.ErrNotFound))
}

func TestSummary_ConvertsForeignCurrency(t *testing.T) {
	ctx := context.Background()
	f := setupTest(t)
	trip, err := f.svc.CreateTrip(ctx, tripInput("u1"))
	require.NoError(t, err)

	_, err = f.svc.CreateTransaction(ctx, txInput(trip.ID, model.Income, "200", "EUR", categoryOf(t, f.svc, trip.ID, model.Income)))
	require.NoError(t, err)
	_, err = f.svc.CreateTransaction(ctx, txInput(trip.ID, model.Outcome, "100", "USD", categoryOf(t, f.svc, trip.ID, model.Outcome)))
	require.NoError(t, err)

	summary, err := f.svc.Summary(ctx, trip.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1115).Equal(summary.CurrentBalance), summary.CurrentBalance.String())
	assert.Equal(t, balance.StatusGood, summary.Status)
	assert.Empty(t, summary.Warnings)
	assert.Equal(t, 1, f.rates.calls)
	assert.Equal(t, now, summary.ComputedAt)
}

func TestSummary_SameCurrencySkipsRates(t *testing.T) {
	ctx := context.Background()
	f := setupTest(t)
	trip, err := f.svc.CreateTrip(ctx, tripInput("u1"))
	require.NoError(t, err)
	_, err = f.svc.CreateTransaction(ctx, txInput(trip.ID, model.Outcome, "40", "EUR", categoryOf(t, f.svc, trip.ID, model.Outcome)))
	require.NoError(t, err)

	summary, err := f.svc.Summary(ctx, trip.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(960).Equal(summary.CurrentBalance))
	assert.Zero(t, f.rates.calls)
}

func TestSummary_FallbackRatesWarn(t *testing.T) {
	ctx := context.Background()
	f := setupTest(t)
	f.rates.result = rates.Result{Table: currency.OfflineTable(), Stale: true, Error: "upstream down"}
	trip, err := f.svc.CreateTrip(ctx, tripInput("u1"))
	require.NoError(t, err)
	_, err = f.svc.CreateTransaction(ctx, txInput(trip.ID, model.Outcome, "10", "USD", categoryOf(t, f.svc, trip.ID, model.Outcome)))
	require.NoError(t, err)

	summary, err := f.svc.Summary(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, summary.Warnings, 1)
	assert.Equal(t, balance.WarningRatesFallback, summary.Warnings[0].Kind)
	assert.Contains(t, summary.Warnings[0].Message, "upstream down")
}

func TestSummary_UnknownTrip(t *testing.T) {
	_, err := setupTest(t).svc.Summary(context.Background(), uuid.New())
	assert.ErrorIs(t, err, dbt.ErrNotFound)
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	f := setupTest(t)
	trip, err := f.svc.CreateTrip(ctx, tripInput("u1"))
	require.NoError(t, err)
	food := categoryOf(t, f.svc, trip.ID, model.Outcome)
	_, err = f.svc.CreateTransaction(ctx, txInput(trip.ID, model.Outcome, "30", "EUR", food))
	require.NoError(t, err)
	_, err = f.svc.CreateTransaction(ctx, txInput(trip.ID, model.Outcome, "10", "USD", food))
	require.NoError(t, err)

	byCategory, err := f.svc.CategoryReport(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, food, byCategory[0].CategoryID)
	assert.Equal(t, 2, byCategory[0].Count)

	daily, err := f.svc.DailyReport(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, daily.Points, 6)
	assert.Len(t, daily.MovingAverage, 6)
	assert.True(t, decimal.RequireFromString("38.5").Equal(daily.Stats.Total), daily.Stats.Total.String())

	weekly, err := f.svc.WeeklyReport(ctx, trip.ID, 0)
	require.NoError(t, err)
	assert.Len(t, weekly, service.DefaultWeekCount)

	monthly, err := f.svc.MonthlyReport(ctx, trip.ID, 3)
	require.NoError(t, err)
	assert.Len(t, monthly, 3)

	currencies, err := f.svc.CurrencyReport(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, currencies, 2)
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	f := setupTest(t)
	a, err := f.svc.CreateTrip(ctx, tripInput("u1"))
	require.NoError(t, err)
	b, err := f.svc.CreateTrip(ctx, tripInput("u1"))
	require.NoError(t, err)
	_, err = f.svc.ActivateTrip(ctx, b.ID)
	require.NoError(t, err)
	_, err = f.svc.CreateTransaction(ctx, txInput(a.ID, model.Outcome, "1200", "EUR", categoryOf(t, f.svc, a.ID, model.Outcome)))
	require.NoError(t, err)

	ov, err := f.svc.Overview(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, ov.Active)
	assert.Equal(t, b.ID, ov.Active.ID)
	require.Len(t, ov.Trips, 2)
	require.Len(t, ov.Budgets, 2)

	for i, tr := range ov.Trips {
		if tr.Trip.ID == a.ID {
			assert.Equal(t, balance.StatusCritical, tr.Status)
			assert.True(t, ov.Budgets[i].Remaining.IsZero())
		}
	}
}

func TestQuote(t *testing.T) {
	conv, res, err := setupTest(t).svc.Quote(context.Background(), decimal.NewFromInt(100), "USD", "EUR")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, decimal.NewFromInt(85).Equal(conv.Converted))

	_, _, err = setupTest(t).svc.Quote(context.Background(), decimal.NewFromInt(1), "USD", "GBP")
	assert.ErrorIs(t, err, currency.ErrMissingRate)
}
