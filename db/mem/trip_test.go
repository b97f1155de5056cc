package mem_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadguide/calendar"
	dbt "nomadguide/db/db"
	"nomadguide/db/mem"
	"nomadguide/model"
)

var day0 = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func setupTest() dbt.TripStore {
	return mem.NewInMemoryTripStore()
}

func newTrip(userID string) *model.Trip {
	return &model.Trip{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          "Lisbon",
		StartDate:     day0,
		EndDate:       day0.AddDate(0, 0, 10),
		InitialBudget: decimal.NewFromInt(1000),
		Currency:      "EUR",
	}
}

func newTx(tripID uuid.UUID, typ model.TransactionType, amount int64, date time.Time) *model.Transaction {
	return &model.Transaction{
		ID:          uuid.New(),
		TripID:      tripID,
		Type:        typ,
		Amount:      model.Amount(decimal.NewFromInt(amount)),
		Currency:    "EUR",
		Description: "tx",
		Date:        date,
	}
}

func TestCreateTrip(t *testing.T) {
	ctx := context.Background()
	db := setupTest()

	trip := newTrip("u1")
	require.NoError(t, db.CreateTrip(ctx, trip))

	got, err := db.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.Name, got.Name)
	assert.True(t, got.InitialBudget.Equal(trip.InitialBudget))

	err = db.CreateTrip(ctx, trip)
	assert.ErrorIs(t, err, dbt.ErrConflict)
}

func TestGetTrip_NotFound(t *testing.T) {
	_, err := setupTest().GetTrip(context.Background(), uuid.New())
	assert.ErrorIs(t, err, dbt.ErrNotFound)
}

func TestGetTrip_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	db := setupTest()
	trip := newTrip("u1")
	require.NoError(t, db.CreateTrip(ctx, trip))

	got, _ := db.GetTrip(ctx, trip.ID)
	got.Name = "mutated"

	again, _ := db.GetTrip(ctx, trip.ID)
	assert.Equal(t, "Lisbon", again.Name)
}

func TestActivateTrip_SingleActivePerUser(t *testing.T) {
	ctx := context.Background()
	db := setupTest()

	a, b, other := newTrip("u1"), newTrip("u1"), newTrip("u2")
	a.IsActive = true
	other.IsActive = true
	for _, trip := range []*model.Trip{a, b, other} {
		require.NoError(t, db.CreateTrip(ctx, trip))
	}

	require.NoError(t, db.ActivateTrip(ctx, b.ID))

	trips, err := db.ListTrips(ctx, "u1")
	require.NoError(t, err)
	active := 0
	for _, trip := range trips {
		if trip.IsActive {
			active++
			assert.Equal(t, b.ID, trip.ID)
		}
	}
	assert.Equal(t, 1, active)

	gotOther, _ := db.GetTrip(ctx, other.ID)
	assert.True(t, gotOther.IsActive, "other users are untouched")

	assert.ErrorIs(t, db.ActivateTrip(ctx, uuid.New()), dbt.ErrNotFound)
}

func TestUpdateTrip(t *testing.T) {
	ctx := context.Background()
	db := setupTest()
	trip := newTrip("u1")
	require.NoError(t, db.CreateTrip(ctx, trip))

	trip.Name = "Porto"
	require.NoError(t, db.UpdateTrip(ctx, trip))
	got, _ := db.GetTrip(ctx, trip.ID)
	assert.Equal(t, "Porto", got.Name)

	assert.ErrorIs(t, db.UpdateTrip(ctx, newTrip("u1")), dbt.ErrNotFound)
}

func TestDeleteTrip_Cascades(t *testing.T) {
	ctx := context.Background()
	db := setupTest()
	trip, keep := newTrip("u1"), newTrip("u1")
	require.NoError(t, db.CreateTrip(ctx, trip))
	require.NoError(t, db.CreateTrip(ctx, keep))

	tx := newTx(trip.ID, model.Outcome, 10, day0)
	kept := newTx(keep.ID, model.Outcome, 10, day0)
	require.NoError(t, db.CreateTransaction(ctx, tx))
	require.NoError(t, db.CreateTransaction(ctx, kept))
	require.NoError(t, db.CreateCategories(ctx, model.DefaultCategories(trip.ID)))
	require.NoError(t, db.CreateRecurring(ctx, &model.RecurringTransaction{
		ID: uuid.New(), TripID: trip.ID, Type: model.Outcome, Amount: decimal.NewFromInt(5),
		Currency: "EUR", Frequency: calendar.Daily, StartDate: day0, EndDate: day0.AddDate(0, 0, 3),
	}))

	require.NoError(t, db.DeleteTrip(ctx, trip.ID))

	_, err := db.GetTransaction(ctx, tx.ID)
	assert.ErrorIs(t, err, dbt.ErrNotFound)
	_, err = db.ListCategories(ctx, trip.ID)
	assert.ErrorIs(t, err, dbt.ErrNotFound)

	got, err := db.DataLoaderGetRecurring(ctx, []uuid.UUID{trip.ID})
	require.NoError(t, err)
	assert.Empty(t, got[trip.ID])

	_, err = db.GetTransaction(ctx, kept.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, db.DeleteTrip(ctx, trip.ID), dbt.ErrNotFound)
}

func TestListTransactions_OrderAndFilter(t *testing.T) {
	ctx := context.Background()
	db := setupTest()
	trip := newTrip("u1")
	require.NoError(t, db.CreateTrip(ctx, trip))

	older := newTx(trip.ID, model.Outcome, 10, day0)
	newer := newTx(trip.ID, model.Outcome, 20, day0.AddDate(0, 0, 2))
	income := newTx(trip.ID, model.Income, 30, day0.AddDate(0, 0, 1))
	for _, tx := range []*model.Transaction{older, newer, income} {
		require.NoError(t, db.CreateTransaction(ctx, tx))
	}

	outcomes, err := db.ListTransactions(ctx, trip.ID, model.Outcome)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, newer.ID, outcomes[0].ID)
	assert.Equal(t, older.ID, outcomes[1].ID)

	all, err := db.ListTransactions(ctx, trip.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = db.ListTransactions(ctx, uuid.New(), "")
	assert.ErrorIs(t, err, dbt.ErrNotFound)
}

func TestCreateTransaction_UnknownTrip(t *testing.T) {
	err := setupTest().CreateTransaction(context.Background(), newTx(uuid.New(), model.Income, 1, day0))
	assert.ErrorIs(t, err, dbt.ErrNotFound)
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	db := setupTest()
	trip := newTrip("u1")
	require.NoError(t, db.CreateTrip(ctx, trip))
	tx := newTx(trip.ID, model.Outcome, 10, day0)
	require.NoError(t, db.CreateTransaction(ctx, tx))

	tx.Amount = model.Amount(decimal.NewFromInt(25))
	require.NoError(t, db.UpdateTransaction(ctx, tx))
	got, _ := db.GetTransaction(ctx, tx.ID)
	assert.True(t, got.Amount.Decimal.Equal(decimal.NewFromInt(25)))

	tripID, err := db.DeleteTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, tripID)

	_, err = db.DeleteTransaction(ctx, tx.ID)
	assert.ErrorIs(t, err, dbt.ErrNotFound)
}

func TestDeleteCategory_DetachesTransactions(t *testing.T) {
	ctx := context.Background()
	db := setupTest()
	trip := newTrip("u1")
	require.NoError(t, db.CreateTrip(ctx, trip))
	cats := model.DefaultCategories(trip.ID)
	require.NoError(t, db.CreateCategories(ctx, cats))

	tx := newTx(trip.ID, model.Outcome, 10, day0)
	tx.CategoryID = &cats[len(cats)-1].ID
	require.NoError(t, db.CreateTransaction(ctx, tx))

	tripID, err := db.DeleteCategory(ctx, cats[len(cats)-1].ID)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, tripID)

	got, _ := db.GetTransaction(ctx, tx.ID)
	assert.Nil(t, got.CategoryID)

	list, _ := db.ListCategories(ctx, trip.ID)
	assert.Len(t, list, len(cats)-1)
}

func TestDataLoaders(t *testing.T) {
	ctx := context.Background()
	db := setupTest()
	a, b := newTrip("u1"), newTrip("u1")
	require.NoError(t, db.CreateTrip(ctx, a))
	require.NoError(t, db.CreateTrip(ctx, b))
	require.NoError(t, db.CreateTransaction(ctx, newTx(a.ID, model.Outcome, 10, day0)))
	require.NoError(t, db.CreateTransaction(ctx, newTx(a.ID, model.Income, 10, day0)))

	loader := dbt.NewTripDataLoader(db)

	txs, err := loader.GetTransactions.Load(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	trips, err := loader.GetTrip.LoadAll(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, a.ID, trips[0].ID)
	assert.Equal(t, b.ID, trips[1].ID)

	empty, err := loader.GetTransactions.Load(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
