package validate_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadguide/calendar"
	"nomadguide/model"
	"nomadguide/validate"
)

var start = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validTrip() model.Trip {
	return model.Trip{
		UserID:        "u1",
		Name:          "Kyoto",
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 7),
		InitialBudget: d("150000"),
		Currency:      "JPY",
	}
}

func fields(t *testing.T, err error) []string {
	t.Helper()
	var ve *validate.ValidationError
	require.ErrorAs(t, err, &ve)
	out := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		out[i] = f.Field
	}
	return out
}

func TestTrip(t *testing.T) {
	assert.NoError(t, validate.Trip(validTrip()))

	zeroBudget := validTrip()
	zeroBudget.InitialBudget = decimal.Zero
	assert.NoError(t, validate.Trip(zeroBudget))

	bad := validTrip()
	bad.Name = ""
	bad.Currency = "yen"
	bad.EndDate = start.AddDate(0, 0, -1)
	bad.InitialBudget = d("-1")
	got := fields(t, validate.Trip(bad))
	assert.Contains(t, got, "Name")
	assert.Contains(t, got, "Currency")
	assert.Contains(t, got, "EndDate")
	assert.Contains(t, got, "InitialBudget")
}

func TestTrip_MinorUnits(t *testing.T) {
	trip := validTrip()
	trip.InitialBudget = d("100.5")
	assert.Contains(t, fields(t, validate.Trip(trip)), "InitialBudget")

	trip.Currency = "EUR"
	assert.NoError(t, validate.Trip(trip))
	trip.InitialBudget = d("100.505")
	assert.Contains(t, fields(t, validate.Trip(trip)), "InitialBudget")
}

func TestTransaction(t *testing.T) {
	cat := uuid.New()
	tx := model.Transaction{
		Type:        model.Outcome,
		Amount:      model.Amount(d("12.30")),
		Currency:    "EUR",
		CategoryID:  &cat,
		Description: "Lunch",
		Date:        start,
	}
	assert.NoError(t, validate.Transaction(tx))

	noCategory := tx
	noCategory.CategoryID = nil
	assert.Equal(t, []string{"CategoryID"}, fields(t, validate.Transaction(noCategory)))

	income := noCategory
	income.Type = model.Income
	assert.NoError(t, validate.Transaction(income))

	zero := tx
	zero.Amount = model.Amount(decimal.Zero)
	assert.Equal(t, []string{"Amount"}, fields(t, validate.Transaction(zero)))

	missing := tx
	missing.Amount = decimal.NullDecimal{}
	assert.Equal(t, []string{"Amount"}, fields(t, validate.Transaction(missing)))

	huge := tx
	huge.Amount = model.Amount(d("1000000.01"))
	assert.Equal(t, []string{"Amount"}, fields(t, validate.Transaction(huge)))

	badType := tx
	badType.Type = "refund"
	assert.Contains(t, fields(t, validate.Transaction(badType)), "Type")
}

func TestRecurring(t *testing.T) {
	r := model.RecurringTransaction{
		Type:      model.Outcome,
		Amount:    d("40"),
		Currency:  "USD",
		Frequency: calendar.Weekly,
		StartDate: start,
		EndDate:   start.AddDate(0, 1, 0),
	}
	assert.NoError(t, validate.Recurring(r))

	r.Frequency = "fortnightly"
	r.EndDate = start.AddDate(0, 0, -1)
	got := fields(t, validate.Recurring(r))
	assert.Contains(t, got, "Frequency")
	assert.Contains(t, got, "EndDate")
}

func TestCategory(t *testing.T) {
	assert.NoError(t, validate.Category(model.Category{Type: model.Outcome, Name: "Snacks", Color: "#FFAA00"}))
	assert.Error(t, validate.Category(model.Category{Type: model.Outcome, Name: "Snacks", Color: "orange"}))
}

func TestAmount(t *testing.T) {
	assert.Empty(t, validate.Amount("x", d("0"), "USD", true))
	assert.NotEmpty(t, validate.Amount("x", d("0"), "USD", false))
	assert.NotEmpty(t, validate.Amount("x", d("1.5"), "KRW", false))
}
