package diff_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomadguide/libs/diff"
	"nomadguide/model"
)

func baseTrip() model.Trip {
	return model.Trip{
		ID:            uuid.New(),
		UserID:        "u1",
		Name:          "Hanoi",
		StartDate:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
		InitialBudget: decimal.RequireFromString("1500"),
		Currency:      "USD",
	}
}

func TestChanges_Trip(t *testing.T) {
	a := baseTrip()

	tests := []struct {
		name   string
		mutate func(*model.Trip)
		want   []string
	}{
		{"identical", func(*model.Trip) {}, []string{}},
		{"same amount different scale", func(t *model.Trip) { t.InitialBudget = decimal.RequireFromString("1500.00") }, []string{}},
		{"budget", func(t *model.Trip) { t.InitialBudget = decimal.NewFromInt(1600) }, []string{"InitialBudget"}},
		{"cosmetic", func(t *model.Trip) { t.Name = "Ha Noi"; t.Description = "north" }, []string{"Description", "Name"}},
		{"dates", func(t *model.Trip) { t.EndDate = t.EndDate.AddDate(0, 0, 1) }, []string{"EndDate"}},
		{"timestamps ignored", func(t *model.Trip) { t.UpdatedAt = time.Now() }, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := a
			tt.mutate(&b)
			got, err := diff.Changes(a, b, "CreatedAt", "UpdatedAt")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChanges_TransactionPointersAndNullAmount(t *testing.T) {
	cat := uuid.New()
	a := model.Transaction{
		ID:          uuid.New(),
		Type:        model.Outcome,
		Amount:      model.Amount(decimal.NewFromInt(20)),
		Currency:    "EUR",
		Description: "lunch",
	}

	b := a
	b.CategoryID = &cat
	got, err := diff.Changes(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"CategoryID"}, got)

	c := a
	c.Amount = decimal.NullDecimal{}
	got, err = diff.Changes(a, c)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Contains(t, got[0], "Amount")
}
