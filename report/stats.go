package report

import (
	"github.com/shopspring/decimal"
)

// MovingAverage smooths values with a centred window of half-width
// window/2, shrinking the window at the edges.
func MovingAverage(values []decimal.Decimal, window int) []decimal.Decimal {
	half := max(0, window/2)
	out := make([]decimal.Decimal, len(values))
	for i := range values {
		start := max(0, i-half)
		end := min(len(values)-1, i+half)

		sum := decimal.Zero
		for j := start; j <= end; j++ {
			sum = sum.Add(values[j])
		}
		out[i] = sum.Div(decimal.NewFromInt(int64(end - start + 1)))
	}
	return out
}

type ChartSummary struct {
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
	Average decimal.Decimal `json:"average"`
	Total   decimal.Decimal `json:"total"`
}

func ChartStats(values []decimal.Decimal) ChartSummary {
	if len(values) == 0 {
		return ChartSummary{Min: decimal.Zero, Max: decimal.Zero, Average: decimal.Zero, Total: decimal.Zero}
	}
	total := decimal.Sum(values[0], values[1:]...)
	return ChartSummary{
		Min:     decimal.Min(values[0], values[1:]...),
		Max:     decimal.Max(values[0], values[1:]...),
		Average: total.Div(decimal.NewFromInt(int64(len(values)))),
		Total:   total,
	}
}

// TripSpending is the input row of BudgetComparison.
type TripSpending struct {
	TripName string
	Budget   decimal.Decimal
	Spent    decimal.Decimal
}

type BudgetBar struct {
	TripName  string          `json:"tripName"`
	Budget    decimal.Decimal `json:"budget"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

// BudgetComparison lines up budget against spend per trip.
func BudgetComparison(items []TripSpending) []BudgetBar {
	out := make([]BudgetBar, len(items))
	for i, it := range items {
		remaining := it.Budget.Sub(it.Spent)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		out[i] = BudgetBar{TripName: it.TripName, Budget: it.Budget, Spent: it.Spent, Remaining: remaining}
	}
	return out
}
