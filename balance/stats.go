package balance

import (
	"github.com/shopspring/decimal"

	"nomadguide/model"
)

type Stats struct {
	TotalIncome    decimal.Decimal `json:"totalIncome"`
	TotalOutcome   decimal.Decimal `json:"totalOutcome"`
	Net            decimal.Decimal `json:"net"`
	IncomeCount    int             `json:"incomeCount"`
	OutcomeCount   int             `json:"outcomeCount"`
	AverageIncome  decimal.Decimal `json:"averageIncome"`
	AverageOutcome decimal.Decimal `json:"averageOutcome"`
	LargestIncome  decimal.Decimal `json:"largestIncome"`
	LargestOutcome decimal.Decimal `json:"largestOutcome"`
}

func largest(txs []model.Transaction) decimal.Decimal {
	top := decimal.Zero
	for _, tx := range txs {
		if amount, ok := tx.AmountOrZero(); ok && amount.GreaterThan(top) {
			top = amount
		}
	}
	return top
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n)))
}

// TransactionStats aggregates counts, totals, averages and extremes.
func TransactionStats(incomes, outcomes []model.Transaction) Stats {
	in := sumOf(incomes)
	out := sumOf(outcomes)
	return Stats{
		TotalIncome:    in,
		TotalOutcome:   out,
		Net:            in.Sub(out),
		IncomeCount:    len(incomes),
		OutcomeCount:   len(outcomes),
		AverageIncome:  average(in, len(incomes)),
		AverageOutcome: average(out, len(outcomes)),
		LargestIncome:  largest(incomes),
		LargestOutcome: largest(outcomes),
	}
}
