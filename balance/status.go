package balance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusGood     Status = "good"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Thresholds are the remaining-budget percentages at or above which a
// trip is considered good or warning.
type Thresholds struct {
	Good    decimal.Decimal `json:"good"`
	Warning decimal.Decimal `json:"warning"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Good:    decimal.NewFromInt(20),
		Warning: decimal.NewFromInt(5),
	}
}

func (t Thresholds) Validate() error {
	if t.Warning.IsNegative() {
		return fmt.Errorf("warning threshold %s must not be negative", t.Warning)
	}
	if t.Good.LessThan(t.Warning) {
		return fmt.Errorf("good threshold %s is below warning threshold %s", t.Good, t.Warning)
	}
	return nil
}

// Status classifies current against the initial budget.
func (t Thresholds) Status(current, initialBudget decimal.Decimal) Status {
	if !initialBudget.IsPositive() {
		if current.IsNegative() {
			return StatusCritical
		}
		return StatusGood
	}

	percentage := current.Mul(hundred).Div(initialBudget)
	switch {
	case percentage.GreaterThanOrEqual(t.Good):
		return StatusGood
	case percentage.GreaterThanOrEqual(t.Warning):
		return StatusWarning
	default:
		return StatusCritical
	}
}

// BudgetStatus classifies with the default 20% and 5% thresholds.
func BudgetStatus(current, initialBudget decimal.Decimal) Status {
	return DefaultThresholds().Status(current, initialBudget)
}
