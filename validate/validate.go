package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"nomadguide/calendar"
	"nomadguide/currency"
	"nomadguide/model"
)

// MaxAmount bounds any single amount or budget.
var MaxAmount = decimal.NewFromInt(1_000_000)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every problem found in one input.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		if err := registerRules(v); err != nil {
			panic(fmt.Sprintf("validate: register rules: %v", err))
		}
		instance = v
	})
	return instance
}

func registerRules(v *validator.Validate) error {
	return errors.Join(
		v.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
			return calendar.Frequency(fl.Field().String()).Valid()
		}),
		v.RegisterValidation("iso4217", func(fl validator.FieldLevel) bool {
			return currency.ValidCode(fl.Field().String())
		}),
	)
}

func collect(v any, out *ValidationError) {
	err := engine().Struct(v)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out.add("", "%v", err)
		return
	}
	for _, fe := range fieldErrs {
		out.add(fe.Field(), "failed %q", fe.Tag())
	}
}

// Amount checks a positive (or, with allowZero, non-negative) amount that
// fits the minor units of code.
func Amount(field string, amount decimal.Decimal, code string, allowZero bool) []FieldError {
	e := &ValidationError{}
	switch {
	case !allowZero && !amount.IsPositive():
		e.add(field, "must be greater than zero")
	case amount.IsNegative():
		e.add(field, "cannot be negative")
	}
	if amount.GreaterThan(MaxAmount) {
		e.add(field, "cannot exceed %s", MaxAmount)
	}
	if places := currency.Precision(code); !amount.Equal(amount.Round(places)) {
		e.add(field, "cannot have more than %d decimal places for %s", places, code)
	}
	return e.Fields
}

func Trip(t model.Trip) error {
	e := &ValidationError{}
	collect(t, e)
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate) {
		e.add("EndDate", "cannot be earlier than start date")
	}
	e.Fields = append(e.Fields, Amount("InitialBudget", t.InitialBudget, t.Currency, true)...)
	return e.errOrNil()
}

func Transaction(tx model.Transaction) error {
	e := &ValidationError{}
	collect(tx, e)
	if !tx.Amount.Valid {
		e.add("Amount", "is required")
	} else {
		e.Fields = append(e.Fields, Amount("Amount", tx.Amount.Decimal, tx.Currency, false)...)
	}
	if tx.Type == model.Outcome && tx.CategoryID == nil {
		e.add("CategoryID", "is required for outcomes")
	}
	return e.errOrNil()
}

func Recurring(r model.RecurringTransaction) error {
	e := &ValidationError{}
	collect(r, e)
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		e.add("EndDate", "cannot be earlier than start date")
	}
	e.Fields = append(e.Fields, Amount("Amount", r.Amount, r.Currency, false)...)
	return e.errOrNil()
}

func Category(c model.Category) error {
	e := &ValidationError{}
	collect(c, e)
	return e.errOrNil()
}
