package budget

import (
	"errors"

	"spendwatch/internal/core"
)

// ErrNotANumber is returned when a budget field does not parse as a number.
var ErrNotANumber = errors.New("please enter valid positive numbers")

// ParseInput validates raw budget form values and returns the budget to
// submit for the month containing month. Nothing is returned on error, so a
// rejected submission can never partially update a budget.
func ParseInput(month core.Date, totalBalance, alertLimit string) (core.Budget, error) {
	if err := month.Validate(); err != nil {
		return core.Budget{}, &core.ValidationError{Field: "month", Err: err}
	}

	total, err := parseField("total_balance", totalBalance)
	if err != nil {
		return core.Budget{}, err
	}
	limit, err := parseField("alert_limit", alertLimit)
	if err != nil {
		return core.Budget{}, err
	}

	b := core.Budget{
		Month:        month.FirstOfMonth(),
		TotalBalance: total,
		AlertLimit:   limit,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func parseField(field, raw string) (core.Money, error) {
	d, err := core.ParseDecimal(raw)
	if err != nil {
		return core.Money{}, &core.ValidationError{Field: field, Err: ErrNotANumber}
	}
	if d.IsNegative() {
		return core.Money{}, &core.ValidationError{Field: field, Err: core.ErrNegativeAmount}
	}
	m, err := core.MoneyFromDecimal(d)
	if err != nil {
		return core.Money{}, &core.ValidationError{Field: field, Err: err}
	}
	if err := m.Validate(); err != nil {
		return core.Money{}, &core.ValidationError{Field: field, Err: err}
	}
	return m, nil
}
