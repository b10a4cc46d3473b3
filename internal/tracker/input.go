package tracker

import (
	"errors"
	"slices"
	"strings"

	"spendwatch/internal/core"
)

// ExpenseInput holds the raw values of the expense form.
type ExpenseInput struct {
	Title    string
	Amount   string
	Category string
	Date     string
}

var fieldOrder = map[string]int{"title": 0, "amount": 1, "category": 2, "date": 3}

// Parse converts the form into an expense and validates it as of today.
// Every failing field is reported in one core.ValidationErrors, in form
// order.
func (in ExpenseInput) Parse(today core.Date) (core.Expense, error) {
	var errs core.ValidationErrors

	e := core.Expense{Title: strings.TrimSpace(in.Title)}

	amount, err := core.ParseMoney(in.Amount)
	if err != nil {
		errs = append(errs, &core.ValidationError{Field: "amount", Err: err})
	}
	e.Amount = amount

	// Unparsable category and date stay zero and fail Validate below.
	e.Category, _ = core.ParseCategory(strings.TrimSpace(in.Category))
	e.Date, _ = core.ParseDate(strings.TrimSpace(in.Date))

	var verrs core.ValidationErrors
	if errors.As(e.Validate(today), &verrs) {
		for _, fe := range verrs {
			if errs.Field(fe.Field) == nil {
				errs = append(errs, fe)
			}
		}
	}

	if len(errs) > 0 {
		slices.SortStableFunc(errs, func(a, b *core.ValidationError) int {
			return fieldOrder[a.Field] - fieldOrder[b.Field]
		})
		return core.Expense{}, errs
	}
	return e, nil
}

// InputFrom pre-fills the form with an existing record, for editing.
func InputFrom(e core.Expense) ExpenseInput {
	return ExpenseInput{
		Title:    e.Title,
		Amount:   e.Amount.String(),
		Category: e.Category.String(),
		Date:     e.Date.String(),
	}
}
