package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	// MaxTitleLength mirrors the storage column width of the backend.
	MaxTitleLength = 255
)

type (
	// Expense is a single logged expense. Records are never mutated by the
	// engine; edits replace the whole record.
	Expense struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Amount    Money     `json:"amount"`
		Category  Category  `json:"category"`
		Date      Date      `json:"date"`
		CreatedAt time.Time `json:"created_at,omitzero"`
	}

	// Budget is the configuration for one calendar month.
	Budget struct {
		ID           string `json:"id,omitempty"`
		Month        Date   `json:"month"` // always the first of the month
		TotalBalance Money  `json:"total_balance"`
		AlertLimit   Money  `json:"alert_limit"`
		AlertSent    bool   `json:"alert_sent"`
	}
)

var (
	ErrTitleRequired       = errors.New("description is required")
	ErrTitleInvalid        = errors.New("description must contain only alphabets and spaces")
	ErrTitleTooLong        = errors.New("description too long (max 255 characters)")
	ErrInvalidDate         = errors.New("invalid date")
	ErrFutureDate          = errors.New("future dates are not allowed")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrNegativeAmount      = errors.New("amounts must be positive")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrLimitExceedsBalance = errors.New("alert limit cannot be greater than total monthly budget")
)

var titlePattern = regexp.MustCompile(`^[A-Za-z\s]+$`)

// ValidationError reports which field failed which rule.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidationErrors collects every failing field of a record so all of them
// can be shown at once.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, e := range v {
		errs[i] = e
	}
	return errs
}

// Field returns the first error reported for field, or nil.
func (v ValidationErrors) Field(field string) *ValidationError {
	for _, e := range v {
		if e.Field == field {
			return e
		}
	}
	return nil
}

// ValidateTitle checks the letters-and-spaces rule.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if len(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if !titlePattern.MatchString(title) {
		return ErrTitleInvalid
	}
	return nil
}

// Validate checks the record as it would be submitted on the given day.
// It returns ValidationErrors listing every failing field, or nil.
func (e Expense) Validate(today Date) error {
	var errs ValidationErrors

	if err := ValidateTitle(e.Title); err != nil {
		errs = append(errs, &ValidationError{Field: "title", Err: err})
	}
	if err := e.Amount.Validate(); err != nil {
		errs = append(errs, &ValidationError{Field: "amount", Err: err})
	}
	if !e.Category.Valid() {
		errs = append(errs, &ValidationError{Field: "category", Err: ErrInvalidCategory})
	}
	if err := e.Date.Validate(); err != nil {
		errs = append(errs, &ValidationError{Field: "date", Err: err})
	} else if e.Date.After(today.Time) {
		errs = append(errs, &ValidationError{Field: "date", Err: ErrFutureDate})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Validate enforces the budget invariants: non-negative amounts and an alert
// limit that does not exceed the total balance.
func (b Budget) Validate() error {
	if err := b.Month.Validate(); err != nil {
		return &ValidationError{Field: "month", Err: err}
	}
	if b.TotalBalance.IsNegative() {
		return &ValidationError{Field: "total_balance", Err: ErrNegativeAmount}
	}
	if b.AlertLimit.IsNegative() {
		return &ValidationError{Field: "alert_limit", Err: ErrNegativeAmount}
	}
	if b.AlertLimit.Cents > b.TotalBalance.Cents {
		return &ValidationError{Field: "alert_limit", Err: ErrLimitExceedsBalance}
	}
	return nil
}
