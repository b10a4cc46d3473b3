// Package store defines the boundary between the tracker and the record
// store, and the error kinds every adapter reports.
package store

import (
	"errors"
	"fmt"
)

// Kind classifies a store failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindBudgetExceeded
	KindNotFound
	KindUnauthorized
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBudgetExceeded:
		return "budget_exceeded"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error is returned by every adapter.
type Error struct {
	Kind    Kind
	Op      string // e.g. "create expense"
	Message string // user-facing message, when the backend supplied one
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an Error with a formatted message.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to err. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// ErrBudgetExceeded is the message reported when an expense would push the
// month past its total balance.
var ErrBudgetExceeded = errors.New("this expense would exceed your monthly budget")

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

func IsBudgetExceeded(err error) bool { return KindOf(err) == KindBudgetExceeded }

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
