package log

import (
	"maps"
	"slices"

	"spendwatch/internal/core"
)

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldBackend     = "backend"
	FieldExpenseID   = "expense_id"
	FieldTitle       = "title"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDate        = "date"
	FieldMonth       = "month"
	FieldSpent       = "spent"
	FieldAlertLimit  = "alert_limit"
	FieldTotal       = "total_balance"
	FieldRecordCount = "records"
)

// Components
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentBackend = "backend"
	ComponentTracker = "tracker"
	ComponentStorage = "storage"
	ComponentAPI     = "api"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
)

// Operations
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpBudget   = "budget"
	OpAlert    = "alert"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields builds structured key/value pairs for slog.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError is a no-op for a nil error.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithExpense(e core.Expense) LogFields {
	if e.ID != "" {
		f[FieldExpenseID] = e.ID
	}
	f[FieldTitle] = e.Title
	f[FieldAmount] = e.Amount.String()
	f[FieldCategory] = e.Category.String()
	f[FieldDate] = e.Date.String()
	return f
}

func (f LogFields) WithBudget(b core.Budget) LogFields {
	f[FieldMonth] = b.Month.Format("2006-01")
	f[FieldTotal] = b.TotalBalance.String()
	f[FieldAlertLimit] = b.AlertLimit.String()
	return f
}

// ToSlice flattens the fields in key order.
func (f LogFields) ToSlice() []any {
	out := make([]any, 0, len(f)*2)
	for _, k := range slices.Sorted(maps.Keys(f)) {
		out = append(out, k, f[k])
	}
	return out
}
