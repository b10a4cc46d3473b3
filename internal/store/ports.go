package store

import (
	"context"
	"slices"

	"spendwatch/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordStore persists expense records.
	RecordStore interface {
		// ListExpenses returns every record, newest date first, then newest creation time.
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		// CreateExpense stores e and returns it with its assigned id and creation time.
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		// ReplaceExpense overwrites the record with e.ID.
		ReplaceExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
	}

	// BudgetStore persists one budget per calendar month.
	BudgetStore interface {
		// GetBudget returns the budget for the month containing month.
		// found is false when no budget was configured.
		GetBudget(ctx context.Context, month core.Date) (b core.Budget, found bool, err error)
		// SaveBudget creates or replaces the month's budget and reopens its alert latch.
		SaveBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		MarkAlertSent(ctx context.Context, month core.Date) error
	}

	// Store is the full boundary the tracker talks to.
	Store interface {
		RecordStore
		BudgetStore
	}
)

// SortNewestFirst orders records the way ListExpenses returns them.
func SortNewestFirst(records []core.Expense) {
	slices.SortStableFunc(records, func(a, b core.Expense) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// MonthSpent sums the records falling in month's calendar month.
func MonthSpent(records []core.Expense, month core.Date) core.Money {
	var total core.Money
	for _, r := range records {
		if r.Date.InMonth(month.Year(), month.Month()) {
			total = total.Add(r.Amount)
		}
	}
	return total
}
