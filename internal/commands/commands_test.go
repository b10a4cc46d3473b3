package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwatch/internal/core"
	"spendwatch/internal/session"
	"spendwatch/internal/store"
	"spendwatch/internal/store/memory"
	"spendwatch/internal/tracker"
)

var now = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

type harness struct {
	store  *memory.Store
	svc    *tracker.Service
	closed int
}

func newHarness() *harness {
	st := memory.New().WithClock(clock)
	svc := tracker.NewService(st, nil, session.New("token", "", "Ada Lovelace")).WithClock(clock)
	return &harness{store: st, svc: svc}
}

func (h *harness) run(args ...string) (string, error) {
	root := NewRootCommand(func(context.Context) (*tracker.Service, func() error, error) {
		return h.svc, func() error { h.closed++; return nil }, nil
	})
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func (h *harness) records(t *testing.T) []core.Expense {
	t.Helper()
	records, err := h.store.ListExpenses(context.Background())
	require.NoError(t, err)
	return records
}

func TestAddAndList(t *testing.T) {
	h := newHarness()

	out, err := h.run("add", "--title", "Lunch", "--amount", "12.50", "--category", "Food")
	require.NoError(t, err)
	assert.Contains(t, out, "Added expense")
	assert.Contains(t, out, "Lunch 12.50 (Food) on 2024-03-20")

	_, err = h.run("add", "--title", "Bus", "--amount", "2", "--category", "Transportation", "--date", "2024-03-18")
	require.NoError(t, err)

	out, err = h.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "DATE")
	assert.Contains(t, out, "Lunch")
	assert.Contains(t, out, "Bus")
	assert.Contains(t, out, "March 2024 total: 14.50 (n/a vs last month)")
	assert.Contains(t, out, "Highest category: Food")
	assert.Contains(t, out, "Transactions: 2")
	assert.Equal(t, 3, h.closed)
}

func TestListFilters(t *testing.T) {
	h := newHarness()
	_, err := h.run("add", "--title", "Lunch", "--amount", "12.50", "--category", "Food")
	require.NoError(t, err)
	_, err = h.run("add", "--title", "Bus", "--amount", "2", "--category", "Transportation")
	require.NoError(t, err)

	out, err := h.run("list", "--category", "Transportation")
	require.NoError(t, err)
	assert.Contains(t, out, "Bus")
	assert.NotContains(t, out, "Lunch")
	assert.Contains(t, out, "Transactions: 2", "summary covers every record")

	out, err = h.run("list", "--search", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No expenses found.")
}

func TestAddRejectsInvalidInputWithoutWriting(t *testing.T) {
	h := newHarness()

	_, err := h.run("add", "--title", "R2D2", "--amount", "abc", "--category", "Food")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input:")
	assert.Contains(t, err.Error(), "title:")
	assert.Contains(t, err.Error(), "amount:")
	assert.Empty(t, h.records(t))
}

func TestAddOverBudgetPrintsRecoveryHint(t *testing.T) {
	h := newHarness()

	out, err := h.run("budget", "set", "--total", "100", "--limit", "80")
	require.NoError(t, err)
	assert.Contains(t, out, "Budget for March 2024 saved: total 100.00, alert at 80.00")

	_, err = h.run("add", "--title", "Television", "--amount", "150", "--category", "Entertainment")
	require.Error(t, err)
	assert.True(t, store.IsBudgetExceeded(err))
	assert.Contains(t, err.Error(), "spendwatch budget set")
	assert.Empty(t, h.records(t))
}

func TestBudgetSetValidation(t *testing.T) {
	h := newHarness()
	_, err := h.run("budget", "set", "--total", "100", "--limit", "150")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrLimitExceedsBalance)

	_, err = h.run("budget", "set", "--total", "100")
	assert.Error(t, err, "limit flag is required")
}

func TestBudgetShow(t *testing.T) {
	h := newHarness()

	out, err := h.run("budget", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Budget for March 2024")
	assert.Contains(t, out, "No budget set.")

	_, err = h.run("budget", "set", "--total", "300", "--limit", "100")
	require.NoError(t, err)
	_, err = h.run("add", "--title", "Groceries", "--amount", "120", "--category", "Food")
	require.NoError(t, err)

	out, err = h.run("budget", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "No budget set.")
	assert.Contains(t, out, "Spent: 120.00 (100% of limit, critical)")
	assert.Contains(t, out, "Remaining before limit: -20.00")
	assert.Contains(t, out, "Remaining balance: 180.00")
	assert.Contains(t, out, "exceeded your alert limit")
}

func TestEditKeepsUnchangedFields(t *testing.T) {
	h := newHarness()
	_, err := h.run("add", "--title", "Lunch", "--amount", "12.50", "--category", "Food", "--date", "2024-03-10")
	require.NoError(t, err)
	id := h.records(t)[0].ID

	out, err := h.run("edit", id, "--amount", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated expense "+id)

	records := h.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, "Lunch", records[0].Title)
	assert.Equal(t, core.Money{Cents: 2000}, records[0].Amount)
	assert.Equal(t, core.NewDate(2024, time.March, 10), records[0].Date)
}

func TestEditUnknownExpense(t *testing.T) {
	h := newHarness()
	_, err := h.run("edit", "missing", "--amount", "1")
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
}

func TestRemove(t *testing.T) {
	h := newHarness()
	_, err := h.run("add", "--title", "Lunch", "--amount", "12.50", "--category", "Food")
	require.NoError(t, err)
	id := h.records(t)[0].ID

	out, err := h.run("rm", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted expense "+id)
	assert.Empty(t, h.records(t))

	_, err = h.run("rm", id)
	assert.True(t, store.IsNotFound(err))
}

func TestHomeAndAnalytics(t *testing.T) {
	h := newHarness()

	out, err := h.run("home")
	require.NoError(t, err)
	assert.Contains(t, out, "[AL] Welcome back, Ada!")
	assert.Contains(t, out, "Last expense: none yet")
	assert.Contains(t, out, "Most used category: N/A")

	out, err = h.run("analytics")
	require.NoError(t, err)
	assert.Contains(t, out, "Highest category: N/A")
	assert.NotContains(t, out, "CATEGORY")

	_, err = h.run("add", "--title", "Lunch", "--amount", "30", "--category", "Food", "--date", "2024-03-01")
	require.NoError(t, err)
	_, err = h.run("add", "--title", "Cinema", "--amount", "10", "--category", "Entertainment", "--date", "2024-03-02")
	require.NoError(t, err)

	out, err = h.run("analytics")
	require.NoError(t, err)
	assert.Contains(t, out, "Total spent: 40.00")
	assert.Contains(t, out, "Average expense: 20.00")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "2024-03-02")

	out, err = h.run("home")
	require.NoError(t, err)
	assert.Contains(t, out, "Spent this month: 40.00")
	assert.Contains(t, out, "Last expense: Cinema 10.00 (Entertainment) on 2024-03-02")
}

func TestOpenFailure(t *testing.T) {
	root := NewRootCommand(func(context.Context) (*tracker.Service, func() error, error) {
		return nil, nil, errors.New("no database")
	})
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"list"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening backend: no database")
}

func TestExplainTransient(t *testing.T) {
	err := explain(store.Wrap(store.KindTransient, "list", errors.New("connection refused")))
	assert.Contains(t, err.Error(), "nothing was changed")
	assert.Equal(t, store.KindTransient, store.KindOf(err))
	assert.NoError(t, explain(nil))
}
