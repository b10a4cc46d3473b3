// Package memory is an in-process record store, used for demos and tests.
// It applies the same rules as the real backend: field validation, the
// monthly total-balance check on create, and one budget per month.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendwatch/internal/budget"
	"spendwatch/internal/core"
	"spendwatch/internal/store"
)

type Store struct {
	mu      sync.Mutex
	items   []core.Expense
	budgets map[string]core.Budget // keyed by first-of-month date
	now     func() time.Time
}

// Seed is the JSON layout accepted by NewFromFile.
type Seed struct {
	Expenses []core.Expense `json:"expenses"`
	Budgets  []core.Budget  `json:"budgets"`
}

func New() *Store {
	return &Store{budgets: make(map[string]core.Budget), now: time.Now}
}

// NewFromFile seeds a store from a JSON file. A missing file yields an
// empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("Seed file not found, starting empty", "path", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for _, e := range seed.Expenses {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = e.Date.Time
		}
		s.items = append(s.items, e)
	}
	for _, b := range seed.Budgets {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		b.Month = b.Month.FirstOfMonth()
		s.budgets[b.Month.String()] = b
	}
	return s, nil
}

// WithClock replaces the clock used for creation times and the future-date check.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	out := slices.Clone(s.items)
	s.mu.Unlock()

	store.SortNewestFirst(out)
	return out, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	const op = "create expense"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := e.Validate(core.DateOf(s.now())); err != nil {
		return core.Expense{}, store.Wrap(store.KindValidation, op, err)
	}
	if b, ok := s.budgets[e.Date.FirstOfMonth().String()]; ok {
		spent := store.MonthSpent(s.items, e.Date)
		if budget.WouldExceed(spent, e.Amount, b) {
			return core.Expense{}, store.Wrap(store.KindBudgetExceeded, op, store.ErrBudgetExceeded)
		}
	}

	e.ID = uuid.NewString()
	e.CreatedAt = s.now()
	s.items = append(s.items, e)
	return e, nil
}

func (s *Store) ReplaceExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	const op = "replace expense"

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(e.ID)
	if i < 0 {
		return core.Expense{}, store.Errorf(store.KindNotFound, op, "expense %q not found", e.ID)
	}
	if err := e.Validate(core.DateOf(s.now())); err != nil {
		return core.Expense{}, store.Wrap(store.KindValidation, op, err)
	}
	e.CreatedAt = s.items[i].CreatedAt
	s.items[i] = e
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return store.Errorf(store.KindNotFound, "delete expense", "expense %q not found", id)
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func (s *Store) GetBudget(_ context.Context, month core.Date) (core.Budget, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.budgets[month.FirstOfMonth().String()]
	return b, ok, nil
}

func (s *Store) SaveBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	b.Month = b.Month.FirstOfMonth()
	if err := b.Validate(); err != nil {
		return core.Budget{}, store.Wrap(store.KindValidation, "save budget", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := b.Month.String()
	if prev, ok := s.budgets[key]; ok {
		b.ID = prev.ID
	} else {
		b.ID = uuid.NewString()
	}
	b.AlertSent = false
	s.budgets[key] = b
	return b, nil
}

func (s *Store) MarkAlertSent(_ context.Context, month core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := month.FirstOfMonth().String()
	b, ok := s.budgets[key]
	if !ok {
		return store.Errorf(store.KindNotFound, "mark alert sent", "no budget for %s", key)
	}
	b.AlertSent = true
	s.budgets[key] = b
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(e core.Expense) bool { return e.ID == id })
}
