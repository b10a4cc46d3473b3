// Package tracker orchestrates the record store and the pure engines: it
// keeps the latest snapshot of records and budget, submits changes, raises
// budget alerts and derives every view from the snapshot.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"spendwatch/internal/amqp"
	"spendwatch/internal/budget"
	"spendwatch/internal/core"
	"spendwatch/internal/log"
	"spendwatch/internal/session"
	"spendwatch/internal/store"
)

// AlertPublisher sends budget alerts to the notification worker.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}

// Snapshot is the most recently fetched state.
type Snapshot struct {
	Records   []core.Expense
	Month     core.Date // first day of the month the budget belongs to
	Budget    core.Budget
	HasBudget bool
	FetchedAt time.Time
}

type Service struct {
	store     store.Store
	publisher AlertPublisher
	session   *session.Session
	now       func() time.Time

	mu     sync.RWMutex
	snap   Snapshot
	loaded bool
}

// NewService wires the tracker. publisher may be nil, in which case alerts
// are skipped.
func NewService(st store.Store, publisher AlertPublisher, sess *session.Session) *Service {
	return &Service{
		store:     st,
		publisher: publisher,
		session:   sess,
		now:       time.Now,
	}
}

// WithClock replaces the clock that decides "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Today is the current calendar date in local time.
func (s *Service) Today() core.Date {
	return core.DateOf(s.now())
}

// Snapshot returns a copy of the current snapshot and whether one was ever
// loaded.
func (s *Service) Snapshot() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	snap.Records = slices.Clone(s.snap.Records)
	return snap, s.loaded
}

// Refresh fetches the records and the current month's budget concurrently.
// On failure the previous snapshot is kept.
func (s *Service) Refresh(ctx context.Context) error {
	month := s.Today().FirstOfMonth()

	var (
		records []core.Expense
		b       core.Budget
		found   bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.store.ListExpenses(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		b, found, err = s.store.GetBudget(gctx, month)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.WarnContext(ctx, "Refresh failed, keeping previous snapshot", "error", err)
		return err
	}

	s.mu.Lock()
	s.snap = Snapshot{
		Records:   records,
		Month:     month,
		Budget:    b,
		HasBudget: found,
		FetchedAt: s.now(),
	}
	s.loaded = true
	s.mu.Unlock()

	slog.DebugContext(ctx, "Snapshot refreshed", "records", len(records), "has_budget", found)
	return nil
}

// AddExpense validates the form and submits a new record. Invalid input
// never reaches the store. A refused submission returns the store error,
// so callers can branch on store.IsBudgetExceeded.
func (s *Service) AddExpense(ctx context.Context, in ExpenseInput) (core.Expense, error) {
	e, err := in.Parse(s.Today())
	if err != nil {
		return core.Expense{}, err
	}

	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}

	slog.InfoContext(ctx, "Expense added",
		log.NewFields().WithOperation(log.OpCreate).WithExpense(created).ToSlice()...)

	s.afterWrite(ctx, created.Date)
	return created, nil
}

// EditExpense replaces record id with the form values.
func (s *Service) EditExpense(ctx context.Context, id string, in ExpenseInput) (core.Expense, error) {
	if id == "" {
		return core.Expense{}, &core.ValidationError{Field: "id", Err: errors.New("expense id is required")}
	}
	e, err := in.Parse(s.Today())
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = id

	updated, err := s.store.ReplaceExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}

	slog.InfoContext(ctx, "Expense updated",
		log.NewFields().WithOperation(log.OpUpdate).WithExpense(updated).ToSlice()...)
	s.afterWrite(ctx, updated.Date)
	return updated, nil
}

// DeleteExpense removes record id.
func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense deleted", log.FieldOperation, log.OpDelete, log.FieldExpenseID, id)

	if err := s.Refresh(ctx); err != nil {
		slog.WarnContext(ctx, "Snapshot is stale after delete", "error", err)
	}
	return nil
}

// SetBudget validates and saves the current month's budget.
func (s *Service) SetBudget(ctx context.Context, totalBalance, alertLimit string) (core.Budget, error) {
	b, err := budget.ParseInput(s.Today(), totalBalance, alertLimit)
	if err != nil {
		return core.Budget{}, err
	}

	saved, err := s.store.SaveBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}

	slog.InfoContext(ctx, "Budget saved",
		log.NewFields().WithOperation(log.OpBudget).WithBudget(saved).ToSlice()...)

	if err := s.Refresh(ctx); err != nil {
		slog.WarnContext(ctx, "Snapshot is stale after budget update", "error", err)
	}
	return saved, nil
}

// afterWrite refreshes the snapshot and raises the alert for the month of
// the written record when it crossed the limit.
func (s *Service) afterWrite(ctx context.Context, day core.Date) {
	if err := s.Refresh(ctx); err != nil {
		slog.WarnContext(ctx, "Snapshot is stale after write, skipping alert check", "error", err)
		return
	}
	if err := s.checkAlert(ctx, day.FirstOfMonth()); err != nil {
		slog.ErrorContext(ctx, "Budget alert check failed", "month", day.FirstOfMonth().String(), "error", err)
	}
}

func (s *Service) checkAlert(ctx context.Context, month core.Date) error {
	b, found, err := s.store.GetBudget(ctx, month)
	if err != nil {
		return fmt.Errorf("get budget: %w", err)
	}
	if !found {
		return nil
	}

	snap, _ := s.Snapshot()
	spent := store.MonthSpent(snap.Records, month)
	if !budget.ShouldAlert(spent, b) {
		return nil
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping budget alert", "month", month.String())
		return nil
	}

	msg := amqp.NewBudgetAlertMessage(budget.NewAlert(spent, b), s.recipient())
	if err := s.publisher.PublishBudgetAlert(ctx, msg); err != nil {
		return fmt.Errorf("publish budget alert: %w", err)
	}
	if err := s.store.MarkAlertSent(ctx, month); err != nil {
		return fmt.Errorf("mark alert sent: %w", err)
	}

	s.mu.Lock()
	if s.snap.Month.Equal(month) {
		s.snap.Budget.AlertSent = true
	}
	s.mu.Unlock()

	slog.InfoContext(ctx, "Budget alert raised", "month", month.String(), "spent_cents", spent.Cents)
	return nil
}

func (s *Service) recipient() string {
	if name := s.session.UserName(); name != "" {
		return name
	}
	return "there"
}
