// Package storage is the SQLite record store. Amounts are kept as integer
// cents and dates as YYYY-MM-DD text, so month ranges compare as strings.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"spendwatch/internal/budget"
	"spendwatch/internal/core"
	"spendwatch/internal/store"

	_ "modernc.org/sqlite"
)

// Fixed-width so created_at sorts correctly as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time keeps the limit check and insert serialised.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// WithClock replaces the clock used for timestamps and the future-date check.
func (r *SQLiteRepository) WithClock(now func() time.Time) *SQLiteRepository {
	r.now = now
	return r
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListExpenses implements store.RecordStore.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, amount_cents, category, date, created_at
		FROM expenses
		ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, store.Wrap(store.KindTransient, "list expenses", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, store.Wrap(store.KindTransient, "list expenses", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap(store.KindTransient, "list expenses", err)
	}
	return out, nil
}

// CreateExpense implements store.RecordStore. The total-balance check and
// the insert share one transaction.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	const op = "create expense"

	now := r.now()
	if err := e.Validate(core.DateOf(now)); err != nil {
		return core.Expense{}, store.Wrap(store.KindValidation, op, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, store.Wrap(store.KindTransient, op, err)
	}
	defer tx.Rollback()

	b, found, err := getBudget(ctx, tx, e.Date)
	if err != nil {
		return core.Expense{}, store.Wrap(store.KindTransient, op, err)
	}
	if found {
		spent, err := monthSpent(ctx, tx, e.Date)
		if err != nil {
			return core.Expense{}, store.Wrap(store.KindTransient, op, err)
		}
		if budget.WouldExceed(spent, e.Amount, b) {
			slog.InfoContext(ctx, "Expense refused, monthly budget exceeded",
				"month", b.Month.String(),
				"spent_cents", spent.Cents,
				"amount_cents", e.Amount.Cents)
			return core.Expense{}, store.Wrap(store.KindBudgetExceeded, op, store.ErrBudgetExceeded)
		}
	}

	e.ID = uuid.NewString()
	e.CreatedAt = now.UTC()
	stamp := e.CreatedAt.Format(timestampLayout)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO expenses (id, title, amount_cents, category, date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Amount.Cents, e.Category.String(), e.Date.String(), stamp, stamp)
	if err != nil {
		return core.Expense{}, store.Wrap(store.KindTransient, op, err)
	}
	if err := tx.Commit(); err != nil {
		return core.Expense{}, store.Wrap(store.KindTransient, op, err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"amount_cents", e.Amount.Cents,
		"category", e.Category.String(),
		"date", e.Date.String())
	return e, nil
}

// ReplaceExpense implements store.RecordStore.
func (r *SQLiteRepository) ReplaceExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	const op = "replace expense"

	now := r.now()
	if err := e.Validate(core.DateOf(now)); err != nil {
		return core.Expense{}, store.Wrap(store.KindValidation, op, err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET title = ?, amount_cents = ?, category = ?, date = ?, updated_at = ?
		WHERE id = ?`,
		e.Title, e.Amount.Cents, e.Category.String(), e.Date.String(), now.UTC().Format(timestampLayout), e.ID)
	if err != nil {
		return core.Expense{}, store.Wrap(store.KindTransient, op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Expense{}, store.Errorf(store.KindNotFound, op, "expense %q not found", e.ID)
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, amount_cents, category, date, created_at
		FROM expenses WHERE id = ?`, e.ID)
	updated, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, store.Wrap(store.KindTransient, op, err)
	}
	return updated, nil
}

// DeleteExpense implements store.RecordStore.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	const op = "delete expense"

	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return store.Wrap(store.KindTransient, op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.Errorf(store.KindNotFound, op, "expense %q not found", id)
	}
	slog.InfoContext(ctx, "Expense deleted from SQLite", "id", id)
	return nil
}

// GetBudget implements store.BudgetStore.
func (r *SQLiteRepository) GetBudget(ctx context.Context, month core.Date) (core.Budget, bool, error) {
	b, found, err := getBudget(ctx, r.db, month)
	if err != nil {
		return core.Budget{}, false, store.Wrap(store.KindTransient, "get budget", err)
	}
	return b, found, nil
}

// SaveBudget implements store.BudgetStore. Saving reopens the alert latch.
func (r *SQLiteRepository) SaveBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	const op = "save budget"

	b.Month = b.Month.FirstOfMonth()
	if err := b.Validate(); err != nil {
		return core.Budget{}, store.Wrap(store.KindValidation, op, err)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (id, month, total_balance_cents, alert_limit_cents, alert_sent, updated_at)
		VALUES (?, ?, ?, ?, 0, ?)
		ON CONFLICT (month) DO UPDATE SET
			total_balance_cents = excluded.total_balance_cents,
			alert_limit_cents = excluded.alert_limit_cents,
			alert_sent = 0,
			updated_at = excluded.updated_at`,
		uuid.NewString(), b.Month.String(), b.TotalBalance.Cents, b.AlertLimit.Cents,
		r.now().UTC().Format(timestampLayout))
	if err != nil {
		return core.Budget{}, store.Wrap(store.KindTransient, op, err)
	}

	saved, _, err := getBudget(ctx, r.db, b.Month)
	if err != nil {
		return core.Budget{}, store.Wrap(store.KindTransient, op, err)
	}
	slog.InfoContext(ctx, "Budget saved to SQLite",
		"month", saved.Month.String(),
		"total_balance_cents", saved.TotalBalance.Cents,
		"alert_limit_cents", saved.AlertLimit.Cents)
	return saved, nil
}

// MarkAlertSent implements store.BudgetStore.
func (r *SQLiteRepository) MarkAlertSent(ctx context.Context, month core.Date) error {
	const op = "mark alert sent"

	res, err := r.db.ExecContext(ctx, `UPDATE budgets SET alert_sent = 1 WHERE month = ?`,
		month.FirstOfMonth().String())
	if err != nil {
		return store.Wrap(store.KindTransient, op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.Errorf(store.KindNotFound, op, "no budget for %s", month.FirstOfMonth())
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getBudget(ctx context.Context, q queryer, month core.Date) (core.Budget, bool, error) {
	var (
		b         core.Budget
		monthText string
		alertSent int64
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, month, total_balance_cents, alert_limit_cents, alert_sent
		FROM budgets WHERE month = ?`, month.FirstOfMonth().String()).
		Scan(&b.ID, &monthText, &b.TotalBalance.Cents, &b.AlertLimit.Cents, &alertSent)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, false, nil
	}
	if err != nil {
		return core.Budget{}, false, err
	}
	if b.Month, err = core.ParseDate(monthText); err != nil {
		return core.Budget{}, false, err
	}
	b.AlertSent = alertSent != 0
	return b, true, nil
}

func monthSpent(ctx context.Context, q queryer, day core.Date) (core.Money, error) {
	start := day.FirstOfMonth()
	end := core.DateOf(start.AddDate(0, 1, 0))

	var total int64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM expenses WHERE date >= ? AND date < ?`,
		start.String(), end.String()).Scan(&total)
	return core.Money{Cents: total}, err
}

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e                               core.Expense
		category, dateText, createdText string
	)
	if err := s.Scan(&e.ID, &e.Title, &e.Amount.Cents, &category, &dateText, &createdText); err != nil {
		return core.Expense{}, err
	}

	var err error
	if e.Category, err = core.ParseCategory(category); err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: %w", e.ID, err)
	}
	if e.Date, err = core.ParseDate(dateText); err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: %w", e.ID, err)
	}
	if e.CreatedAt, err = time.Parse(timestampLayout, createdText); err != nil {
		return core.Expense{}, fmt.Errorf("expense %s created_at: %w", e.ID, err)
	}
	return e, nil
}
