// Package apiclient is the record store backed by the expense tracker's
// REST API. Every request is authenticated with the bearer token of an
// explicit session, and every failure is reported as a *store.Error.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"spendwatch/internal/core"
	"spendwatch/internal/session"
	"spendwatch/internal/store"
	"spendwatch/internal/trace"
)

const (
	DefaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10
)

// Client talks to the REST backend. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, sess *session.Session, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/",
		httpClient: &http.Client{Timeout: timeout},
		session:    sess,
	}
}

// ListExpenses implements store.RecordStore.
func (c *Client) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	var dtos []expenseDTO
	if err := c.do(ctx, "list expenses", http.MethodGet, "expenses/", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]core.Expense, len(dtos))
	for i, d := range dtos {
		out[i] = d.toCore()
	}
	store.SortNewestFirst(out)
	return out, nil
}

// CreateExpense implements store.RecordStore.
func (c *Client) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	var dto expenseDTO
	if err := c.do(ctx, "create expense", http.MethodPost, "expenses/", newExpenseRequest(e), &dto); err != nil {
		return core.Expense{}, err
	}
	return dto.toCore(), nil
}

// ReplaceExpense implements store.RecordStore.
func (c *Client) ReplaceExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	var dto expenseDTO
	if err := c.do(ctx, "replace expense", http.MethodPut, expensePath(e.ID), newExpenseRequest(e), &dto); err != nil {
		return core.Expense{}, err
	}
	return dto.toCore(), nil
}

// DeleteExpense implements store.RecordStore.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, "delete expense", http.MethodDelete, expensePath(id), nil, nil)
}

// GetBudget implements store.BudgetStore.
func (c *Client) GetBudget(ctx context.Context, month core.Date) (core.Budget, bool, error) {
	path := "expenses/budget/?month=" + url.QueryEscape(month.FirstOfMonth().String())

	var dto budgetDTO
	if err := c.do(ctx, "get budget", http.MethodGet, path, nil, &dto); err != nil {
		return core.Budget{}, false, err
	}
	if dto.empty() {
		return core.Budget{}, false, nil
	}
	return dto.toCore(), true, nil
}

// SaveBudget implements store.BudgetStore.
func (c *Client) SaveBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	req := budgetRequest{
		Month:        b.Month.FirstOfMonth(),
		TotalBalance: b.TotalBalance,
		AlertLimit:   b.AlertLimit,
	}
	var dto budgetDTO
	if err := c.do(ctx, "save budget", http.MethodPost, "expenses/budget/", req, &dto); err != nil {
		return core.Budget{}, err
	}
	return dto.toCore(), nil
}

// MarkAlertSent implements store.BudgetStore. The backend latches the alert
// itself when it sends the notification, so there is nothing to send.
func (c *Client) MarkAlertSent(context.Context, core.Date) error {
	return nil
}

func expensePath(id string) string {
	return "expenses/" + url.PathEscape(id) + "/"
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return store.Wrap(store.KindValidation, op, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return store.Wrap(store.KindUnknown, op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := trace.GetRequestID(ctx)
	if requestID != "" {
		req.Header.Set(trace.HeaderRequestID, requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "API request failed", "request_id", requestID, "op", op, "method", method, "path", path, "error", err)
		return store.Wrap(store.KindTransient, op, fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	slog.DebugContext(ctx, "API request",
		"request_id", requestID,
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return classify(op, resp.StatusCode, raw)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return store.Wrap(store.KindTransient, op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// classify maps an error response to a store error kind.
func classify(op string, status int, body []byte) error {
	payload := parseErrorPayload(body)
	e := &store.Error{
		Op:      op,
		Message: payload.first,
		Err:     fmt.Errorf("status %d", status),
	}

	switch {
	case status == http.StatusBadRequest && payload.keys[budgetExceededKey]:
		e.Kind = store.KindBudgetExceeded
		e.Err = store.ErrBudgetExceeded
	case status == http.StatusBadRequest:
		e.Kind = store.KindValidation
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = store.KindUnauthorized
	case status == http.StatusNotFound:
		e.Kind = store.KindNotFound
	case status >= 500:
		e.Kind = store.KindTransient
		// Server pages are HTML; their text is not worth showing.
		e.Message = ""
	default:
		e.Kind = store.KindUnknown
	}
	return e
}
