package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwatch/internal/core"
	"spendwatch/internal/session"
	"spendwatch/internal/store"
	"spendwatch/internal/trace"
)

var _ store.Store = (*Client)(nil)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", session.New("access-token", "refresh-token", "Ada Lovelace"), time.Second)
}

func TestListExpensesNormalisesWireFormats(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/expenses/", r.URL.Path)
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		io.WriteString(w, `[
			{"id": 7, "title": "Netflix", "amount": "15.99", "category": "Subscription", "date": "2024-03-01", "created_at": "2024-03-01T08:00:00.123456Z"},
			{"id": "b9", "title": "Groceries", "amount": 85.5, "category": "Food", "date": "2024-03-03", "created_at": "2024-03-03T09:00:00Z"},
			{"id": 8, "title": "Flat", "amount": "900.00", "category": "Housing", "date": "2024-03-01", "created_at": "2024-03-01T10:00:00Z"}
		]`)
	})

	list, err := c.ListExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "b9", list[0].ID)
	assert.Equal(t, int64(8550), list[0].Amount.Cents)

	assert.Equal(t, "8", list[1].ID, "same date: newer creation first")
	assert.Equal(t, core.CategoryOther, list[1].Category)

	assert.Equal(t, "7", list[2].ID)
	assert.Equal(t, int64(1599), list[2].Amount.Cents)
	assert.Equal(t, core.CategorySubscription, list[2].Category)
}

func TestCreateExpenseSendsDecimalStrings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{
			"title":    "Team Lunch",
			"amount":   "48.00",
			"category": "Food",
			"date":     "2024-03-04",
		}, body)

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id": 12, "title": "Team Lunch", "amount": "48.00", "category": "Food", "date": "2024-03-04", "created_at": "2024-03-04T12:00:00Z"}`)
	})

	got, err := c.CreateExpense(context.Background(), core.Expense{
		Title:    "Team Lunch",
		Amount:   core.Money{Cents: 4800},
		Category: core.CategoryFood,
		Date:     core.NewDate(2024, time.March, 4),
	})
	require.NoError(t, err)
	assert.Equal(t, "12", got.ID)
	assert.Equal(t, time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC), got.CreatedAt)
}

func TestReplaceAndDeletePaths(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		io.WriteString(w, `{"id": 3, "title": "Bus", "amount": "2.50", "category": "Transportation", "date": "2024-03-02"}`)
	})

	_, err := c.ReplaceExpense(context.Background(), core.Expense{
		ID: "3", Title: "Bus", Amount: core.Money{Cents: 250},
		Category: core.CategoryTransportation, Date: core.NewDate(2024, time.March, 2),
	})
	require.NoError(t, err)
	require.NoError(t, c.DeleteExpense(context.Background(), "3"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"PUT /api/expenses/3/", "DELETE /api/expenses/3/"}, seen)
}

func TestGetBudget(t *testing.T) {
	var body atomic.Value
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/expenses/budget/", r.URL.Path)
		assert.Equal(t, "2024-03-01", r.URL.Query().Get("month"))
		io.WriteString(w, body.Load().(string))
	})

	body.Store(`{}`)
	_, found, err := c.GetBudget(context.Background(), core.NewDate(2024, time.March, 18))
	require.NoError(t, err)
	assert.False(t, found)

	body.Store(`{"id": 4, "month": "2024-03-01", "total_balance": "30000.00", "alert_limit": "22000.00", "alert_sent": true}`)
	b, found, err := c.GetBudget(context.Background(), core.NewDate(2024, time.March, 18))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "4", b.ID)
	assert.Equal(t, int64(30000_00), b.TotalBalance.Cents)
	assert.Equal(t, int64(22000_00), b.AlertLimit.Cents)
	assert.True(t, b.AlertSent)
}

func TestSaveBudget(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2024-03-01", body["month"])
		assert.Equal(t, "300.00", body["total_balance"])
		assert.Equal(t, "220.00", body["alert_limit"])
		io.WriteString(w, `{"id": 4, "month": "2024-03-01", "total_balance": "300.00", "alert_limit": "220.00", "alert_sent": false}`)
	})

	b, err := c.SaveBudget(context.Background(), core.Budget{
		Month:        core.NewDate(2024, time.March, 9),
		TotalBalance: core.Money{Cents: 30000},
		AlertLimit:   core.Money{Cents: 22000},
	})
	require.NoError(t, err)
	assert.Equal(t, "4", b.ID)
	assert.NoError(t, c.MarkAlertSent(context.Background(), b.Month))
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    store.Kind
		message string
	}{
		{
			name:    "budget exceeded",
			status:  http.StatusBadRequest,
			body:    `{"budget_limit_exceeded": ["Total spent exceeds the total balance."], "redirect": ["/budget"]}`,
			kind:    store.KindBudgetExceeded,
			message: "Total spent exceeds the total balance.",
		},
		{
			name:    "field error",
			status:  http.StatusBadRequest,
			body:    `{"date": ["Enter a valid date."], "title": ["This field may not be blank."]}`,
			kind:    store.KindValidation,
			message: "Enter a valid date.",
		},
		{
			name:    "non field error list",
			status:  http.StatusBadRequest,
			body:    `["Alert limit cannot be greater than total balance."]`,
			kind:    store.KindValidation,
			message: "Alert limit cannot be greater than total balance.",
		},
		{
			name:    "expired token",
			status:  http.StatusUnauthorized,
			body:    `{"detail": "Given token not valid for any token type"}`,
			kind:    store.KindUnauthorized,
			message: "Given token not valid for any token type",
		},
		{name: "forbidden", status: http.StatusForbidden, body: `{}`, kind: store.KindUnauthorized},
		{name: "missing", status: http.StatusNotFound, body: `{"detail": "Not found."}`, kind: store.KindNotFound, message: "Not found."},
		{name: "server error", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, kind: store.KindTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := c.CreateExpense(context.Background(), core.Expense{Title: "x", Category: core.CategoryFood, Date: core.NewDate(2024, 1, 1)})
			require.Error(t, err)
			assert.Equal(t, tt.kind, store.KindOf(err))

			var se *store.Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.message, se.Message)
		})
	}
}

func TestNetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(srv.URL, session.New("t", "r", "n"), time.Second)
	_, err := c.ListExpenses(context.Background())
	require.Error(t, err)
	assert.Equal(t, store.KindTransient, store.KindOf(err))
}

func TestNoTokenAfterLogout(t *testing.T) {
	sess := session.New("t", "r", "n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, sess, time.Second)
	_, err := c.ListExpenses(context.Background())
	require.NoError(t, err)

	sess.Logout()
	_, err = c.ListExpenses(context.Background())
	assert.Equal(t, store.KindUnauthorized, store.KindOf(err))
}

func TestRequestIDForwarded(t *testing.T) {
	var got atomic.Value
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get(trace.HeaderRequestID))
		io.WriteString(w, `[]`)
	})

	ctx := trace.WithRequestID(context.Background(), "req_abc")
	_, err := c.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, "req_abc", got.Load())

	_, err = c.ListExpenses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", got.Load())
}

func TestFirstString(t *testing.T) {
	assert.Equal(t, "b", firstString([]byte(`{"a": ["", "b"], "c": "d"}`)))
	assert.Equal(t, "", firstString([]byte(`{"a": 1}`)))
	assert.Equal(t, "", firstString([]byte(`[x]`)))
	assert.Equal(t, "", firstString(nil))
}
