package apiclient

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"spendwatch/internal/core"
)

// flexID accepts an id sent either as a JSON number or a string.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

type expenseDTO struct {
	ID        flexID     `json:"id,omitempty"`
	Title     string     `json:"title"`
	Amount    core.Money `json:"amount"`
	Category  string     `json:"category"`
	Date      core.Date  `json:"date"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func (d expenseDTO) toCore() core.Expense {
	e := core.Expense{
		ID:       string(d.ID),
		Title:    d.Title,
		Amount:   d.Amount,
		Category: categoryOf(d.Category),
		Date:     d.Date,
	}
	if d.CreatedAt != nil {
		e.CreatedAt = *d.CreatedAt
	}
	return e
}

// categoryOf folds categories the backend still carries from older
// versions (Housing, Shopping, ...) into Other.
func categoryOf(name string) core.Category {
	c, err := core.ParseCategory(name)
	if err != nil {
		return core.CategoryOther
	}
	return c
}

// expenseRequest is the body of POST expenses/ and PUT expenses/{id}/.
type expenseRequest struct {
	Title    string        `json:"title"`
	Amount   core.Money    `json:"amount"`
	Category core.Category `json:"category"`
	Date     core.Date     `json:"date"`
}

func newExpenseRequest(e core.Expense) expenseRequest {
	return expenseRequest{Title: e.Title, Amount: e.Amount, Category: e.Category, Date: e.Date}
}

type budgetDTO struct {
	ID           flexID     `json:"id,omitempty"`
	Month        core.Date  `json:"month"`
	TotalBalance core.Money `json:"total_balance"`
	AlertLimit   core.Money `json:"alert_limit"`
	AlertSent    bool       `json:"alert_sent"`
}

func (d budgetDTO) toCore() core.Budget {
	return core.Budget{
		ID:           string(d.ID),
		Month:        d.Month,
		TotalBalance: d.TotalBalance,
		AlertLimit:   d.AlertLimit,
		AlertSent:    d.AlertSent,
	}
}

// empty reports the "{}" answer the backend gives when no budget exists.
func (d budgetDTO) empty() bool {
	return d.ID == "" && d.Month.IsZero()
}

type budgetRequest struct {
	Month        core.Date  `json:"month"`
	TotalBalance core.Money `json:"total_balance"`
	AlertLimit   core.Money `json:"alert_limit"`
}

const budgetExceededKey = "budget_limit_exceeded"

// errorPayload is a decoded 4xx body. Field errors come as
// {"field": ["message", ...]}, general ones as {"detail": "..."} or a bare list.
type errorPayload struct {
	keys  map[string]bool
	first string
}

func parseErrorPayload(body []byte) errorPayload {
	p := errorPayload{keys: make(map[string]bool)}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		for k := range obj {
			p.keys[k] = true
		}
	}
	p.first = firstString(body)
	return p
}

// firstString returns the first non-empty string value in document order,
// skipping object keys.
func firstString(body []byte) string {
	s, _ := nextString(json.NewDecoder(bytes.NewReader(body)))
	return s
}

// nextString consumes one JSON value and returns the first non-empty string
// inside it. It stops early once one is found.
func nextString(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	switch v := tok.(type) {
	case json.Delim:
		isObject := v == '{'
		for dec.More() {
			if isObject {
				if _, err := dec.Token(); err != nil {
					return "", err
				}
			}
			s, err := nextString(dec)
			if s != "" || err != nil {
				return s, err
			}
		}
		_, err = dec.Token()
		return "", err
	case string:
		return strings.TrimSpace(v), nil
	}
	return "", nil
}
