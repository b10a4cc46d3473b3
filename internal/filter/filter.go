// Package filter narrows an expense list down to the rows matching the
// user's search, category, date and amount criteria.
package filter

import (
	"strings"

	"github.com/shopspring/decimal"

	"spendwatch/internal/core"
)

// AllCategories is the category criterion that matches every record.
const AllCategories = "All"

// Criteria holds the raw filter inputs exactly as collected from the user.
// Every field is optional and all present fields must match.
type Criteria struct {
	Text     string // case-insensitive substring of the title
	Category string // category name, "" or "All" for any
	Date     string // exact YYYY-MM-DD
	Amount   string // exact amount; ignored when it does not parse
}

// IsZero reports whether no criterion is set.
func (c Criteria) IsZero() bool {
	return c.Text == "" &&
		(c.Category == "" || c.Category == AllCategories) &&
		c.Date == "" &&
		c.Amount == ""
}

// Clear returns the reset criteria.
func (c Criteria) Clear() Criteria {
	return Criteria{Category: AllCategories}
}

type matcher func(core.Expense) bool

// Apply returns the records matching every criterion, in their original
// order. The input slice is never modified.
func Apply(records []core.Expense, c Criteria) []core.Expense {
	matchers := c.matchers()

	out := make([]core.Expense, 0, len(records))
	for _, r := range records {
		if matchAll(matchers, r) {
			out = append(out, r)
		}
	}
	return out
}

func matchAll(ms []matcher, r core.Expense) bool {
	for _, m := range ms {
		if !m(r) {
			return false
		}
	}
	return true
}

func (c Criteria) matchers() []matcher {
	var ms []matcher

	if c.Text != "" {
		needle := strings.ToLower(c.Text)
		ms = append(ms, func(r core.Expense) bool {
			return strings.Contains(strings.ToLower(r.Title), needle)
		})
	}

	if c.Category != "" && c.Category != AllCategories {
		cat, err := core.ParseCategory(c.Category)
		ms = append(ms, func(r core.Expense) bool {
			return err == nil && r.Category == cat
		})
	}

	if c.Date != "" {
		ms = append(ms, func(r core.Expense) bool {
			return r.Date.String() == c.Date
		})
	}

	if amount, ok := parseAmount(c.Amount); ok {
		ms = append(ms, func(r core.Expense) bool {
			return r.Amount.Decimal().Equal(amount)
		})
	}

	return ms
}

func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
