// Package analytics derives the summary figures shown across the
// dashboard, analytics and home views from an immutable list of expenses.
//
// Every function here is pure: it reads its arguments and returns freshly
// allocated results.
package analytics

import (
	"slices"
	"time"

	"spendwatch/internal/core"
)

// Sentinels returned when there is nothing to rank.
const (
	NoData       = "No Data"
	NotAvailable = "N/A"
)

// CategoryTotal is the amount spent in one category.
type CategoryTotal struct {
	Category core.Category
	Amount   core.Money
	Share    float64 // percentage of the grand total, 0 when the total is 0
}

// TrendPoint is the amount spent on one calendar day.
type TrendPoint struct {
	Date   core.Date
	Amount core.Money
}

// Delta compares the current month against the previous one.
// PercentageChange is only meaningful when HasPrevious is true.
type Delta struct {
	PercentageChange float64
	IsIncrease       bool
	HasPrevious      bool
}

// Total sums every record.
func Total(records []core.Expense) core.Money {
	var total core.Money
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}

// Average returns the mean amount, rounded down to the cent.
func Average(records []core.Expense) core.Money {
	if len(records) == 0 {
		return core.Money{}
	}
	return core.Money{Cents: Total(records).Cents / int64(len(records))}
}

// TotalsByCategory sums amounts per category and orders the result by
// amount, largest first. Ties keep the order in which categories were first
// seen.
func TotalsByCategory(records []core.Expense) []CategoryTotal {
	var (
		order  []core.Category
		totals = make(map[core.Category]core.Money)
		grand  core.Money
	)
	for _, r := range records {
		if _, seen := totals[r.Category]; !seen {
			order = append(order, r.Category)
		}
		totals[r.Category] = totals[r.Category].Add(r.Amount)
		grand = grand.Add(r.Amount)
	}

	out := make([]CategoryTotal, len(order))
	for i, c := range order {
		out[i] = CategoryTotal{Category: c, Amount: totals[c]}
		if grand.Cents != 0 {
			out[i].Share = float64(totals[c].Cents) / float64(grand.Cents) * 100
		}
	}
	slices.SortStableFunc(out, func(a, b CategoryTotal) int {
		switch {
		case a.Amount.Cents > b.Amount.Cents:
			return -1
		case a.Amount.Cents < b.Amount.Cents:
			return 1
		default:
			return 0
		}
	})
	return out
}

// HighestCategory returns the name of the category with the largest total,
// or empty when there are no records.
func HighestCategory(records []core.Expense, empty string) string {
	totals := TotalsByCategory(records)
	if len(totals) == 0 {
		return empty
	}
	return totals[0].Category.String()
}

// DailyTrend groups amounts by date and orders the days chronologically.
func DailyTrend(records []core.Expense) []TrendPoint {
	byDay := make(map[string]int)
	var out []TrendPoint
	for _, r := range records {
		key := r.Date.String()
		i, ok := byDay[key]
		if !ok {
			i = len(out)
			byDay[key] = i
			out = append(out, TrendPoint{Date: r.Date})
		}
		out[i].Amount = out[i].Amount.Add(r.Amount)
	}
	slices.SortStableFunc(out, func(a, b TrendPoint) int {
		return a.Date.Compare(b.Date.Time)
	})
	return out
}

// MonthWindow keeps the records dated in the given calendar month.
func MonthWindow(records []core.Expense, year int, month time.Month) []core.Expense {
	out := make([]core.Expense, 0, len(records))
	for _, r := range records {
		if r.Date.InMonth(year, month) {
			out = append(out, r)
		}
	}
	return out
}

// PreviousMonth returns the calendar month before year/month.
func PreviousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// MonthOverMonthDelta compares two monthly totals. With no spending in the
// previous month there is nothing to compare against and HasPrevious is false.
func MonthOverMonthDelta(current, previous core.Money) Delta {
	d := Delta{IsIncrease: current.Cents > previous.Cents}
	if previous.Cents == 0 {
		return d
	}
	d.HasPrevious = true
	d.PercentageChange = float64(current.Cents-previous.Cents) / float64(previous.Cents) * 100
	return d
}

// MostFrequentCategory returns the category used by the most records. On a
// tie the category seen first in records wins.
func MostFrequentCategory(records []core.Expense) string {
	var order []core.Category
	counts := make(map[core.Category]int)
	for _, r := range records {
		if counts[r.Category] == 0 {
			order = append(order, r.Category)
		}
		counts[r.Category]++
	}

	best, bestCount := NotAvailable, 0
	for _, c := range order {
		if counts[c] > bestCount {
			best, bestCount = c.String(), counts[c]
		}
	}
	return best
}

// LatestExpense returns the most recent record by date, then by creation
// time.
func LatestExpense(records []core.Expense) (core.Expense, bool) {
	if len(records) == 0 {
		return core.Expense{}, false
	}
	latest := records[0]
	for _, r := range records[1:] {
		switch {
		case r.Date.After(latest.Date.Time):
			latest = r
		case r.Date.Equal(latest.Date) && r.CreatedAt.After(latest.CreatedAt):
			latest = r
		}
	}
	return latest, true
}
