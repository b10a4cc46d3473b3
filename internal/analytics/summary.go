package analytics

import (
	"time"

	"spendwatch/internal/core"
)

// DashboardSummary backs the dashboard cards.
type DashboardSummary struct {
	Year              int
	Month             time.Month
	MonthTotal        core.Money
	PreviousTotal     core.Money
	VsLastMonth       Delta
	HighestCategory   string // over all records, NoData when empty
	TotalTransactions int
}

// AnalyticsSummary backs the analytics page: the category breakdown, the
// daily trend and the headline stats.
type AnalyticsSummary struct {
	Total           core.Money
	Average         core.Money
	Count           int
	HighestCategory string // NotAvailable when empty
	ByCategory      []CategoryTotal
	Trend           []TrendPoint
}

// HomeSummary is the compact overview on the landing page.
type HomeSummary struct {
	LastExpense      core.Expense
	HasLastExpense   bool
	MonthTotal       core.Money
	MostUsedCategory string
}

// Dashboard summarises records for the month containing today.
func Dashboard(records []core.Expense, today core.Date) DashboardSummary {
	year, month := today.Year(), today.Month()
	prevYear, prevMonth := PreviousMonth(year, month)

	current := Total(MonthWindow(records, year, month))
	previous := Total(MonthWindow(records, prevYear, prevMonth))

	return DashboardSummary{
		Year:              year,
		Month:             month,
		MonthTotal:        current,
		PreviousTotal:     previous,
		VsLastMonth:       MonthOverMonthDelta(current, previous),
		HighestCategory:   HighestCategory(records, NoData),
		TotalTransactions: len(records),
	}
}

// Overview summarises every record.
func Overview(records []core.Expense) AnalyticsSummary {
	byCategory := TotalsByCategory(records)
	highest := NotAvailable
	if len(byCategory) > 0 {
		highest = byCategory[0].Category.String()
	}
	return AnalyticsSummary{
		Total:           Total(records),
		Average:         Average(records),
		Count:           len(records),
		HighestCategory: highest,
		ByCategory:      byCategory,
		Trend:           DailyTrend(records),
	}
}

// Home summarises the current month and the latest record.
func Home(records []core.Expense, today core.Date) HomeSummary {
	thisMonth := MonthWindow(records, today.Year(), today.Month())
	last, ok := LatestExpense(records)
	return HomeSummary{
		LastExpense:      last,
		HasLastExpense:   ok,
		MonthTotal:       Total(thisMonth),
		MostUsedCategory: MostFrequentCategory(thisMonth),
	}
}
