package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"spendwatch/internal/core"
)

func TestDashboard(t *testing.T) {
	rs := []core.Expense{
		exp("Rent", 50000, core.CategoryUtilities, 2023, time.December, 1),
		exp("Lunch", 2000, core.CategoryFood, 2024, time.January, 10),
		exp("Dinner", 4000, core.CategoryFood, 2024, time.January, 12),
		exp("Old", 99999, core.CategoryOther, 2023, time.January, 12),
	}
	s := Dashboard(rs, core.NewDate(2024, time.January, 20))

	assert.Equal(t, 2024, s.Year)
	assert.Equal(t, time.January, s.Month)
	assert.Equal(t, int64(6000), s.MonthTotal.Cents)
	assert.Equal(t, int64(50000), s.PreviousTotal.Cents)
	assert.True(t, s.VsLastMonth.HasPrevious)
	assert.False(t, s.VsLastMonth.IsIncrease)
	assert.InDelta(t, -88.0, s.VsLastMonth.PercentageChange, 1e-9)
	assert.Equal(t, "Other", s.HighestCategory)
	assert.Equal(t, 4, s.TotalTransactions)
}

func TestDashboardEmpty(t *testing.T) {
	s := Dashboard(nil, core.NewDate(2024, time.January, 20))
	assert.Equal(t, NoData, s.HighestCategory)
	assert.False(t, s.VsLastMonth.HasPrevious)
	assert.Zero(t, s.TotalTransactions)
}

func TestOverview(t *testing.T) {
	s := Overview(sample())
	assert.Equal(t, int64(17349), s.Total.Cents)
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, "Food", s.HighestCategory)
	assert.Len(t, s.ByCategory, 4)
	assert.Len(t, s.Trend, 4)

	empty := Overview(nil)
	assert.Equal(t, NotAvailable, empty.HighestCategory)
	assert.Zero(t, empty.Average.Cents)
}

func TestHome(t *testing.T) {
	s := Home(sample(), core.NewDate(2024, time.January, 31))
	assert.True(t, s.HasLastExpense)
	assert.Equal(t, "Pizza", s.LastExpense.Title)
	assert.Equal(t, int64(1599+8550+2400), s.MonthTotal.Cents)
	assert.Equal(t, "Subscription", s.MostUsedCategory)

	s = Home(nil, core.NewDate(2024, time.January, 31))
	assert.False(t, s.HasLastExpense)
	assert.Equal(t, NotAvailable, s.MostUsedCategory)
}
