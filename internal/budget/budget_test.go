package budget

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwatch/internal/core"
)

func money(units int64) core.Money { return core.Money{Cents: units * 100} }

var march = core.NewDate(2024, time.March, 1)

func sampleBudget() core.Budget {
	return core.Budget{Month: march, TotalBalance: money(30000), AlertLimit: money(22000)}
}

func TestComputeUnderLimit(t *testing.T) {
	s := Compute(money(20000), sampleBudget())
	assert.InDelta(t, 90.91, s.ProgressPct, 0.01)
	assert.Equal(t, money(2000), s.RemainingSafe)
	assert.Equal(t, money(10000), s.RemainingBalance)
	assert.False(t, s.IsExceeded)
	assert.Equal(t, LevelWarning, s.Level)
}

func TestComputeOverLimit(t *testing.T) {
	s := Compute(money(25000), sampleBudget())
	assert.Equal(t, money(-3000), s.RemainingSafe)
	assert.True(t, s.IsExceeded)
	assert.Equal(t, 100.0, s.ProgressPct)
	assert.Equal(t, LevelCritical, s.Level)
}

func TestComputeAtExactLimitIsNotExceeded(t *testing.T) {
	s := Compute(money(22000), sampleBudget())
	assert.True(t, s.RemainingSafe.IsZero())
	assert.False(t, s.IsExceeded)
	assert.Equal(t, 100.0, s.ProgressPct)
}

func TestComputeZeroAlertLimit(t *testing.T) {
	b := core.Budget{Month: march, TotalBalance: money(100)}
	s := Compute(money(50), b)
	assert.Zero(t, s.ProgressPct)
	assert.True(t, s.IsExceeded)
	assert.Equal(t, LevelNormal, s.Level)

	s = Compute(core.Money{}, b)
	assert.Zero(t, s.ProgressPct)
	assert.False(t, s.IsExceeded)
}

func TestLevels(t *testing.T) {
	b := core.Budget{Month: march, TotalBalance: money(100), AlertLimit: money(100)}
	assert.Equal(t, LevelNormal, Compute(money(79), b).Level)
	assert.Equal(t, LevelWarning, Compute(money(80), b).Level)
	assert.Equal(t, LevelCritical, Compute(money(100), b).Level)
	assert.Equal(t, "warning", LevelWarning.String())
}

func TestWouldExceed(t *testing.T) {
	b := sampleBudget()
	assert.False(t, WouldExceed(money(29000), money(1000), b), "reaching the total exactly is allowed")
	assert.True(t, WouldExceed(money(29000), core.Money{Cents: 100001}, b))
	assert.False(t, WouldExceed(core.Money{}, core.Money{}, core.Budget{}))
}

func TestParseInput(t *testing.T) {
	b, err := ParseInput(core.NewDate(2024, time.March, 17), "30000", "22000.50")
	require.NoError(t, err)
	assert.Equal(t, march, b.Month)
	assert.Equal(t, money(30000), b.TotalBalance)
	assert.Equal(t, core.Money{Cents: 2_200_050}, b.AlertLimit)
	assert.False(t, b.AlertSent)
}

func TestParseInputRejects(t *testing.T) {
	tests := []struct {
		name         string
		total, limit string
		field        string
		want         error
	}{
		{"limit above balance", "100", "150", "alert_limit", core.ErrLimitExceedsBalance},
		{"balance not a number", "lots", "10", "total_balance", ErrNotANumber},
		{"limit not a number", "100", "", "alert_limit", ErrNotANumber},
		{"negative balance", "-5", "0", "total_balance", core.ErrNegativeAmount},
		{"negative limit", "100", "-1", "alert_limit", core.ErrNegativeAmount},
		{"balance past int64", "184467440737095616.00", "50", "total_balance", core.ErrInvalidAmount},
		{"balance in exponent form", "1e17", "50", "total_balance", core.ErrInvalidAmount},
		{"balance just above maximum", "100000000.00", "50", "total_balance", core.ErrInvalidAmount},
		{"limit in exponent form", "100", "1e20", "alert_limit", core.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseInput(march, tt.total, tt.limit)
			require.Error(t, err)
			assert.Equal(t, core.Budget{}, b)
			assert.ErrorIs(t, err, tt.want)

			var verr *core.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestShouldAlert(t *testing.T) {
	b := sampleBudget()
	assert.False(t, ShouldAlert(money(22000), b))
	assert.True(t, ShouldAlert(money(22001), b))

	b.AlertSent = true
	assert.False(t, ShouldAlert(money(25000), b))
}

func TestAlertText(t *testing.T) {
	a := NewAlert(money(25000), sampleBudget())
	assert.Equal(t, money(5000), a.RemainingBalance)
	assert.Equal(t, "Spending Alert: Limit Exceeded for March 2024", a.Subject())

	body := a.Body("Ada")
	assert.Contains(t, body, "Hello Ada,")
	assert.Contains(t, body, "Budget Limit Alert: 22000.00")
	assert.Contains(t, body, "Total Spent So Far: 25000.00")
	assert.Contains(t, body, "Remaining Balance: 5000.00")
}
