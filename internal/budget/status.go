// Package budget computes how the month's spending stands against the
// configured budget and validates budget submissions.
package budget

import (
	"math"

	"spendwatch/internal/core"
)

// Level buckets the progress bar.
type Level int

const (
	LevelNormal Level = iota
	LevelWarning
	LevelCritical
)

// Progress thresholds, in percent of the alert limit.
const (
	WarningThreshold  = 80.0
	CriticalThreshold = 100.0
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	default:
		return "normal"
	}
}

// Status is the derived state of a month's budget.
type Status struct {
	Spent            core.Money
	ProgressPct      float64    // share of the alert limit used, capped at 100
	RemainingSafe    core.Money // alert limit minus spent, negative once exceeded
	RemainingBalance core.Money // total balance minus spent
	IsExceeded       bool
	Level            Level
}

// Compute derives the budget status for the amount spent so far.
func Compute(spent core.Money, b core.Budget) Status {
	s := Status{
		Spent:            spent,
		RemainingSafe:    b.AlertLimit.Sub(spent),
		RemainingBalance: b.TotalBalance.Sub(spent),
	}
	s.IsExceeded = s.RemainingSafe.IsNegative()
	if b.AlertLimit.Cents != 0 {
		s.ProgressPct = math.Min(CriticalThreshold, float64(spent.Cents)/float64(b.AlertLimit.Cents)*100)
	}

	switch {
	case s.ProgressPct >= CriticalThreshold:
		s.Level = LevelCritical
	case s.ProgressPct >= WarningThreshold:
		s.Level = LevelWarning
	default:
		s.Level = LevelNormal
	}
	return s
}

// WouldExceed reports whether adding amount to the month's spending would
// go past the budget's total balance. The record store refuses such
// expenses with a budget-exceeded error.
func WouldExceed(spentSoFar, amount core.Money, b core.Budget) bool {
	return spentSoFar.Add(amount).Cents > b.TotalBalance.Cents
}
