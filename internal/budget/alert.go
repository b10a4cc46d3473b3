package budget

import (
	"fmt"

	"spendwatch/internal/core"
)

// Alert describes a month whose spending went past the alert limit.
type Alert struct {
	Month            core.Date
	AlertLimit       core.Money
	TotalBalance     core.Money
	Spent            core.Money
	RemainingBalance core.Money
}

// ShouldAlert reports whether spending has passed the alert limit and the
// month's alert has not been raised yet. Alerts fire at most once a month.
func ShouldAlert(spent core.Money, b core.Budget) bool {
	return spent.Cents > b.AlertLimit.Cents && !b.AlertSent
}

// NewAlert builds the alert payload for b.
func NewAlert(spent core.Money, b core.Budget) Alert {
	return Alert{
		Month:            b.Month,
		AlertLimit:       b.AlertLimit,
		TotalBalance:     b.TotalBalance,
		Spent:            spent,
		RemainingBalance: b.TotalBalance.Sub(spent),
	}
}

// Subject is the notification subject line.
func (a Alert) Subject() string {
	return fmt.Sprintf("Spending Alert: Limit Exceeded for %s", a.Month.Format("January 2006"))
}

// Body renders the notification text for recipient.
func (a Alert) Body(recipient string) string {
	return fmt.Sprintf(`Hello %s,

You have exceeded your spending alert limit for %s.

Budget Limit Alert: %s
Total Spent So Far: %s
Remaining Balance: %s

Please review your expenses to stay on track.
`, recipient, a.Month.Format("January 2006"), a.AlertLimit, a.Spent, a.RemainingBalance)
}
