package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"spendwatch/internal/budget"
	"spendwatch/internal/core"
)

// BudgetAlertMessage announces that a month's spending passed its alert
// limit. It carries everything the worker needs to render the notification.
type BudgetAlertMessage struct {
	Month            core.Date  `json:"month"`
	Recipient        string     `json:"recipient"`
	AlertLimit       core.Money `json:"alert_limit"`
	TotalBalance     core.Money `json:"total_balance"`
	Spent            core.Money `json:"spent"`
	RemainingBalance core.Money `json:"remaining_balance"`
	Timestamp        time.Time  `json:"timestamp"`
}

// NewBudgetAlertMessage wraps an alert for recipient.
func NewBudgetAlertMessage(a budget.Alert, recipient string) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		Month:            a.Month,
		Recipient:        recipient,
		AlertLimit:       a.AlertLimit,
		TotalBalance:     a.TotalBalance,
		Spent:            a.Spent,
		RemainingBalance: a.RemainingBalance,
		Timestamp:        time.Now(),
	}
}

// Alert converts the message back to the budget alert it describes.
func (m *BudgetAlertMessage) Alert() budget.Alert {
	return budget.Alert{
		Month:            m.Month,
		AlertLimit:       m.AlertLimit,
		TotalBalance:     m.TotalBalance,
		Spent:            m.Spent,
		RemainingBalance: m.RemainingBalance,
	}
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON decodes and checks a message body.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Month.IsZero() {
		return nil, fmt.Errorf("budget alert without month")
	}
	return &msg, nil
}
