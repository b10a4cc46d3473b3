// Package worker turns budget alert messages into user notifications.
package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"spendwatch/internal/amqp"
)

// Notification is a rendered alert ready to be delivered.
type Notification struct {
	Recipient string
	Subject   string
	Body      string
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// AlertWorker handles budget alert messages.
type AlertWorker struct {
	notifier Notifier
}

func NewAlertWorker(n Notifier) *AlertWorker {
	return &AlertWorker{notifier: n}
}

// HandleBudgetAlert renders msg and hands it to the notifier. A notifier
// error is returned so the message is requeued.
func (w *AlertWorker) HandleBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	alert := msg.Alert()
	n := Notification{
		Recipient: msg.Recipient,
		Subject:   alert.Subject(),
		Body:      alert.Body(msg.Recipient),
	}

	slog.InfoContext(ctx, "Processing budget alert",
		"month", msg.Month.String(),
		"recipient", msg.Recipient,
		"spent_cents", msg.Spent.Cents,
		"alert_limit_cents", msg.AlertLimit.Cents)

	if err := w.notifier.Notify(ctx, n); err != nil {
		return fmt.Errorf("notify %q: %w", msg.Recipient, err)
	}
	return nil
}

// LogNotifier records notifications in the structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Budget alert notification",
		"recipient", n.Recipient,
		"subject", n.Subject)
	return nil
}

// WriterNotifier prints notifications as plain text, one after another.
type WriterNotifier struct {
	mu sync.Mutex
	W  io.Writer
}

func (w *WriterNotifier) Notify(_ context.Context, n Notification) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintf(w.W, "To: %s\nSubject: %s\n\n%s\n", n.Recipient, n.Subject, n.Body)
	return err
}

// MultiNotifier delivers to every notifier and reports the first failure.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, n Notification) error {
	var first error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}
