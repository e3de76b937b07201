// Package worker consumes events from the broker queues and fans them
// out to the structured log and the operator notifier.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"conti/internal/amqp"
	"conti/internal/core"
	"conti/internal/log"
)

// Notifier is the slice of the Telegram notifier the worker pushes
// through. A nil notifier leaves the worker log-only.
type Notifier interface {
	NotifyAlert(ctx context.Context, alert core.Alert) error
}

// EventWorker handles deliveries from the alerts and reminders queues.
// Malformed payloads and unknown routing keys are discarded; a failed
// notifier push is returned so the broker redelivers and the
// notification is retried.
type EventWorker struct {
	logger     *log.Logger
	structured *log.StructuredLogger
	notifier   Notifier
}

func NewEventWorker(logger *log.Logger, notifier Notifier) *EventWorker {
	if logger == nil {
		logger = log.New(log.FromEnv(log.ComponentWorker))
	}
	return &EventWorker{
		logger:     logger,
		structured: log.NewStructuredLogger(logger),
		notifier:   notifier,
	}
}

// Handler returns the consume callback bound to ctx. The same handler
// serves both queues; dispatch is by routing key.
func (w *EventWorker) Handler(ctx context.Context) func(routingKey string, body []byte) error {
	return func(routingKey string, body []byte) error {
		switch routingKey {
		case amqp.RouteAlertCreated:
			return w.handleAlertCreated(ctx, body)
		case amqp.RouteBillReminder:
			return w.handleBillReminder(ctx, body)
		case amqp.RouteBillPaid:
			return w.handleBillPaid(ctx, body)
		default:
			return fmt.Errorf("unknown routing key %q: %w", routingKey, amqp.ErrDiscardMessage)
		}
	}
}

// handleAlertCreated logs the alert and pushes criticals to the
// notifier. Lower severities stay in the dashboard. Payloads are
// normalized first so events from older producers dispatch the same
// as current ones.
func (w *EventWorker) handleAlertCreated(ctx context.Context, body []byte) error {
	var raw core.RawAlert
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("decode alert event: %v: %w", err, amqp.ErrDiscardMessage)
	}
	alert := core.NormalizeAlert(raw)

	w.structured.LogAlertRaised(ctx, alert.UserID, alert.ID, string(alert.Type), string(alert.Severity))

	if w.notifier == nil || alert.Severity != core.SeverityCritical {
		return nil
	}
	if err := w.notifier.NotifyAlert(ctx, alert); err != nil {
		return fmt.Errorf("notify alert %d: %w", alert.ID, err)
	}
	return nil
}

// handleBillReminder records the reminder. The matching bill_due alert
// arrives on the alerts queue, so no notification goes out from here.
func (w *EventWorker) handleBillReminder(ctx context.Context, body []byte) error {
	msg, err := amqp.BillReminderMessageFromJSON(body)
	if err != nil {
		return fmt.Errorf("decode bill reminder: %v: %w", err, amqp.ErrDiscardMessage)
	}

	w.logger.InfoContext(ctx, "Bill reminder",
		log.FieldUserID, msg.UserID,
		log.FieldBillID, msg.BillID,
		"bill_name", msg.Name,
		log.FieldAmount, msg.Amount,
		log.FieldCurrency, msg.Currency,
		log.FieldDueDate, msg.DueDate,
		"days_left", msg.DaysLeft,
		log.FieldSeverity, msg.Severity)
	return nil
}

func (w *EventWorker) handleBillPaid(ctx context.Context, body []byte) error {
	msg, err := amqp.BillPaidMessageFromJSON(body)
	if err != nil {
		return fmt.Errorf("decode bill paid: %v: %w", err, amqp.ErrDiscardMessage)
	}

	w.structured.LogBillPaid(ctx, msg.UserID, msg.BillID, msg.Name, msg.Amount, int64(msg.Points))
	return nil
}
