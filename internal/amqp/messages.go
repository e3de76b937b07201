package amqp

import (
	"encoding/json"
	"time"
)

// Routing keys on the conti.events topic exchange. The alerts queue
// binds alert.created; the reminders queue binds bill.reminder and
// bill.paid.
const (
	RouteAlertCreated = "alert.created"
	RouteBillReminder = "bill.reminder"
	RouteBillPaid     = "bill.paid"
)

// AlertEvent is published whenever the alert service stores a new
// alert. Consumers get the full alert content so they never have to
// read the database.
type AlertEvent struct {
	AlertID   int64     `json:"alert_id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"alert_type"`
	Severity  string    `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAlertEvent creates an alert event stamped with the current time.
func NewAlertEvent(alertID, userID int64, alertType, severity, title, message string) *AlertEvent {
	return &AlertEvent{
		AlertID:   alertID,
		UserID:    userID,
		Type:      alertType,
		Severity:  severity,
		Title:     title,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *AlertEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BillReminderMessage is published by the reminder worker for each bill
// entering its reminder window. Amount is the decimal string of the
// bill amount in its own currency.
type BillReminderMessage struct {
	BillID    int64     `json:"bill_id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	DueDate   string    `json:"due_date"`
	DaysLeft  int       `json:"days_left"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *BillReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BillReminderMessageFromJSON creates a message from JSON bytes
func BillReminderMessageFromJSON(data []byte) (*BillReminderMessage, error) {
	var msg BillReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BillPaidMessage is published after a successful bill payment.
// NextDueDate is empty for one_time bills.
type BillPaidMessage struct {
	BillID      int64     `json:"bill_id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	Points      int       `json:"points"`
	OnTime      bool      `json:"on_time"`
	NextDueDate string    `json:"next_due_date,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *BillPaidMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BillPaidMessageFromJSON creates a message from JSON bytes
func BillPaidMessageFromJSON(data []byte) (*BillPaidMessage, error) {
	var msg BillPaidMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
