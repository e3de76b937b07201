package services

import (
	"context"
	"sync"
	"testing"

	"conti/internal/amqp"
	"conti/internal/core"
	"conti/internal/currency"
	"conti/internal/ledger/memory"
)

// capturePublisher records published events instead of talking to a
// broker. A non-nil err makes every publish fail with it.
type capturePublisher struct {
	mu        sync.Mutex
	err       error
	alerts    []*amqp.AlertEvent
	reminders []*amqp.BillReminderMessage
	paid      []*amqp.BillPaidMessage
}

func (p *capturePublisher) PublishAlertCreated(_ context.Context, event *amqp.AlertEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.alerts = append(p.alerts, event)
	return nil
}

func (p *capturePublisher) PublishBillReminder(_ context.Context, msg *amqp.BillReminderMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.reminders = append(p.reminders, msg)
	return nil
}

func (p *capturePublisher) PublishBillPaid(_ context.Context, msg *amqp.BillPaidMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.paid = append(p.paid, msg)
	return nil
}

// newBillService wires a bill service over the in-memory store with an
// offline converter (static rates only).
func newBillService(store *memory.Store, events EventPublisher) *BillService {
	rewards := NewRewardService(store, store)
	return NewBillService(store, store, rewards, currency.New("", nil), events)
}

func seedUser(t *testing.T, store *memory.Store, username string) core.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), core.User{
		Username: username,
		Email:    username + "@example.com",
		Currency: "USD",
		Active:   true,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}
