package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"
)

// Circuit breaker states. After maxFailures consecutive failures the
// circuit opens and publishes fail fast; after openTimeout it half-opens
// and the next publish probes the broker.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	maxBackoff     = 30 * time.Second
	publishTimeout = 5 * time.Second
)

// ErrDiscardMessage tells the consume loop to reject a delivery without
// requeueing it. Handlers wrap it for messages that can never succeed,
// such as malformed payloads.
var ErrDiscardMessage = errors.New("message discarded")

var errDeliveryChannelClosed = errors.New("delivery channel closed")

// Client talks to RabbitMQ over a topic exchange. It reconnects on
// connection loss and stops publishing while the circuit breaker is
// open.
type Client struct {
	url          string
	exchangeName string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	failureCount int64
	state        int32
	lastFailure  time.Time
}

// NewClient connects to the broker and declares the topic exchange.
func NewClient(url, exchangeName string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
	}
	if _, err := client.ensureChannel(); err != nil {
		return nil, err
	}
	return client, nil
}

// DialWithRetry keeps dialing with exponential backoff until the broker
// answers, the attempt budget runs out, or ctx is cancelled.
func DialWithRetry(ctx context.Context, url, exchangeName string, maxAttempts uint64) (*Client, error) {
	backoff := retry.WithMaxRetries(maxAttempts, retry.WithCappedDuration(maxBackoff, retry.NewExponential(time.Second)))

	var client *Client
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var dialErr error
		client, dialErr = NewClient(url, exchangeName)
		if dialErr != nil {
			slog.WarnContext(ctx, "Failed to connect to AMQP, will retry", "error", dialErr)
			return retry.RetryableError(dialErr)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to AMQP: %w", err)
	}
	return client, nil
}

// DeclareQueue declares a durable queue and binds it to the exchange
// under the given routing keys.
func (c *Client) DeclareQueue(name string, routingKeys ...string) error {
	ch, err := c.ensureChannel()
	if err != nil {
		return err
	}

	_, err = ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}

	for _, key := range routingKeys {
		if err := ch.QueueBind(name, key, c.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", name, key, err)
		}
	}

	return nil
}

// PublishAlertCreated publishes an alert.created event
func (c *Client) PublishAlertCreated(ctx context.Context, event *AlertEvent) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal alert event: %w", err)
	}

	if err := c.publish(ctx, RouteAlertCreated, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published alert event",
		"alert_id", event.AlertID,
		"alert_type", event.Type,
		"severity", event.Severity,
		"exchange", c.exchangeName)

	return nil
}

// PublishBillReminder publishes a bill.reminder event
func (c *Client) PublishBillReminder(ctx context.Context, msg *BillReminderMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal bill reminder: %w", err)
	}

	if err := c.publish(ctx, RouteBillReminder, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published bill reminder",
		"bill_id", msg.BillID,
		"due_date", msg.DueDate,
		"days_left", msg.DaysLeft)

	return nil
}

// PublishBillPaid publishes a bill.paid event
func (c *Client) PublishBillPaid(ctx context.Context, msg *BillPaidMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal bill paid: %w", err)
	}

	if err := c.publish(ctx, RouteBillPaid, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published bill paid event",
		"bill_id", msg.BillID,
		"points", msg.Points,
		"on_time", msg.OnTime)

	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: circuit breaker is open", routingKey)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	ch, err := c.ensureChannel()
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("connect for publish: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(
		pubCtx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.dropConnection()
		}
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	c.recordSuccess()
	return nil
}

// Consume delivers messages from the queue to the handler with manual
// acknowledgement. A handler error requeues the delivery unless it
// wraps ErrDiscardMessage. Lost connections are re-established with
// exponential backoff until ctx is cancelled.
func (c *Client) Consume(ctx context.Context, queue string, handler func(routingKey string, body []byte) error) error {
	attempt := 0
	for {
		err := c.consumeOnce(ctx, queue, handler)
		switch {
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return err
		case errors.Is(err, errDeliveryChannelClosed) || isConnectionError(err):
			attempt++
			delay := exponentialBackoff(attempt)
			slog.WarnContext(ctx, "AMQP consume interrupted, reconnecting",
				"queue", queue,
				"attempt", attempt,
				"delay", delay,
				"error", err)
			c.dropConnection()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		default:
			return err
		}
	}
}

func (c *Client) consumeOnce(ctx context.Context, queue string, handler func(routingKey string, body []byte) error) error {
	ch, err := c.ensureChannel()
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(
		queue, // queue
		"",    // consumer
		false, // auto-ack (we want manual ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming messages", "queue", queue)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errDeliveryChannelClosed
			}

			if err := handler(delivery.RoutingKey, delivery.Body); err != nil {
				if errors.Is(err, ErrDiscardMessage) {
					slog.ErrorContext(ctx, "Discarding message",
						"routing_key", delivery.RoutingKey,
						"error", err)
					delivery.Nack(false, false) // reject and don't requeue
					continue
				}
				slog.ErrorContext(ctx, "Failed to handle message",
					"routing_key", delivery.RoutingKey,
					"error", err)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false) // acknowledge successful processing
		}
	}
}

func (c *Client) ensureChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil {
		return c.channel, nil
	}

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		c.exchangeName, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	c.conn = conn
	c.channel = channel
	return channel, nil
}

func (c *Client) dropConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.StoreInt32(&c.state, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	count := atomic.AddInt64(&c.failureCount, 1)
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if count >= maxFailures {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// exponentialBackoff returns the reconnect delay for the given attempt,
// doubling from one second and capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	d := time.Second << uint(attempt)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range []string{
		"connection refused",
		"connection closed",
		"EOF",
		"broken pipe",
		"use of closed network connection",
		"channel/connection is not open",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
