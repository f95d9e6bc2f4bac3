package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer appends one line per order and payment event to an activity log
// file.  It reconnects with exponential backoff until its context ends.
type Consumer struct {
	URL     string
	LogPath string
	Log     *zap.Logger

	mu sync.Mutex
}

func NewConsumer(url, logPath string, log *zap.Logger) *Consumer {
	if logPath == "" {
		logPath = filepath.Join("logs", "orders.log")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{URL: url, LogPath: logPath, Log: log}
}

// Run dials the broker and consumes both queues.  It returns only when ctx
// is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn("order-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn("order-consumer: consume loop ended; reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn("order-consumer: set QoS failed", zap.Error(err))
	}

	orders, err := c.subscribe(ch, OrderPlacedQueue)
	if err != nil {
		return err
	}
	payments, err := c.subscribe(ch, PaymentDecidedQueue)
	if err != nil {
		return err
	}
	c.Log.Info("order-consumer: consuming", zap.Strings("queues", []string{OrderPlacedQueue, PaymentDecidedQueue}))

	for {
		var (
			d  amqp.Delivery
			ok bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-orders:
		case d, ok = <-payments:
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := c.Handle(d.RoutingKey, d.Body); err != nil {
			c.Log.Error("order-consumer: handle message failed", zap.String("queue", d.RoutingKey), zap.Error(err))
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
}

func (c *Consumer) subscribe(ch *amqp.Channel, queue string) (<-chan amqp.Delivery, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("queue declare %s: %w", queue, err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue consume %s: %w", queue, err)
	}
	return msgs, nil
}

// Handle formats one message and appends it to the log file.
func (c *Consumer) Handle(queue string, body []byte) error {
	var line string
	switch queue {
	case OrderPlacedQueue:
		var ev OrderPlacedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = fmt.Sprintf("[%s] Order placed | order_id=%d | user_id=%d | items=%d | total=%s\n",
			ev.PlacedAt, ev.OrderID, ev.UserID, ev.ItemCount, ev.Total)
	case PaymentDecidedQueue:
		var ev PaymentDecidedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = fmt.Sprintf("[%s] Payment %s | payment_id=%d | order_id=%d | amount=%s | order_status=%s | reviewed_by=%d\n",
			ev.DecidedAt, ev.Decision, ev.PaymentID, ev.OrderID, ev.Amount, ev.OrderStatus, ev.ReviewedBy)
	default:
		return fmt.Errorf("unknown queue %q", queue)
	}
	return c.appendLine(line)
}

func (c *Consumer) appendLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
