package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends domain events.  Implementations must not block the
// caller for long; failures are reported but never fatal to a request.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, ev OrderPlacedEvent) error
	PublishPaymentDecided(ctx context.Context, ev PaymentDecidedEvent) error
}

// AMQPPublisher keeps one connection open and redials lazily when it drops.
type AMQPPublisher struct {
	url string
	log *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
}

func NewAMQPPublisher(url string, log *zap.Logger) *AMQPPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &AMQPPublisher{url: url, log: log}
}

func (p *AMQPPublisher) PublishOrderPlaced(ctx context.Context, ev OrderPlacedEvent) error {
	return p.publish(ctx, OrderPlacedQueue, ev)
}

func (p *AMQPPublisher) PublishPaymentDecided(ctx context.Context, ev PaymentDecidedEvent) error {
	return p.publish(ctx, PaymentDecidedQueue, ev)
}

func (p *AMQPPublisher) connection() (*amqp.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(3 * time.Second)})
	if err != nil {
		return nil, err
	}
	p.conn = conn
	return conn, nil
}

// publish declares the durable queue and sends a persistent JSON message
// through the default exchange.
func (p *AMQPPublisher) publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	conn, err := p.connection()
	if err != nil {
		p.log.Warn("rabbitmq: dial failed", zap.String("queue", queue), zap.Error(err))
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq: channel open failed", zap.String("queue", queue), zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq: queue declare failed", zap.String("queue", queue), zap.Error(err))
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.log.Warn("rabbitmq: publish failed", zap.String("queue", queue), zap.Error(err))
		return err
	}
	return nil
}

// Close releases the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	err := p.conn.Close()
	if errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return err
}

// Recorder is an in-memory Publisher for tests and for running without a
// broker.
type Recorder struct {
	mu       sync.Mutex
	Orders   []OrderPlacedEvent
	Payments []PaymentDecidedEvent
	Err      error
}

func (r *Recorder) PublishOrderPlaced(_ context.Context, ev OrderPlacedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Orders = append(r.Orders, ev)
	return nil
}

func (r *Recorder) PublishPaymentDecided(_ context.Context, ev PaymentDecidedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Payments = append(r.Payments, ev)
	return nil
}

// Snapshot returns copies of the recorded events.
func (r *Recorder) Snapshot() ([]OrderPlacedEvent, []PaymentDecidedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OrderPlacedEvent(nil), r.Orders...), append([]PaymentDecidedEvent(nil), r.Payments...)
}
