// Package queue defines the domain events exchanged over RabbitMQ, the
// publisher used by the API and the consumer run by the worker.
package queue

// Queue names.  Each event type has its own durable queue.
const (
	OrderPlacedQueue    = "order.placed"
	PaymentDecidedQueue = "payment.decided"
)

// OrderPlacedEvent is published after an order is committed.  It carries
// enough to log or notify without reading the database.
type OrderPlacedEvent struct {
	OrderID   uint64 `json:"order_id"`
	UserID    uint64 `json:"user_id"`
	ItemCount int    `json:"item_count"`
	Total     string `json:"total"`
	PlacedAt  string `json:"placed_at"`
}

// PaymentDecidedEvent is published after an admin approves or rejects a
// payment.
type PaymentDecidedEvent struct {
	PaymentID   uint64 `json:"payment_id"`
	OrderID     uint64 `json:"order_id"`
	Decision    string `json:"decision"`
	Amount      string `json:"amount"`
	OrderStatus string `json:"order_status"`
	ReviewedBy  uint64 `json:"reviewed_by"`
	DecidedAt   string `json:"decided_at"`
}
