package queue

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerHandleAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "orders.log")
	c := NewConsumer("", path, nil)

	order, err := json.Marshal(OrderPlacedEvent{OrderID: 9, UserID: 3, ItemCount: 2, Total: "45.00", PlacedAt: "2026-05-01T10:00:00Z"})
	require.NoError(t, err)
	require.NoError(t, c.Handle(OrderPlacedQueue, order))

	pay, err := json.Marshal(PaymentDecidedEvent{PaymentID: 4, OrderID: 9, Decision: "approved", Amount: "45.00", OrderStatus: "paid", ReviewedBy: 1})
	require.NoError(t, err)
	require.NoError(t, c.Handle(PaymentDecidedQueue, pay))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Order placed | order_id=9 | user_id=3 | items=2 | total=45.00")
	assert.Contains(t, lines[1], "Payment approved | payment_id=4 | order_id=9")
}

func TestConsumerHandleRejectsBadInput(t *testing.T) {
	c := NewConsumer("", filepath.Join(t.TempDir(), "x.log"), nil)
	assert.Error(t, c.Handle(OrderPlacedQueue, []byte("{")))
	assert.Error(t, c.Handle("elsewhere", []byte("{}")))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.PublishOrderPlaced(t.Context(), OrderPlacedEvent{OrderID: 1}))
	r.Err = errors.New("down")
	assert.Error(t, r.PublishPaymentDecided(t.Context(), PaymentDecidedEvent{PaymentID: 1}))
	orders, payments := r.Snapshot()
	assert.Len(t, orders, 1)
	assert.Empty(t, payments)
}
