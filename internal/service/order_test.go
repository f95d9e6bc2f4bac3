package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/repository"
)

func placeOrder(t *testing.T, h *harness, userID uint64, price string) *model.Order {
	t.Helper()
	p := h.hoodie(t, "hoodie-"+price, price)
	o, err := h.orders.Place(t.Context(), userID, OrderInput{
		ShippingAddress: "1 Main St",
		Items:           []LineRef{{ProductType: model.ProductTypeCatalog, ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	return o
}

func TestPlaceFromCartClearsCartAndPublishes(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	u := h.user(t, "c@example.com", model.RoleCustomer)
	p := h.hoodie(t, "hoodie", "40.00")

	_, err := h.orders.Place(ctx, u.ID, OrderInput{ShippingAddress: "1 Main St"})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = h.cart.Add(ctx, u.ID, LineRef{ProductType: model.ProductTypeCatalog, ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = h.orders.Place(ctx, u.ID, OrderInput{})
	assert.ErrorIs(t, err, ErrValidation)

	o, err := h.orders.Place(ctx, u.ID, OrderInput{ShippingAddress: "1 Main St", ContactPhone: "555"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, o.Status)
	assert.Equal(t, "80.00", o.Total.StringFixed(2))
	require.Len(t, o.Items, 1)
	assert.Equal(t, "40.00", o.Items[0].UnitPrice.StringFixed(2))

	cart, err := h.cart.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	placed, _ := h.events.Snapshot()
	require.Len(t, placed, 1)
	assert.Equal(t, o.ID, placed[0].OrderID)
	assert.Equal(t, "80.00", placed[0].Total)
}

func TestPlaceSurvivesPublishFailure(t *testing.T) {
	h := newHarness(t)
	u := h.user(t, "c@example.com", model.RoleCustomer)
	h.events.Err = errors.New("broker down")

	o := placeOrder(t, h, u.ID, "10.00")
	assert.NotZero(t, o.ID)
}

func TestOrderVisibilityAndCancel(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	owner := h.user(t, "o@example.com", model.RoleCustomer)
	other := h.user(t, "x@example.com", model.RoleCustomer)
	o := placeOrder(t, h, owner.ID, "10.00")

	_, err := h.orders.Get(ctx, o.ID, other.ID, false)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	_, err = h.orders.Get(ctx, o.ID, other.ID, true)
	assert.NoError(t, err)

	_, err = h.orders.Cancel(ctx, o.ID, other.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	cancelled, err := h.orders.Cancel(ctx, o.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)

	_, err = h.orders.Transition(ctx, o.ID, "lost")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = h.orders.Transition(ctx, o.ID, model.OrderShipped)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestApproveRequiresStoredAdminRole(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	customer := h.user(t, "c@example.com", model.RoleCustomer)
	o := placeOrder(t, h, customer.ID, "100.00")

	pay, _, err := h.payments.Submit(ctx, customer.ID, PaymentInput{
		OrderID: o.ID, Amount: decimal.RequireFromString("100.00"), Type: model.PaymentFull,
	})
	require.NoError(t, err)

	_, _, err = h.payments.Approve(ctx, customer.ID, pay.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	_, _, err = h.payments.Approve(ctx, 9999, pay.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	// nothing moved
	stored, err := h.orders.Orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPaymentReview, stored.Status)
	require.Len(t, stored.Payments, 1)
	assert.Equal(t, model.PaymentPending, stored.Payments[0].Status)
	_, decided := h.events.Snapshot()
	assert.Empty(t, decided)
}

func TestApproveBooksLedgerWithLegacyRecorder(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	customer := h.user(t, "c@example.com", model.RoleCustomer)
	admin := h.user(t, "boss@example.com", model.RoleAdmin)
	lu, err := h.legacy.ProvisionAdmin(ctx, admin.Email, false)
	require.NoError(t, err)

	o := placeOrder(t, h, customer.ID, "100.00")
	pay, _, err := h.payments.Submit(ctx, customer.ID, PaymentInput{
		OrderID: o.ID, Amount: decimal.RequireFromString("40.00"), Type: model.PaymentPartial,
	})
	require.NoError(t, err)

	_, order, err := h.payments.Approve(ctx, admin.ID, pay.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPartiallyPaid, order.Status)

	_, _, err = h.payments.Approve(ctx, admin.ID, pay.ID)
	assert.ErrorIs(t, err, repository.ErrConflict)

	var entries []model.LedgerEntry
	require.NoError(t, h.db.Find(&entries).Error)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].RecordedBy)
	assert.Equal(t, lu.ID, *entries[0].RecordedBy)

	_, decided := h.events.Snapshot()
	require.Len(t, decided, 1)
	assert.Equal(t, model.PaymentApproved, decided[0].Decision)
	assert.Equal(t, model.OrderPartiallyPaid, decided[0].OrderStatus)
	assert.Equal(t, admin.ID, decided[0].ReviewedBy)

	var legacyRows int64
	require.NoError(t, h.db.Model(&model.LegacyUser{}).Count(&legacyRows).Error)
	assert.EqualValues(t, 1, legacyRows)
}

func TestRejectRevertsOrder(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	customer := h.user(t, "c@example.com", model.RoleCustomer)
	admin := h.user(t, "boss@example.com", model.RoleAdmin)
	o := placeOrder(t, h, customer.ID, "50.00")

	_, _, err := h.payments.Submit(ctx, customer.ID, PaymentInput{OrderID: o.ID, Amount: decimal.NewFromInt(10), Type: model.PaymentFull})
	assert.ErrorIs(t, err, ErrValidation)

	pay, _, err := h.payments.Submit(ctx, customer.ID, PaymentInput{OrderID: o.ID, Amount: decimal.NewFromInt(50), Type: "FULL"})
	require.NoError(t, err)
	_, _, err = h.payments.Submit(ctx, customer.ID, PaymentInput{OrderID: o.ID, Amount: decimal.NewFromInt(50), Type: model.PaymentFull})
	assert.ErrorIs(t, err, repository.ErrPaymentPending)

	rejected, order, err := h.payments.Reject(ctx, admin.ID, pay.ID, " blurry proof ")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRejected, rejected.Status)
	assert.Equal(t, "blurry proof", rejected.RejectionReason)
	assert.Equal(t, model.OrderPending, order.Status)

	var n int64
	require.NoError(t, h.db.Model(&model.LedgerEntry{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestListForOrderOwnership(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	owner := h.user(t, "o@example.com", model.RoleCustomer)
	other := h.user(t, "x@example.com", model.RoleCustomer)
	o := placeOrder(t, h, owner.ID, "10.00")

	_, err := h.payments.ListForOrder(ctx, o.ID, other.ID, false)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	list, err := h.payments.ListForOrder(ctx, o.ID, owner.ID, false)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProvisionAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	h.user(t, "c@example.com", model.RoleCustomer)

	_, err := h.legacy.ProvisionAdmin(ctx, "c@example.com", false)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = h.legacy.ProvisionAdmin(ctx, "ghost@example.com", true)
	assert.ErrorIs(t, err, ErrValidation)

	first, err := h.legacy.ProvisionAdmin(ctx, "C@example.com", true)
	require.NoError(t, err)
	assert.True(t, first.IsAdmin)
	again, err := h.legacy.ProvisionAdmin(ctx, "c@example.com", false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	u, err := h.auth.Users.GetByEmail(ctx, "c@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
}
