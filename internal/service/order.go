package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/queue"
	"github.com/iliyamo/apparel-studio/internal/repository"
)

const publishTimeout = 3 * time.Second

// OrderInput is a checkout request.  Without Items the caller's cart is
// checked out and emptied.
type OrderInput struct {
	ShippingAddress string    `json:"shipping_address"`
	ContactPhone    string    `json:"contact_phone"`
	Notes           string    `json:"notes"`
	Items           []LineRef `json:"items"`
}

type OrderService struct {
	Orders    *repository.OrderRepo
	Cart      *repository.CartRepo
	Lookup    *ProductLookup
	Publisher queue.Publisher
	Log       *zap.Logger
	Now       func() time.Time
}

func NewOrderService(orders *repository.OrderRepo, cart *repository.CartRepo, lookup *ProductLookup, pub queue.Publisher, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{Orders: orders, Cart: cart, Lookup: lookup, Publisher: pub, Log: log, Now: time.Now}
}

// Place snapshots prices into a new pending order and publishes
// order.placed.  A publish failure is logged only.
func (s *OrderService) Place(ctx context.Context, userID uint64, in OrderInput) (*model.Order, error) {
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return nil, invalid("shipping_address is required")
	}
	o := &model.Order{
		UserID:          userID,
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		ContactPhone:    strings.TrimSpace(in.ContactPhone),
		Notes:           in.Notes,
	}

	fromCart := len(in.Items) == 0
	if fromCart {
		lines, err := s.Cart.List(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(lines) == 0 {
			return nil, ErrEmptyCart
		}
		for _, l := range lines {
			in.Items = append(in.Items, LineRef{
				ProductType:   l.ProductType,
				ProductID:     l.ProductID,
				Quantity:      l.Quantity,
				Size:          l.Size,
				Color:         l.Color,
				SavedDesignID: l.DesignRef(),
			})
		}
	}

	for _, ref := range in.Items {
		if ref.Quantity <= 0 {
			return nil, invalid("quantity must be positive")
		}
		snap, err := s.Lookup.Resolve(ctx, userID, ref)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, model.OrderItem{
			ProductType:   ref.ProductType,
			ProductID:     ref.ProductID,
			ProductName:   snap.Name,
			Size:          ref.Size,
			Color:         ref.Color,
			SavedDesignID: ref.SavedDesignID,
			Quantity:      ref.Quantity,
			UnitPrice:     snap.UnitPrice,
		})
	}

	if err := s.Orders.Create(ctx, o, fromCart); err != nil {
		return nil, err
	}
	s.publishPlaced(ctx, o)
	return o, nil
}

// Get returns an order visible to the caller.
func (s *OrderService) Get(ctx context.Context, id, userID uint64, isAdmin bool) (*model.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, repository.ErrForbidden
	}
	return o, nil
}

func (s *OrderService) Cancel(ctx context.Context, id, userID uint64) (*model.Order, error) {
	return s.Orders.Cancel(ctx, id, userID)
}

// Transition applies an admin status change.
func (s *OrderService) Transition(ctx context.Context, id uint64, to string) (*model.Order, error) {
	if !model.ValidOrderStatus(to) {
		return nil, invalid("unknown order status %q", to)
	}
	return s.Orders.Transition(ctx, id, to)
}

func (s *OrderService) publishPlaced(ctx context.Context, o *model.Order) {
	if s.Publisher == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	ev := queue.OrderPlacedEvent{
		OrderID:   o.ID,
		UserID:    o.UserID,
		ItemCount: len(o.Items),
		Total:     o.Total.StringFixed(2),
		PlacedAt:  s.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Publisher.PublishOrderPlaced(pctx, ev); err != nil {
		s.Log.Warn("order.placed publish failed", zap.Uint64("order_id", o.ID), zap.Error(err))
	}
}
