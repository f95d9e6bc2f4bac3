package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/apparel-studio/internal/metrics"
	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/queue"
	"github.com/iliyamo/apparel-studio/internal/repository"
)

// PaymentInput is a customer's payment claim.
type PaymentInput struct {
	OrderID         uint64          `json:"order_id"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"type"`
	ReferenceNumber string          `json:"reference_number"`
	ProofURL        string          `json:"proof_url"`
}

type PaymentService struct {
	Payments  *repository.PaymentRepo
	Orders    *repository.OrderRepo
	Users     *repository.UserRepo
	Legacy    *repository.LegacyUserRepo
	Publisher queue.Publisher
	Log       *zap.Logger
	Now       func() time.Time
}

func NewPaymentService(payments *repository.PaymentRepo, orders *repository.OrderRepo, users *repository.UserRepo, legacy *repository.LegacyUserRepo, pub queue.Publisher, log *zap.Logger) *PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{Payments: payments, Orders: orders, Users: users, Legacy: legacy, Publisher: pub, Log: log, Now: time.Now}
}

// Submit records a pending payment against an order owned by userID.
func (s *PaymentService) Submit(ctx context.Context, userID uint64, in PaymentInput) (*model.Payment, *model.Order, error) {
	if in.OrderID == 0 {
		return nil, nil, invalid("order_id is required")
	}
	p := &model.Payment{
		OrderID:         in.OrderID,
		UserID:          userID,
		Amount:          in.Amount,
		Type:            strings.ToLower(strings.TrimSpace(in.Type)),
		ReferenceNumber: strings.TrimSpace(in.ReferenceNumber),
		ProofURL:        strings.TrimSpace(in.ProofURL),
	}
	o, err := s.Payments.Create(ctx, p)
	if errors.Is(err, repository.ErrInvalidPayment) {
		return nil, nil, invalid("%s", strings.TrimPrefix(err.Error(), repository.ErrInvalidPayment.Error()+": "))
	}
	if err != nil {
		return nil, nil, err
	}
	return p, o, nil
}

// ListForOrder returns an order's payments to its owner or an admin.
func (s *PaymentService) ListForOrder(ctx context.Context, orderID, userID uint64, isAdmin bool) ([]model.Payment, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, repository.ErrForbidden
	}
	return s.Payments.ListByOrder(ctx, orderID)
}

func (s *PaymentService) List(ctx context.Context, status string) ([]model.Payment, error) {
	return s.Payments.List(ctx, status)
}

func (s *PaymentService) Approve(ctx context.Context, actorID, paymentID uint64) (*model.Payment, *model.Order, error) {
	return s.decide(ctx, actorID, paymentID, true, "")
}

func (s *PaymentService) Reject(ctx context.Context, actorID, paymentID uint64, reason string) (*model.Payment, *model.Order, error) {
	return s.decide(ctx, actorID, paymentID, false, strings.TrimSpace(reason))
}

// decide checks the actor against its stored role before anything is
// written; a stale or forged role claim is not enough.
func (s *PaymentService) decide(ctx context.Context, actorID, paymentID uint64, approve bool, reason string) (*model.Payment, *model.Order, error) {
	admin, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	var recordedBy *uint64
	if approve {
		// the legacy recorder is looked up, never created, on this path
		if recordedBy, err = s.Legacy.ResolveRecorder(ctx, admin.Email); err != nil {
			return nil, nil, err
		}
	}
	pay, order, err := s.Payments.Decide(ctx, repository.Decision{
		PaymentID:  paymentID,
		Approve:    approve,
		ReviewerID: admin.ID,
		Reason:     reason,
		RecordedBy: recordedBy,
	})
	if err != nil {
		return nil, nil, err
	}

	decision := model.PaymentRejected
	if approve {
		decision = model.PaymentApproved
	}
	metrics.RecordPaymentDecision(decision)
	s.publishDecided(ctx, pay, order, decision)
	return pay, order, nil
}

func (s *PaymentService) requireAdmin(ctx context.Context, userID uint64) (*model.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, repository.ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, repository.ErrForbidden
	}
	return u, nil
}

func (s *PaymentService) publishDecided(ctx context.Context, pay *model.Payment, o *model.Order, decision string) {
	if s.Publisher == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	ev := queue.PaymentDecidedEvent{
		PaymentID:   pay.ID,
		OrderID:     o.ID,
		Decision:    decision,
		Amount:      pay.Amount.StringFixed(2),
		OrderStatus: o.Status,
		DecidedAt:   s.Now().UTC().Format(time.RFC3339),
	}
	if pay.ReviewedBy != nil {
		ev.ReviewedBy = *pay.ReviewedBy
	}
	if err := s.Publisher.PublishPaymentDecided(pctx, ev); err != nil {
		s.Log.Warn("payment.decided publish failed", zap.Uint64("payment_id", pay.ID), zap.Error(err))
	}
}
