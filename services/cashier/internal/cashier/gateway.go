package cashier

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/appetiteclub/pos/pkg/apperr"
	"github.com/appetiteclub/pos/pkg/event"
	"github.com/appetiteclub/pos/pkg/gateway"
	"github.com/appetiteclub/pos/pkg/validate"
	"github.com/google/uuid"
)

const (
	CallbackSuccess = "success"
	CallbackFailed  = "failed"
)

type CallbackOutcome string

const (
	OutcomeCompleted CallbackOutcome = "completed"
	OutcomeFailed    CallbackOutcome = "failed"
	OutcomeDuplicate CallbackOutcome = "duplicate"
)

// GatewayCallback is a verified gateway notification.
type GatewayCallback struct {
	RequestID string
	OrderID   string
	Status    string
	Amount    int64
	PaidAt    *time.Time
}

// CallbackFromFields reads the callback fields of a verified payload.
func CallbackFromFields(f gateway.Fields) (GatewayCallback, error) {
	cb := GatewayCallback{
		RequestID: f["request_id"],
		OrderID:   f["order_id"],
		Status:    f["status"],
	}
	if cb.RequestID == "" {
		return cb, fmt.Errorf("request_id is required")
	}
	if cb.Status != CallbackSuccess && cb.Status != CallbackFailed {
		return cb, fmt.Errorf("status must be %s or %s", CallbackSuccess, CallbackFailed)
	}
	if raw := f["amount"]; raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || amount <= 0 {
			return cb, fmt.Errorf("invalid amount %q", raw)
		}
		cb.Amount = amount
	} else if cb.Status == CallbackSuccess {
		return cb, fmt.Errorf("amount is required when status is %s", CallbackSuccess)
	}
	if raw := f["paid_at"]; raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return cb, fmt.Errorf("invalid paid_at %q", raw)
		}
		cb.PaidAt = &at
	}
	return cb, nil
}

// StartGatewayPayment creates a pending non-cash payment. Its idempotency key
// is the request id the gateway echoes back in its callback.
func (s *Service) StartGatewayPayment(ctx context.Context, actorID uuid.UUID, in validate.GatewayPaymentInput) (*Payment, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}

	order, err := s.payableOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	p := &Payment{
		ID:             uuid.New(),
		OrderID:        order.ID,
		Method:         in.Method,
		Amount:         order.Total,
		Tip:            in.Tip,
		Status:         PaymentPending,
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      s.clock.Now(),
	}

	session, err := s.store.FindOpenSessionByCashier(ctx, actorID)
	switch {
	case err == nil:
		p.SessionID = &session.ID
	case !errors.Is(err, ErrNotFound):
		return nil, internal(err, "cannot load session")
	}

	if err := s.store.InsertPayment(ctx, p); err != nil {
		if errors.Is(err, ErrDuplicatePayment) {
			return nil, apperr.New(apperr.Conflict, "DuplicatePayment", "payment was already processed")
		}
		return nil, internal(err, "cannot create payment")
	}

	s.logger.Info("gateway payment started", "payment_id", p.ID, "order_id", order.ID, "method", p.Method)
	return p, nil
}

// HandleGatewayCallback applies a verified callback. Replays of a callback for
// a payment that is no longer pending change nothing.
func (s *Service) HandleGatewayCallback(ctx context.Context, cb GatewayCallback) (CallbackOutcome, error) {
	p, err := s.store.FindPaymentByKey(ctx, cb.RequestID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", apperr.New(apperr.NotFound, "PaymentNotFound", "payment not found")
		}
		return "", internal(err, "cannot load payment")
	}
	if cb.OrderID != "" && cb.OrderID != p.OrderID.String() {
		return "", apperr.New(apperr.PreconditionFailed, "OrderMismatch", "callback order does not match payment")
	}
	if p.Status != PaymentPending {
		return OutcomeDuplicate, nil
	}

	at := s.clock.Now()
	if cb.PaidAt != nil {
		at = *cb.PaidAt
	}

	if cb.Status == CallbackSuccess && cb.Amount == p.Amount+p.Tip {
		applied, err := s.store.CompletePendingPayment(ctx, p.IdempotencyKey, at)
		if err != nil {
			return "", internal(err, "cannot complete payment")
		}
		if !applied {
			return OutcomeDuplicate, nil
		}
		p.Status = PaymentCompleted
		p.CompletedAt = &at
		s.logger.Info("gateway payment completed", "payment_id", p.ID, "order_id", p.OrderID)
		s.notifyPayment(ctx, event.EventPaymentCompleted, *p, 0)
		if order, err := s.store.FindOrder(ctx, p.OrderID); err == nil {
			s.notifyTableReleased(ctx, order)
		}
		return OutcomeCompleted, nil
	}

	if cb.Status == CallbackSuccess {
		s.logger.Error("gateway amount mismatch", "payment_id", p.ID, "expected", p.Amount+p.Tip, "received", cb.Amount)
	}
	applied, err := s.store.FailPendingPayment(ctx, p.IdempotencyKey, at)
	if err != nil {
		return "", internal(err, "cannot fail payment")
	}
	if !applied {
		return OutcomeDuplicate, nil
	}
	p.Status = PaymentFailed
	s.notifyPayment(ctx, event.EventPaymentFailed, *p, 0)
	return OutcomeFailed, nil
}
