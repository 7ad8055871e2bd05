package cashier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/pos/pkg/apperr"
	"github.com/appetiteclub/pos/pkg/clock"
	"github.com/appetiteclub/pos/pkg/enums/paymentmethod"
	"github.com/appetiteclub/pos/pkg/enums/terminaltype"
	"github.com/appetiteclub/pos/pkg/event"
	"github.com/appetiteclub/pos/pkg/validate"
	"github.com/google/uuid"
)

type ServiceDeps struct {
	Store     Store
	Publisher events.Publisher
	Clock     clock.Clock
}

type Service struct {
	store     Store
	publisher events.Publisher
	clock     clock.Clock
	logger    apt.Logger
}

func NewService(deps ServiceDeps, logger apt.Logger) *Service {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	return &Service{
		store:     deps.Store,
		publisher: deps.Publisher,
		clock:     deps.Clock,
		logger:    logger,
	}
}

type PaymentResult struct {
	PaymentID      uuid.UUID `json:"payment_id"`
	OrderID        uuid.UUID `json:"order_id"`
	Amount         int64     `json:"amount"`
	Tip            int64     `json:"tip"`
	Change         int64     `json:"change"`
	IdempotencyKey string    `json:"idempotency_key"`
}

// SessionSummary is a session with its live reconciliation. ClosingAmount and
// Difference in Preview are only meaningful once the session is closed.
type SessionSummary struct {
	Session *Session       `json:"session"`
	Preview Reconciliation `json:"reconciliation"`
}

func requireActor(actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return apperr.New(apperr.Unauthorized, "Unauthorized", "actor identity is required")
	}
	return nil
}

func internal(err error, message string) error {
	return apperr.Wrap(err, apperr.Internal, "", message)
}

func (s *Service) OpenSession(ctx context.Context, actorID uuid.UUID, in validate.OpenSessionInput) (*Session, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}

	cashier, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	terminal, err := s.store.FindTerminal(ctx, in.TerminalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "TerminalNotFound", "terminal not found")
		}
		return nil, internal(err, "cannot load terminal")
	}
	if err := tillEligible(terminal); err != nil {
		return nil, err
	}
	if terminal.BranchID != cashier.BranchID {
		return nil, apperr.New(apperr.PreconditionFailed, "TerminalBranchMismatch", "terminal belongs to another branch")
	}

	if _, err := s.store.FindOpenSessionByCashier(ctx, actorID); err == nil {
		return nil, cashierAlreadyOpen()
	} else if !errors.Is(err, ErrNotFound) {
		return nil, internal(err, "cannot check open sessions")
	}
	if _, err := s.store.FindOpenSessionByTerminal(ctx, terminal.ID); err == nil {
		return nil, terminalAlreadyOpen()
	} else if !errors.Is(err, ErrNotFound) {
		return nil, internal(err, "cannot check open sessions")
	}

	session := &Session{
		ID:            uuid.New(),
		CashierID:     actorID,
		TerminalID:    terminal.ID,
		BranchID:      terminal.BranchID,
		OpeningAmount: in.OpeningAmount,
		OpenedAt:      s.clock.Now(),
		Status:        SessionOpen,
	}
	if err := s.store.InsertSession(ctx, session); err != nil {
		switch {
		case errors.Is(err, ErrCashierSessionOpen):
			return nil, cashierAlreadyOpen()
		case errors.Is(err, ErrTerminalSessionOpen):
			return nil, terminalAlreadyOpen()
		}
		return nil, internal(err, "cannot open session")
	}

	s.logger.Info("session opened", "session_id", session.ID, "cashier_id", actorID, "terminal_id", terminal.ID)
	s.notifySession(ctx, event.EventSessionOpened, session)
	return session, nil
}

func cashierAlreadyOpen() error {
	return apperr.New(apperr.Conflict, "CashierAlreadyOpen", "cashier already has an open session")
}

func terminalAlreadyOpen() error {
	return apperr.New(apperr.Conflict, "TerminalAlreadyOpen", "terminal already has an open session")
}

func tillEligible(t *Terminal) error {
	if t.Type != terminaltype.Types.Cashier.Name || !t.Active || !t.Approved {
		return apperr.New(apperr.PreconditionFailed, "TerminalNotEligible", "terminal is not an active, approved cashier station")
	}
	return nil
}

func (s *Service) actor(ctx context.Context, actorID uuid.UUID) (*Employee, error) {
	e, err := s.store.FindEmployee(ctx, actorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.New(apperr.Unauthorized, "Unauthorized", "unknown actor")
		}
		return nil, internal(err, "cannot load actor")
	}
	if !e.CanOperateTill() {
		return nil, apperr.New(apperr.Unauthorized, "Unauthorized", "actor cannot operate a till")
	}
	return e, nil
}

func (s *Service) CloseSession(ctx context.Context, actorID uuid.UUID, in validate.CloseSessionInput) (*Session, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}

	session, err := s.ownedSession(ctx, actorID, in.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsOpen() {
		return nil, alreadyClosed()
	}

	payments, err := s.store.ListSessionPayments(ctx, session.ID)
	if err != nil {
		return nil, internal(err, "cannot load session payments")
	}

	rec := Reconcile(session.OpeningAmount, payments, in.ClosingAmount)
	session.Close(rec, strings.TrimSpace(in.Notes), s.clock.Now())

	if err := s.store.CloseSession(ctx, session); err != nil {
		if errors.Is(err, ErrSessionNotOpen) {
			return nil, alreadyClosed()
		}
		return nil, internal(err, "cannot close session")
	}

	s.logger.Info("session closed",
		"session_id", session.ID,
		"expected", rec.ExpectedAmount,
		"closing", rec.ClosingAmount,
		"difference", rec.Difference,
	)
	s.notifySession(ctx, event.EventSessionClosed, session)
	return session, nil
}

func alreadyClosed() error {
	return apperr.New(apperr.InvalidTransition, "AlreadyClosed", "session is already closed")
}

func (s *Service) ownedSession(ctx context.Context, actorID, sessionID uuid.UUID) (*Session, error) {
	session, err := s.store.FindSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "SessionNotFound", "session not found")
		}
		return nil, internal(err, "cannot load session")
	}
	if session.CashierID != actorID {
		return nil, apperr.New(apperr.Unauthorized, "NotOwner", "session belongs to another cashier")
	}
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, actorID, sessionID uuid.UUID) (*SessionSummary, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	session, err := s.ownedSession(ctx, actorID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, session)
}

func (s *Service) GetCurrentSession(ctx context.Context, actorID uuid.UUID) (*SessionSummary, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	session, err := s.store.FindOpenSessionByCashier(ctx, actorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "NoOpenSession", "no open session")
		}
		return nil, internal(err, "cannot load session")
	}
	return s.summarize(ctx, session)
}

func (s *Service) summarize(ctx context.Context, session *Session) (*SessionSummary, error) {
	payments, err := s.store.ListSessionPayments(ctx, session.ID)
	if err != nil {
		return nil, internal(err, "cannot load session payments")
	}
	var closing int64
	if session.ClosingAmount != nil {
		closing = *session.ClosingAmount
	}
	return &SessionSummary{
		Session: session,
		Preview: Reconcile(session.OpeningAmount, payments, closing),
	}, nil
}

// ProcessPayment settles an order in cash against the actor's open session.
func (s *Service) ProcessPayment(ctx context.Context, actorID uuid.UUID, in validate.PaymentInput) (*PaymentResult, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}

	session, err := s.tillSession(ctx, actorID)
	if err != nil {
		return nil, err
	}

	// A retried attempt is reported as a duplicate even though its order is
	// no longer payable.
	if in.IdempotencyKey != "" {
		switch _, err := s.store.FindPaymentByKey(ctx, in.IdempotencyKey); {
		case err == nil:
			return nil, apperr.New(apperr.Conflict, "DuplicatePayment", "payment was already processed")
		case !errors.Is(err, ErrNotFound):
			return nil, internal(err, "cannot check payment")
		}
	}

	order, err := s.payableOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	due := order.Total + in.Tip
	if in.AmountTendered < due {
		return nil, apperr.Newf(apperr.PreconditionFailed, "InsufficientAmount",
			"amount tendered %d is less than %d due", in.AmountTendered, due)
	}

	key := in.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	now := s.clock.Now()
	sessionID := session.ID
	payment := Payment{
		ID:             uuid.New(),
		OrderID:        order.ID,
		SessionID:      &sessionID,
		Method:         paymentmethod.Methods.Cash.Name,
		Amount:         order.Total,
		Tip:            in.Tip,
		Status:         PaymentCompleted,
		IdempotencyKey: key,
		CreatedAt:      now,
		CompletedAt:    &now,
	}

	err = s.store.SettleOrder(ctx, Settlement{
		Payment:   payment,
		OrderID:   order.ID,
		TableID:   tableToRelease(order),
		VoucherID: order.VoucherID,
		At:        now,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicatePayment):
			return nil, apperr.New(apperr.Conflict, "DuplicatePayment", "payment was already processed")
		case errors.Is(err, ErrOrderNotPayable):
			return nil, apperr.New(apperr.InvalidTransition, "OrderAlreadyCompleted", "order is already completed")
		case errors.Is(err, ErrNotFound):
			return nil, apperr.New(apperr.NotFound, "OrderNotFound", "order not found")
		}
		return nil, internal(err, "cannot record payment")
	}

	change := in.AmountTendered - due
	s.logger.Info("payment completed", "payment_id", payment.ID, "order_id", order.ID, "change", change)
	s.notifyPayment(ctx, event.EventPaymentCompleted, payment, change)
	s.notifyTableReleased(ctx, order)

	return &PaymentResult{
		PaymentID:      payment.ID,
		OrderID:        order.ID,
		Amount:         payment.Amount,
		Tip:            payment.Tip,
		Change:         change,
		IdempotencyKey: key,
	}, nil
}

func tableToRelease(o *Order) *uuid.UUID {
	if o.IsDineIn() {
		return o.TableID
	}
	return nil
}

// tillSession returns the actor's open session after checking its terminal is
// still a cashier station.
func (s *Service) tillSession(ctx context.Context, actorID uuid.UUID) (*Session, error) {
	session, err := s.store.FindOpenSessionByCashier(ctx, actorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.New(apperr.PreconditionFailed, "NoOpenSession", "an open session is required")
		}
		return nil, internal(err, "cannot load session")
	}

	terminal, err := s.store.FindTerminal(ctx, session.TerminalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.New(apperr.PreconditionFailed, "TerminalNotEligible", "session terminal no longer exists")
		}
		return nil, internal(err, "cannot load terminal")
	}
	if terminal.Type != terminaltype.Types.Cashier.Name {
		return nil, apperr.New(apperr.PreconditionFailed, "TerminalNotEligible", "session terminal is not a cashier station")
	}
	return session, nil
}

func (s *Service) payableOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	order, err := s.store.FindOrder(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "OrderNotFound", "order not found")
		}
		return nil, internal(err, "cannot load order")
	}
	switch order.Status {
	case OrderCompleted:
		return nil, apperr.New(apperr.InvalidTransition, "OrderAlreadyCompleted", "order is already completed")
	case OrderCancelled:
		return nil, apperr.New(apperr.InvalidTransition, "OrderCancelled", "order is cancelled")
	}
	return order, nil
}

func (s *Service) CreateOrder(ctx context.Context, actorID uuid.UUID, in validate.OrderInput) (*Order, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	order := &Order{
		ID:        uuid.New(),
		BranchID:  in.BranchID,
		Type:      in.Type,
		Status:    OrderOpen,
		Total:     in.Total(),
		Priority:  in.Priority,
		VoucherID: in.VoucherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Type == validate.OrderDineIn {
		order.TableID = in.TableID
	}
	order.Number = fmt.Sprintf("%s-%s", now.Format("0102"), strings.ToUpper(order.ID.String()[:4]))
	for _, item := range in.Items {
		order.Items = append(order.Items, OrderLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Category:  item.Category,
			StationID: item.StationID,
		})
	}

	if err := s.store.InsertOrder(ctx, order); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "TableNotFound", "table not found")
		}
		return nil, internal(err, "cannot create order")
	}
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	order, err := s.store.FindOrder(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "OrderNotFound", "order not found")
		}
		return nil, internal(err, "cannot load order")
	}
	return order, nil
}

// ConfirmOrder sends an open order to the kitchen.
func (s *Service) ConfirmOrder(ctx context.Context, actorID, orderID uuid.UUID) (*Order, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != OrderOpen {
		return nil, apperr.Newf(apperr.InvalidTransition, "InvalidTransition",
			"cannot move order from %q to %q", order.Status, OrderConfirmed)
	}

	now := s.clock.Now()
	if err := s.store.UpdateOrderStatus(ctx, order.ID, OrderOpen, OrderConfirmed, now); err != nil {
		if errors.Is(err, ErrOrderStatusChanged) {
			return nil, apperr.New(apperr.InvalidTransition, "InvalidTransition", "order status changed concurrently")
		}
		return nil, internal(err, "cannot confirm order")
	}
	order.Status = OrderConfirmed
	order.UpdatedAt = now

	s.notifyOrderConfirmed(ctx, order)
	return order, nil
}
