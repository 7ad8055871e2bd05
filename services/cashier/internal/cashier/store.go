package cashier

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateFingerprint = errors.New("terminal fingerprint already registered")
	ErrDuplicatePayment     = errors.New("payment idempotency key already used")
	ErrDuplicateVoucher     = errors.New("voucher code already exists")
	ErrDuplicateTable       = errors.New("table number already exists")
	ErrCashierSessionOpen   = errors.New("cashier already has an open session")
	ErrTerminalSessionOpen  = errors.New("terminal already has an open session")
	ErrSessionNotOpen       = errors.New("session is not open")
	ErrOrderNotPayable      = errors.New("order is completed or cancelled")
	ErrOrderStatusChanged   = errors.New("order status changed concurrently")
)

// Settlement is everything that changes when an order is paid. Stores apply it
// in a single transaction.
type Settlement struct {
	Payment   Payment
	OrderID   uuid.UUID
	TableID   *uuid.UUID
	VoucherID *uuid.UUID
	At        time.Time
}

// Store is the relational storage boundary of the cashier service. Uniqueness
// rules (one open session per cashier and per terminal, unique idempotency
// keys, unique fingerprints) are enforced here and reported with the Err*
// values above.
type Store interface {
	InsertTerminal(ctx context.Context, t *Terminal) error
	FindTerminal(ctx context.Context, id uuid.UUID) (*Terminal, error)
	UpdateTerminalFlags(ctx context.Context, id uuid.UUID, active, approved bool, at time.Time) (*Terminal, error)

	InsertEmployee(ctx context.Context, e *Employee) error
	FindEmployee(ctx context.Context, id uuid.UUID) (*Employee, error)

	InsertSession(ctx context.Context, s *Session) error
	FindSession(ctx context.Context, id uuid.UUID) (*Session, error)
	FindOpenSessionByCashier(ctx context.Context, cashierID uuid.UUID) (*Session, error)
	FindOpenSessionByTerminal(ctx context.Context, terminalID uuid.UUID) (*Session, error)
	// CloseSession persists the closing fields only while the session is
	// still open, returning ErrSessionNotOpen otherwise.
	CloseSession(ctx context.Context, s *Session) error
	ListSessionPayments(ctx context.Context, sessionID uuid.UUID) ([]Payment, error)

	InsertOrder(ctx context.Context, o *Order) error
	FindOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to string, at time.Time) error

	// SettleOrder inserts a completed payment, completes the order, releases
	// the table and counts the voucher use atomically.
	SettleOrder(ctx context.Context, s Settlement) error
	InsertPayment(ctx context.Context, p *Payment) error
	FindPaymentByKey(ctx context.Context, key string) (*Payment, error)
	// CompletePendingPayment settles a pending gateway payment. It reports
	// false without changing anything when the payment is no longer pending.
	CompletePendingPayment(ctx context.Context, key string, at time.Time) (bool, error)
	FailPendingPayment(ctx context.Context, key string, at time.Time) (bool, error)

	InsertCustomer(ctx context.Context, c *Customer) error
	InsertInventoryItem(ctx context.Context, item *InventoryItem) error
	InsertVoucher(ctx context.Context, v *Voucher) error
	InsertTable(ctx context.Context, t *Table) error
}
