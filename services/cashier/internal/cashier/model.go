package cashier

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionOpen   = "open"
	SessionClosed = "closed"

	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"

	OrderOpen      = "open"
	OrderConfirmed = "confirmed"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"

	TableAvailable = "available"
	TableOccupied  = "occupied"
)

type Terminal struct {
	ID          uuid.UUID `json:"id"`
	BranchID    uuid.UUID `json:"branch_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Fingerprint string    `json:"fingerprint"`
	Active      bool      `json:"active"`
	Approved    bool      `json:"approved"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Employee is the acting user. Cashiers are employees with the cashier or
// manager role.
type Employee struct {
	ID        uuid.UUID `json:"id"`
	BranchID  uuid.UUID `json:"branch_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (e *Employee) CanOperateTill() bool {
	return e.Active && (e.Role == "cashier" || e.Role == "manager")
}

type Session struct {
	ID             uuid.UUID  `json:"id"`
	CashierID      uuid.UUID  `json:"cashier_id"`
	TerminalID     uuid.UUID  `json:"terminal_id"`
	BranchID       uuid.UUID  `json:"branch_id"`
	OpeningAmount  int64      `json:"opening_amount"`
	OpenedAt       time.Time  `json:"opened_at"`
	Status         string     `json:"status"`
	ClosingAmount  *int64     `json:"closing_amount,omitempty"`
	ExpectedAmount *int64     `json:"expected_amount,omitempty"`
	Difference     *int64     `json:"difference,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

func (s *Session) IsOpen() bool {
	return s.Status == SessionOpen
}

// Close stores the reconciliation on the session. Closed sessions are never
// mutated again.
func (s *Session) Close(rec Reconciliation, notes string, at time.Time) {
	closing := rec.ClosingAmount
	expected := rec.ExpectedAmount
	diff := rec.Difference
	s.Status = SessionClosed
	s.ClosingAmount = &closing
	s.ExpectedAmount = &expected
	s.Difference = &diff
	s.ClosedAt = &at
	s.Notes = notes
}

type Payment struct {
	ID             uuid.UUID  `json:"id"`
	OrderID        uuid.UUID  `json:"order_id"`
	SessionID      *uuid.UUID `json:"session_id,omitempty"`
	Method         string     `json:"method"`
	Amount         int64      `json:"amount"`
	Tip            int64      `json:"tip"`
	Status         string     `json:"status"`
	IdempotencyKey string     `json:"idempotency_key"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

type OrderLine struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
	Category  string `json:"category,omitempty"`
	StationID string `json:"station_id,omitempty"`
}

type Order struct {
	ID          uuid.UUID   `json:"id"`
	BranchID    uuid.UUID   `json:"branch_id"`
	Number      string      `json:"number"`
	Type        string      `json:"type"`
	Status      string      `json:"status"`
	Total       int64       `json:"total"`
	Priority    string      `json:"priority,omitempty"`
	TableID     *uuid.UUID  `json:"table_id,omitempty"`
	TableNumber string      `json:"table_number,omitempty"`
	VoucherID   *uuid.UUID  `json:"voucher_id,omitempty"`
	Items       []OrderLine `json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

func (o *Order) IsDineIn() bool {
	return o.Type == "dine_in" && o.TableID != nil
}

// Table is a restaurant table. Dine-in orders occupy it until they are paid.
type Table struct {
	ID        uuid.UUID `json:"id"`
	Number    string    `json:"number"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type InventoryItem struct {
	ID           uuid.UUID `json:"id"`
	BranchID     uuid.UUID `json:"branch_id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	Quantity     int64     `json:"quantity"`
	ReorderLevel int64     `json:"reorder_level"`
	CreatedAt    time.Time `json:"created_at"`
}

type Voucher struct {
	ID         uuid.UUID  `json:"id"`
	Code       string     `json:"code"`
	Kind       string     `json:"kind"`
	Value      int64      `json:"value"`
	UsageLimit int        `json:"usage_limit"`
	UsageCount int        `json:"usage_count"`
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
