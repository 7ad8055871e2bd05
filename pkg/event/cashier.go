package event

import "time"

const (
	CashierNotificationsTopic = "cashier.notifications"

	EventSessionOpened    = "cashier.session.opened"
	EventSessionClosed    = "cashier.session.closed"
	EventPaymentCompleted = "cashier.payment.completed"
	EventPaymentFailed    = "cashier.payment.failed"
)

type SessionEvent struct {
	EventType      string    `json:"event_type"`
	OccurredAt     time.Time `json:"occurred_at"`
	SessionID      string    `json:"session_id"`
	CashierID      string    `json:"cashier_id"`
	TerminalID     string    `json:"terminal_id"`
	BranchID       string    `json:"branch_id"`
	OpeningAmount  int64     `json:"opening_amount"`
	ExpectedAmount *int64    `json:"expected_amount,omitempty"`
	ClosingAmount  *int64    `json:"closing_amount,omitempty"`
	Difference     *int64    `json:"difference,omitempty"`
}

type PaymentEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	PaymentID  string    `json:"payment_id"`
	OrderID    string    `json:"order_id"`
	SessionID  string    `json:"session_id,omitempty"`
	Method     string    `json:"method"`
	Amount     int64     `json:"amount"`
	Tip        int64     `json:"tip"`
	Change     int64     `json:"change"`
	RequestID  string    `json:"request_id"`
}
