package validate

import (
	"github.com/appetiteclub/pos/pkg/enums/paymentmethod"
	"github.com/appetiteclub/pos/pkg/enums/terminaltype"
	"github.com/google/uuid"
)

type OpenSessionInput struct {
	TerminalID    uuid.UUID `json:"terminal_id"`
	OpeningAmount int64     `json:"opening_amount"`
}

func (in OpenSessionInput) Validate() Errors {
	var errs Errors
	if in.TerminalID == uuid.Nil {
		errs.add("terminal_id", "terminal_id is required")
	}
	errs.nonNegative("opening_amount", in.OpeningAmount)
	return errs
}

type CloseSessionInput struct {
	SessionID     uuid.UUID `json:"session_id"`
	ClosingAmount int64     `json:"closing_amount"`
	Notes         string    `json:"notes,omitempty"`
}

func (in CloseSessionInput) Validate() Errors {
	var errs Errors
	if in.SessionID == uuid.Nil {
		errs.add("session_id", "session_id is required")
	}
	errs.nonNegative("closing_amount", in.ClosingAmount)
	errs.maxLen("notes", in.Notes, 500)
	return errs
}

type PaymentInput struct {
	OrderID        uuid.UUID `json:"order_id"`
	AmountTendered int64     `json:"amount_tendered"`
	Tip            int64     `json:"tip"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
}

func (in PaymentInput) Validate() Errors {
	var errs Errors
	if in.OrderID == uuid.Nil {
		errs.add("order_id", "order_id is required")
	}
	if in.AmountTendered <= 0 {
		errs.add("amount_tendered", "amount_tendered must be positive")
	}
	errs.nonNegative("tip", in.Tip)
	errs.maxLen("idempotency_key", in.IdempotencyKey, 64)
	return errs
}

type GatewayPaymentInput struct {
	OrderID uuid.UUID `json:"order_id"`
	Method  string    `json:"method"`
	Tip     int64     `json:"tip"`
}

func (in GatewayPaymentInput) Validate() Errors {
	var errs Errors
	if in.OrderID == uuid.Nil {
		errs.add("order_id", "order_id is required")
	}
	m := paymentmethod.ByName(in.Method)
	if m == nil || !m.IsGateway() {
		errs.add("method", "method must be card, qris or transfer")
	}
	errs.nonNegative("tip", in.Tip)
	return errs
}

type TerminalInput struct {
	BranchID    uuid.UUID `json:"branch_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Fingerprint string    `json:"fingerprint"`
}

func (in TerminalInput) Validate() Errors {
	var errs Errors
	if in.BranchID == uuid.Nil {
		errs.add("branch_id", "branch_id is required")
	}
	errs.required("name", in.Name)
	if terminaltype.ByName(in.Type) == nil {
		errs.add("type", "type must be cashier, kds, kiosk or waiter")
	}
	errs.required("fingerprint", in.Fingerprint)
	errs.maxLen("fingerprint", in.Fingerprint, 128)
	return errs
}
