package validate

import (
	"github.com/google/uuid"
)

const (
	OrderDineIn   = "dine_in"
	OrderTakeaway = "takeaway"
	OrderDelivery = "delivery"
)

type OrderLineInput struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
	Category  string `json:"category,omitempty"`
	StationID string `json:"station_id,omitempty"`
}

type OrderInput struct {
	BranchID  uuid.UUID        `json:"branch_id"`
	Type      string           `json:"type"`
	TableID   *uuid.UUID       `json:"table_id,omitempty"`
	VoucherID *uuid.UUID       `json:"voucher_id,omitempty"`
	Priority  string           `json:"priority,omitempty"`
	Items     []OrderLineInput `json:"items"`
}

func (in OrderInput) Validate() Errors {
	var errs Errors
	if in.BranchID == uuid.Nil {
		errs.add("branch_id", "branch_id is required")
	}
	switch in.Type {
	case OrderDineIn:
		if in.TableID == nil || *in.TableID == uuid.Nil {
			errs.add("table_id", "table_id is required for dine-in orders")
		}
	case OrderTakeaway, OrderDelivery:
	default:
		errs.add("type", "type must be dine_in, takeaway or delivery")
	}
	if in.Priority != "" && !oneOf(in.Priority, "normal", "rush") {
		errs.add("priority", "priority must be normal or rush")
	}

	if len(in.Items) == 0 {
		errs.add("items", "order needs at least one item")
	}
	for _, item := range in.Items {
		if item.Name == "" {
			errs.add("items", "item name is required")
		}
		if item.Quantity <= 0 {
			errs.add("items", "item quantity must be positive")
		}
		if item.Price < 0 {
			errs.add("items", "item price cannot be negative")
		}
	}
	return errs
}

// Total is the sum of price times quantity over all lines.
func (in OrderInput) Total() int64 {
	var total int64
	for _, item := range in.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}
