package event

import "time"

const (
	OrdersConfirmedTopic = "orders.confirmed"
	EventOrderConfirmed  = "order.confirmed"
)

// OrderConfirmedEvent is published by the cashier when an order is sent to the
// kitchen. The kitchen turns it into one ticket per station.
type OrderConfirmedEvent struct {
	EventType   string           `json:"event_type"`
	OccurredAt  time.Time        `json:"occurred_at"`
	OrderID     string           `json:"order_id"`
	OrderType   string           `json:"order_type"`
	OrderNumber string           `json:"order_number,omitempty"`
	TableID     string           `json:"table_id,omitempty"`
	TableNumber string           `json:"table_number,omitempty"`
	Priority    string           `json:"priority,omitempty"`
	Items       []OrderLineEvent `json:"items"`
}

type OrderLineEvent struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Category  string `json:"category"`
	StationID string `json:"station_id,omitempty"`
}
