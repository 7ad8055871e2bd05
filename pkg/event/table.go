package event

import "time"

const (
	TableStatusTopic = "tables.status"

	EventTableReleased = "table.released"

	// ReasonOrderSettled marks a table freed by the payment of its dine-in order.
	ReasonOrderSettled = "order_settled"
)

type TableStatusEvent struct {
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	TableID     string    `json:"table_id"`
	TableNumber string    `json:"table_number,omitempty"`
	OrderID     string    `json:"order_id,omitempty"`
	Status      string    `json:"status"`
	Previous    string    `json:"previous_status,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}
