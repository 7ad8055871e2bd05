package kitchen

import (
	"time"

	"github.com/google/uuid"
)

type TicketID = uuid.UUID
type OrderID = uuid.UUID

type Ticket struct {
	ID        TicketID   `bson:"_id" json:"id"`
	OrderID   OrderID    `bson:"order_id" json:"order_id"`
	StationID string     `bson:"station_id" json:"station_id"`
	Status    string     `bson:"status" json:"status"`
	Items     []LineItem `bson:"items" json:"items"`
	Priority  *string    `bson:"priority,omitempty" json:"priority,omitempty"`
	Color     *string    `bson:"color,omitempty" json:"color,omitempty"`

	Order *OrderRef `bson:"order,omitempty" json:"order,omitempty"`
	Table *TableRef `bson:"table,omitempty" json:"table,omitempty"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	AcceptedAt  *time.Time `bson:"accepted_at,omitempty" json:"accepted_at,omitempty"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

type LineItem struct {
	Name     string `bson:"name" json:"name"`
	Quantity int    `bson:"quantity" json:"quantity"`
	Category string `bson:"category,omitempty" json:"category,omitempty"`
}

// OrderRef is the slice of the owning order shown on a ticket card.
type OrderRef struct {
	ID     OrderID `bson:"id" json:"id"`
	Type   string  `bson:"type,omitempty" json:"type,omitempty"`
	Number string  `bson:"number,omitempty" json:"number,omitempty"`
}

type TableRef struct {
	ID     uuid.UUID `bson:"id" json:"id"`
	Number string    `bson:"number,omitempty" json:"number,omitempty"`
}

func (t *Ticket) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
}

func (t *Ticket) BeforeCreate(now time.Time) {
	t.EnsureID()
	t.CreatedAt = now
	t.UpdatedAt = now
}

func (t *Ticket) Categories() []string {
	seen := make(map[string]struct{}, len(t.Items))
	out := make([]string, 0, len(t.Items))
	for _, item := range t.Items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	return out
}

// StatusTimestamps carries the timestamps stamped by a transition. Nil fields
// are left untouched in storage.
type StatusTimestamps struct {
	UpdatedAt   time.Time
	AcceptedAt  *time.Time
	CompletedAt *time.Time
}

type TimingRule struct {
	StationID   string `bson:"station_id" json:"station_id"`
	Category    string `bson:"category" json:"category"`
	TargetMin   int    `bson:"target_min" json:"target_min"`
	WarningMin  *int   `bson:"warning_min,omitempty" json:"warning_min,omitempty"`
	CriticalMin *int   `bson:"critical_min,omitempty" json:"critical_min,omitempty"`
}
