package event

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	KitchenTicketsTopic = "kitchen.tickets"

	ChangeInsert = "insert"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// KitchenStationTopic returns the subject on which changes for one station are published.
func KitchenStationTopic(stationID string) string {
	return fmt.Sprintf("%s.%s", KitchenTicketsTopic, stationID)
}

// TicketChangeEvent is one row-level change on the tickets store. Record holds
// the ticket as it reads after the change; for deletes only the id is required.
type TicketChangeEvent struct {
	Kind       string          `json:"kind"`
	TicketID   string          `json:"ticket_id"`
	StationID  string          `json:"station_id"`
	Record     json.RawMessage `json:"record,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (e TicketChangeEvent) Valid() bool {
	switch e.Kind {
	case ChangeInsert, ChangeUpdate:
		return e.TicketID != "" && len(e.Record) > 0
	case ChangeDelete:
		return e.TicketID != ""
	default:
		return false
	}
}
