package kitchen

import (
	"github.com/appetiteclub/pos/pkg/enums/ticketstatus"
	"github.com/appetiteclub/pos/pkg/event"
)

type ChangeEvent struct {
	Kind   string
	Record Ticket
}

// Board is the ordered set of active tickets for one station.
type Board struct {
	StationID string
	Tickets   []Ticket
}

func (b Board) index(id TicketID) int {
	for i := range b.Tickets {
		if b.Tickets[i].ID == id {
			return i
		}
	}
	return -1
}

// Reduce applies one change event and returns the resulting board. The input
// board is never modified.
func Reduce(b Board, evt ChangeEvent) Board {
	next, _ := Apply(b, evt)
	return next
}

// Apply is Reduce that also reports whether the event changed the board.
func Apply(b Board, evt ChangeEvent) (Board, bool) {
	switch evt.Kind {
	case event.ChangeInsert:
		return applyInsert(b, evt.Record)
	case event.ChangeUpdate:
		return applyUpdate(b, evt.Record)
	case event.ChangeDelete:
		return remove(b, evt.Record.ID)
	default:
		return b, false
	}
}

// Resync replaces the board content with a server snapshot.
func Resync(b Board, snapshot []Ticket) Board {
	tickets := make([]Ticket, 0, len(snapshot))
	for _, t := range snapshot {
		if t.StationID == b.StationID && ticketstatus.IsActive(t.Status) {
			tickets = append(tickets, t)
		}
	}
	return Board{StationID: b.StationID, Tickets: tickets}
}

func applyInsert(b Board, rec Ticket) (Board, bool) {
	if rec.StationID != b.StationID || !ticketstatus.IsActive(rec.Status) {
		return b, false
	}
	if b.index(rec.ID) >= 0 {
		return b, false
	}

	tickets := make([]Ticket, len(b.Tickets), len(b.Tickets)+1)
	copy(tickets, b.Tickets)
	tickets = append(tickets, rec)
	return Board{StationID: b.StationID, Tickets: tickets}, true
}

func applyUpdate(b Board, rec Ticket) (Board, bool) {
	if ticketstatus.LeavesBoard(rec.Status) {
		return remove(b, rec.ID)
	}

	i := b.index(rec.ID)
	if i < 0 {
		return b, false
	}

	tickets := make([]Ticket, len(b.Tickets))
	copy(tickets, b.Tickets)
	tickets[i] = merge(tickets[i], rec)
	return Board{StationID: b.StationID, Tickets: tickets}, true
}

func remove(b Board, id TicketID) (Board, bool) {
	i := b.index(id)
	if i < 0 {
		return b, false
	}

	tickets := make([]Ticket, 0, len(b.Tickets)-1)
	tickets = append(tickets, b.Tickets[:i]...)
	tickets = append(tickets, b.Tickets[i+1:]...)
	return Board{StationID: b.StationID, Tickets: tickets}, true
}

// merge overlays the populated fields of rec onto cur.
func merge(cur, rec Ticket) Ticket {
	out := cur
	if rec.OrderID != (OrderID{}) {
		out.OrderID = rec.OrderID
	}
	if rec.Status != "" {
		out.Status = rec.Status
	}
	if rec.Items != nil {
		out.Items = append([]LineItem(nil), rec.Items...)
	}
	if rec.Priority != nil {
		out.Priority = rec.Priority
	}
	if rec.Color != nil {
		out.Color = rec.Color
	}
	if rec.Order != nil {
		out.Order = rec.Order
	}
	if rec.Table != nil {
		out.Table = rec.Table
	}
	if !rec.CreatedAt.IsZero() {
		out.CreatedAt = rec.CreatedAt
	}
	if !rec.UpdatedAt.IsZero() {
		out.UpdatedAt = rec.UpdatedAt
	}
	if rec.AcceptedAt != nil {
		out.AcceptedAt = rec.AcceptedAt
	}
	if rec.CompletedAt != nil {
		out.CompletedAt = rec.CompletedAt
	}
	return out
}
