package kitchen

import (
	"reflect"
	"testing"
	"time"

	"github.com/appetiteclub/pos/pkg/event"
	"github.com/google/uuid"
)

func newTicket(station, status string) Ticket {
	return Ticket{
		ID:        uuid.New(),
		OrderID:   uuid.New(),
		StationID: station,
		Status:    status,
		Items:     []LineItem{{Name: "Soto ayam", Quantity: 1, Category: "mains"}},
		CreatedAt: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
	}
}

func ids(b Board) []TicketID {
	out := make([]TicketID, 0, len(b.Tickets))
	for _, t := range b.Tickets {
		out = append(out, t.ID)
	}
	return out
}

func TestReduceInsert(t *testing.T) {
	existing := newTicket("grill", "pending")
	base := Board{StationID: "grill", Tickets: []Ticket{existing}}

	tests := []struct {
		name    string
		record  Ticket
		wantLen int
	}{
		{name: "admitsPending", record: newTicket("grill", "pending"), wantLen: 2},
		{name: "admitsPreparing", record: newTicket("grill", "preparing"), wantLen: 2},
		{name: "rejectsOtherStation", record: newTicket("bar", "pending"), wantLen: 1},
		{name: "rejectsReady", record: newTicket("grill", "ready"), wantLen: 1},
		{name: "rejectsDraft", record: newTicket("grill", "draft"), wantLen: 1},
		{name: "dedupesByID", record: existing, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(base, ChangeEvent{Kind: event.ChangeInsert, Record: tt.record})
			if len(got.Tickets) != tt.wantLen {
				t.Fatalf("len(Tickets) = %d, want %d", len(got.Tickets), tt.wantLen)
			}
			if len(base.Tickets) != 1 {
				t.Fatal("Reduce() mutated its input")
			}
		})
	}
}

func TestReduceInsertPreservesArrivalOrder(t *testing.T) {
	b := Board{StationID: "grill"}
	first, second, third := newTicket("grill", "pending"), newTicket("grill", "pending"), newTicket("grill", "preparing")

	for _, rec := range []Ticket{first, second, third} {
		b = Reduce(b, ChangeEvent{Kind: event.ChangeInsert, Record: rec})
	}

	want := []TicketID{first.ID, second.ID, third.ID}
	if got := ids(b); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestReduceInsertIsIdempotent(t *testing.T) {
	rec := newTicket("grill", "pending")
	evt := ChangeEvent{Kind: event.ChangeInsert, Record: rec}

	once := Reduce(Board{StationID: "grill"}, evt)
	twice := Reduce(once, evt)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second insert changed state: %+v vs %+v", once, twice)
	}
}

func TestApplyReportsChange(t *testing.T) {
	a, b := newTicket("grill", "pending"), newTicket("grill", "preparing")
	base := Board{StationID: "grill", Tickets: []Ticket{a, b}}
	stranger := newTicket("grill", "pending")

	tests := []struct {
		name        string
		evt         ChangeEvent
		wantChanged bool
		wantLen     int
	}{
		{name: "insertNew", evt: ChangeEvent{Kind: event.ChangeInsert, Record: stranger}, wantChanged: true, wantLen: 3},
		{name: "insertDuplicate", evt: ChangeEvent{Kind: event.ChangeInsert, Record: a}, wantLen: 2},
		{name: "insertOtherStation", evt: ChangeEvent{Kind: event.ChangeInsert, Record: newTicket("bar", "pending")}, wantLen: 2},
		{name: "updateKnown", evt: ChangeEvent{Kind: event.ChangeUpdate, Record: Ticket{ID: b.ID, Status: "preparing"}}, wantChanged: true, wantLen: 2},
		{name: "updateUnknown", evt: ChangeEvent{Kind: event.ChangeUpdate, Record: stranger}, wantLen: 2},
		{name: "updateToReady", evt: ChangeEvent{Kind: event.ChangeUpdate, Record: Ticket{ID: a.ID, Status: "ready"}}, wantChanged: true, wantLen: 1},
		{name: "deleteKnown", evt: ChangeEvent{Kind: event.ChangeDelete, Record: Ticket{ID: b.ID}}, wantChanged: true, wantLen: 1},
		{name: "deleteUnknown", evt: ChangeEvent{Kind: event.ChangeDelete, Record: Ticket{ID: stranger.ID}}, wantLen: 2},
		{name: "unknownKind", evt: ChangeEvent{Kind: "truncate", Record: a}, wantLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := Apply(base, tt.evt)
			if changed != tt.wantChanged {
				t.Errorf("Apply() changed = %v, want %v", changed, tt.wantChanged)
			}
			if len(got.Tickets) != tt.wantLen {
				t.Errorf("Apply() tickets = %d, want %d", len(got.Tickets), tt.wantLen)
			}
			if len(base.Tickets) != 2 {
				t.Fatal("Apply() modified its input")
			}
		})
	}
}

func TestReduceUpdate(t *testing.T) {
	a, b, c := newTicket("grill", "pending"), newTicket("grill", "pending"), newTicket("grill", "preparing")
	base := Board{StationID: "grill", Tickets: []Ticket{a, b, c}}

	t.Run("mergesInPlace", func(t *testing.T) {
		accepted := time.Date(2026, 3, 1, 18, 5, 0, 0, time.UTC)
		rec := Ticket{ID: b.ID, StationID: "grill", Status: "preparing", AcceptedAt: &accepted}

		got := Reduce(base, ChangeEvent{Kind: event.ChangeUpdate, Record: rec})

		if !reflect.DeepEqual(ids(got), ids(base)) {
			t.Fatalf("update reordered the board")
		}
		merged := got.Tickets[1]
		if merged.Status != "preparing" || merged.AcceptedAt == nil || !merged.AcceptedAt.Equal(accepted) {
			t.Errorf("merged ticket = %+v", merged)
		}
		if len(merged.Items) != 1 || merged.OrderID != b.OrderID {
			t.Error("merge dropped fields absent from the update")
		}
		if base.Tickets[1].Status != "pending" {
			t.Error("Reduce() mutated its input")
		}
	})

	t.Run("sameUpdateTwiceEqualsOnce", func(t *testing.T) {
		rec := a
		rec.Status = "preparing"
		evt := ChangeEvent{Kind: event.ChangeUpdate, Record: rec}

		once := Reduce(base, evt)
		twice := Reduce(once, evt)
		if !reflect.DeepEqual(once, twice) {
			t.Error("applying the same update twice differs from once")
		}
	})

	for _, status := range []string{"ready", "cancelled"} {
		t.Run("removesOn"+status, func(t *testing.T) {
			rec := Ticket{ID: c.ID, Status: status}
			got := Reduce(base, ChangeEvent{Kind: event.ChangeUpdate, Record: rec})

			want := []TicketID{a.ID, b.ID}
			if !reflect.DeepEqual(ids(got), want) {
				t.Errorf("ids = %v, want %v", ids(got), want)
			}
		})
	}

	t.Run("dropsUnknownID", func(t *testing.T) {
		rec := newTicket("grill", "preparing")
		got := Reduce(base, ChangeEvent{Kind: event.ChangeUpdate, Record: rec})
		if !reflect.DeepEqual(got, base) {
			t.Error("update for absent id changed the board")
		}
	})
}

func TestReduceDelete(t *testing.T) {
	a, b := newTicket("grill", "pending"), newTicket("grill", "pending")
	base := Board{StationID: "grill", Tickets: []Ticket{a, b}}

	got := Reduce(base, ChangeEvent{Kind: event.ChangeDelete, Record: Ticket{ID: a.ID}})
	if !reflect.DeepEqual(ids(got), []TicketID{b.ID}) {
		t.Errorf("ids = %v", ids(got))
	}

	same := Reduce(base, ChangeEvent{Kind: event.ChangeDelete, Record: Ticket{ID: uuid.New()}})
	if !reflect.DeepEqual(same, base) {
		t.Error("delete of absent id changed the board")
	}
}

func TestReduceUnknownKind(t *testing.T) {
	base := Board{StationID: "grill", Tickets: []Ticket{newTicket("grill", "pending")}}
	got := Reduce(base, ChangeEvent{Kind: "truncate"})
	if !reflect.DeepEqual(got, base) {
		t.Error("unknown kind changed the board")
	}
}

func TestResync(t *testing.T) {
	stale := newTicket("grill", "pending")
	base := Board{StationID: "grill", Tickets: []Ticket{stale}}

	fresh := newTicket("grill", "preparing")
	snapshot := []Ticket{fresh, newTicket("bar", "pending"), newTicket("grill", "ready")}

	got := Resync(base, snapshot)

	if !reflect.DeepEqual(ids(got), []TicketID{fresh.ID}) {
		t.Errorf("ids = %v, want only the fresh active ticket", ids(got))
	}
	if len(base.Tickets) != 1 || base.Tickets[0].ID != stale.ID {
		t.Error("Resync() mutated its input")
	}
}
