package kitchen

import (
	"context"
	"errors"
)

var (
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrStaleStatus     = errors.New("ticket status changed concurrently")
	ErrDuplicateTicket = errors.New("ticket already exists for order and station")
)

type TicketFilter struct {
	StationID string
	Status    string
	OrderID   *OrderID
	Limit     int
	Offset    int
}

type TicketRepository interface {
	Create(ctx context.Context, t *Ticket) error
	FindByID(ctx context.Context, id TicketID) (*Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]Ticket, error)
	// ListActive returns the pending and preparing tickets of a station, oldest first.
	ListActive(ctx context.Context, stationID string) ([]Ticket, error)
	// UpdateStatus moves a ticket from one status to another atomically. It
	// returns ErrStaleStatus when the stored status no longer equals from.
	UpdateStatus(ctx context.Context, id TicketID, from, to string, ts StatusTimestamps) error
}

type TimingRuleRepository interface {
	ListByStation(ctx context.Context, stationID string) ([]TimingRule, error)
	Upsert(ctx context.Context, rule TimingRule) error
}
