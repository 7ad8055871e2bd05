package kitchen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/pos/pkg/apperr"
	"github.com/appetiteclub/pos/pkg/clock"
	"github.com/appetiteclub/pos/pkg/enums/ticketstatus"
	"github.com/appetiteclub/pos/pkg/event"
	"github.com/appetiteclub/pos/pkg/validate"
)

type ServiceDeps struct {
	Tickets   TicketRepository
	Rules     TimingRuleRepository
	Publisher events.Publisher
	Hub       *InvalidationHub
	Clock     clock.Clock
}

type Service struct {
	tickets   TicketRepository
	rules     TimingRuleRepository
	publisher events.Publisher
	hub       *InvalidationHub
	clock     clock.Clock
	logger    apt.Logger
}

func NewService(deps ServiceDeps, logger apt.Logger) *Service {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	return &Service{
		tickets:   deps.Tickets,
		rules:     deps.Rules,
		publisher: deps.Publisher,
		hub:       deps.Hub,
		clock:     deps.Clock,
		logger:    logger,
	}
}

// Snapshot is the server view a board session resynchronizes from.
type Snapshot struct {
	Tickets []Ticket
	Rules   RuleSet
}

type BoardTicket struct {
	Ticket
	Severity Level `json:"severity"`
}

type BoardView struct {
	StationID   string        `json:"station_id"`
	Tickets     []BoardTicket `json:"tickets"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// NewBoardView attaches the current severity to every ticket of a board.
func NewBoardView(b Board, rules RuleSet, now time.Time) BoardView {
	view := BoardView{
		StationID:   b.StationID,
		Tickets:     make([]BoardTicket, 0, len(b.Tickets)),
		GeneratedAt: now,
	}
	for _, t := range b.Tickets {
		view.Tickets = append(view.Tickets, BoardTicket{Ticket: t, Severity: rules.TicketSeverity(now, t)})
	}
	return view
}

// Bump advances a ticket on the board. Only preparing and ready are accepted targets.
func (s *Service) Bump(ctx context.Context, id TicketID, requested string) (*Ticket, error) {
	if requested != ticketstatus.Statuses.Preparing.Name && requested != ticketstatus.Statuses.Ready.Name {
		return nil, apperr.Newf(apperr.InvalidInput, "InvalidInput", "cannot bump ticket to %q", requested)
	}
	return s.Transition(ctx, id, requested)
}

// Transition applies any edge of the ticket status graph.
func (s *Service) Transition(ctx context.Context, id TicketID, requested string) (*Ticket, error) {
	if ticketstatus.ByName(requested) == nil {
		return nil, apperr.Newf(apperr.InvalidInput, "InvalidInput", "unknown ticket status %q", requested)
	}

	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return nil, apperr.New(apperr.NotFound, "TicketNotFound", "ticket not found")
		}
		return nil, apperr.Wrap(err, apperr.Internal, "", "cannot load ticket")
	}

	current := ticket.Status
	if !ticketstatus.CanTransition(current, requested) {
		return nil, apperr.Newf(apperr.InvalidTransition, "InvalidTransition",
			"cannot move ticket from %q to %q", current, requested)
	}

	now := s.clock.Now()
	ts := StatusTimestamps{UpdatedAt: now}
	switch requested {
	case ticketstatus.Statuses.Preparing.Name:
		if ticket.AcceptedAt == nil {
			ts.AcceptedAt = &now
		}
	case ticketstatus.Statuses.Ready.Name:
		ts.CompletedAt = &now
	}

	if err := s.tickets.UpdateStatus(ctx, id, current, requested, ts); err != nil {
		switch {
		case errors.Is(err, ErrStaleStatus):
			return nil, apperr.Newf(apperr.InvalidTransition, "InvalidTransition",
				"cannot move ticket from %q to %q: status changed concurrently", current, requested)
		case errors.Is(err, ErrTicketNotFound):
			return nil, apperr.New(apperr.NotFound, "TicketNotFound", "ticket not found")
		default:
			return nil, apperr.Wrap(err, apperr.Internal, "", "cannot update ticket status")
		}
	}

	ticket.Status = requested
	ticket.UpdatedAt = now
	if ts.AcceptedAt != nil {
		ticket.AcceptedAt = ts.AcceptedAt
	}
	if ts.CompletedAt != nil {
		ticket.CompletedAt = ts.CompletedAt
	}

	s.logger.Info("ticket status changed",
		"ticket_id", id,
		"station_id", ticket.StationID,
		"from", current,
		"to", requested,
	)

	s.changed(ctx, event.ChangeUpdate, *ticket)
	return ticket, nil
}

// CreateTicket stores a new pending ticket. A ticket that already exists for
// the same order and station is reported as a Conflict.
func (s *Service) CreateTicket(ctx context.Context, t *Ticket) (*Ticket, error) {
	if t.StationID == "" {
		return nil, apperr.New(apperr.InvalidInput, "InvalidInput", "station_id is required")
	}
	if len(t.Items) == 0 {
		return nil, apperr.New(apperr.InvalidInput, "InvalidInput", "ticket needs at least one item")
	}
	if t.Status == "" {
		t.Status = ticketstatus.Statuses.Pending.Name
	}
	t.BeforeCreate(s.clock.Now())

	if err := s.tickets.Create(ctx, t); err != nil {
		if errors.Is(err, ErrDuplicateTicket) {
			return nil, apperr.Wrap(err, apperr.Conflict, "DuplicateTicket", "ticket already exists")
		}
		return nil, apperr.Wrap(err, apperr.Internal, "", "cannot create ticket")
	}

	s.changed(ctx, event.ChangeInsert, *t)
	return t, nil
}

func (s *Service) Get(ctx context.Context, id TicketID) (*Ticket, error) {
	t, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return nil, apperr.New(apperr.NotFound, "TicketNotFound", "ticket not found")
		}
		return nil, apperr.Wrap(err, apperr.Internal, "", "cannot load ticket")
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, filter TicketFilter) ([]Ticket, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "", "cannot list tickets")
	}
	return tickets, nil
}

func (s *Service) Snapshot(ctx context.Context, stationID string) (Snapshot, error) {
	tickets, err := s.tickets.ListActive(ctx, stationID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("cannot fetch active tickets: %w", err)
	}

	var rules []TimingRule
	if s.rules != nil {
		rules, err = s.rules.ListByStation(ctx, stationID)
		if err != nil {
			return Snapshot{}, fmt.Errorf("cannot fetch timing rules: %w", err)
		}
	}
	return Snapshot{Tickets: tickets, Rules: NewRuleSet(rules)}, nil
}

func (s *Service) Board(ctx context.Context, stationID string) (BoardView, error) {
	snap, err := s.Snapshot(ctx, stationID)
	if err != nil {
		return BoardView{}, apperr.Wrap(err, apperr.Internal, "", "cannot load board")
	}
	board := Resync(Board{StationID: stationID}, snap.Tickets)
	return NewBoardView(board, snap.Rules, s.clock.Now()), nil
}

func (s *Service) TimingRules(ctx context.Context, stationID string) ([]TimingRule, error) {
	if s.rules == nil {
		return []TimingRule{}, nil
	}
	rules, err := s.rules.ListByStation(ctx, stationID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "", "cannot list timing rules")
	}
	return rules, nil
}

// SetTimingRules validates every rule before storing any of them.
func (s *Service) SetTimingRules(ctx context.Context, stationID string, inputs []validate.TimingRuleInput) ([]TimingRule, error) {
	if stationID == "" {
		return nil, apperr.New(apperr.InvalidInput, "InvalidInput", "station_id is required")
	}
	if s.rules == nil {
		return nil, apperr.New(apperr.Internal, "", "timing rules store not configured")
	}
	for _, in := range inputs {
		if err := in.Validate().Err(); err != nil {
			return nil, err
		}
	}

	stored := make([]TimingRule, 0, len(inputs))
	for _, in := range inputs {
		rule := TimingRule{
			StationID:   stationID,
			Category:    in.Category,
			TargetMin:   in.TargetMin,
			WarningMin:  in.WarningMin,
			CriticalMin: in.CriticalMin,
		}
		if err := s.rules.Upsert(ctx, rule); err != nil {
			return nil, apperr.Wrap(err, apperr.Internal, "", "cannot store timing rule")
		}
		stored = append(stored, rule)
	}

	if s.hub != nil {
		s.hub.Invalidate(stationID)
	}
	return stored, nil
}

// changed publishes the change and tells local board sessions to refetch.
func (s *Service) changed(ctx context.Context, kind string, t Ticket) {
	if s.hub != nil {
		s.hub.Invalidate(t.StationID)
	}
	if s.publisher == nil {
		return
	}

	payload, err := EncodeChange(kind, t)
	if err != nil {
		s.logger.Error("cannot encode ticket change", "ticket_id", t.ID, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, event.KitchenStationTopic(t.StationID), payload); err != nil {
		s.logger.Error("cannot publish ticket change", "ticket_id", t.ID, "kind", kind, "error", err)
	}
}
