package kitchen

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/pos/pkg"
	"github.com/appetiteclub/pos/pkg/event"
	"github.com/google/uuid"
)

const feedBuffer = 64

type Filter struct {
	StationID string
}

// ChangeFeed delivers row-level ticket changes scoped by a filter.
type ChangeFeed interface {
	Subscribe(ctx context.Context, filter Filter) (Subscription, error)
}

type Subscription interface {
	Events() <-chan ChangeEvent
	Unsubscribe() error
}

// DecodeChange turns a wire change event into a reducer event.
func DecodeChange(data []byte) (ChangeEvent, error) {
	var wire event.TicketChangeEvent
	if err := json.Unmarshal(data, &wire); err != nil {
		return ChangeEvent{}, fmt.Errorf("cannot decode ticket change: %w", err)
	}
	if !wire.Valid() {
		return ChangeEvent{}, fmt.Errorf("invalid ticket change of kind %q", wire.Kind)
	}

	var rec Ticket
	if len(wire.Record) > 0 {
		if err := json.Unmarshal(wire.Record, &rec); err != nil {
			return ChangeEvent{}, fmt.Errorf("cannot decode ticket record: %w", err)
		}
	}
	if rec.ID == uuid.Nil {
		id, err := uuid.Parse(wire.TicketID)
		if err != nil {
			return ChangeEvent{}, fmt.Errorf("invalid ticket id %q: %w", wire.TicketID, err)
		}
		rec.ID = id
	}
	if rec.StationID == "" {
		rec.StationID = wire.StationID
	}
	return ChangeEvent{Kind: wire.Kind, Record: rec}, nil
}

// EncodeChange builds the wire form of a change for publishing.
func EncodeChange(kind string, t Ticket) ([]byte, error) {
	rec, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(event.TicketChangeEvent{
		Kind:       kind,
		TicketID:   t.ID.String(),
		StationID:  t.StationID,
		Record:     rec,
		OccurredAt: t.UpdatedAt,
	})
}

type Listener interface {
	Listen(ctx context.Context, topic string, handler events.HandlerFunc) (pkg.Subscription, error)
}

// NATSFeed reads ticket changes published per station on NATS subjects.
type NATSFeed struct {
	listener Listener
	logger   apt.Logger
}

func NewNATSFeed(listener Listener, logger apt.Logger) *NATSFeed {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &NATSFeed{listener: listener, logger: logger}
}

func (f *NATSFeed) Subscribe(ctx context.Context, filter Filter) (Subscription, error) {
	if f.listener == nil {
		return nil, fmt.Errorf("change feed listener not configured")
	}

	sub := &natsFeedSubscription{
		events: make(chan ChangeEvent, feedBuffer),
		done:   make(chan struct{}),
	}

	topic := event.KitchenStationTopic(filter.StationID)
	if filter.StationID == "" {
		topic = event.KitchenTicketsTopic + ".>"
	}

	registration, err := f.listener.Listen(ctx, topic, func(ctx context.Context, data []byte) error {
		evt, err := DecodeChange(data)
		if err != nil {
			f.logger.Debug("dropping malformed ticket change", "topic", topic, "error", err)
			return nil
		}
		select {
		case sub.events <- evt:
		case <-sub.done:
		case <-ctx.Done():
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sub.registration = registration
	return sub, nil
}

type natsFeedSubscription struct {
	events       chan ChangeEvent
	done         chan struct{}
	once         sync.Once
	registration pkg.Subscription
}

func (s *natsFeedSubscription) Events() <-chan ChangeEvent {
	return s.events
}

func (s *natsFeedSubscription) Unsubscribe() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if s.registration != nil {
			err = s.registration.Unsubscribe()
		}
	})
	return err
}
