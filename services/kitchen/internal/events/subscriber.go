package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/pos/pkg/apperr"
	"github.com/appetiteclub/pos/pkg/enums/station"
	"github.com/appetiteclub/pos/pkg/event"
	"github.com/appetiteclub/pos/services/kitchen/internal/kitchen"
	"github.com/google/uuid"
)

type TicketCreator interface {
	CreateTicket(ctx context.Context, t *kitchen.Ticket) (*kitchen.Ticket, error)
}

// OrderConfirmedSubscriber splits confirmed orders into one ticket per station.
type OrderConfirmedSubscriber struct {
	subscriber events.Subscriber
	tickets    TicketCreator
	logger     apt.Logger
}

func NewOrderConfirmedSubscriber(subscriber events.Subscriber, tickets TicketCreator, logger apt.Logger) *OrderConfirmedSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &OrderConfirmedSubscriber{
		subscriber: subscriber,
		tickets:    tickets,
		logger:     logger,
	}
}

func (s *OrderConfirmedSubscriber) Start(ctx context.Context) error {
	s.logger.Info("Starting OrderConfirmedSubscriber", "topic", event.OrdersConfirmedTopic)

	if err := s.subscriber.Subscribe(ctx, event.OrdersConfirmedTopic, s.handleEvent); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", event.OrdersConfirmedTopic, err)
	}
	return nil
}

func (s *OrderConfirmedSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var evt event.OrderConfirmedEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.logger.Errorf("Failed to unmarshal event: %v", err)
		return nil
	}
	if evt.EventType != event.EventOrderConfirmed {
		s.logger.Debug("ignoring order event", "event_type", evt.EventType)
		return nil
	}

	tickets, err := TicketsForOrder(evt)
	if err != nil {
		s.logger.Errorf("Invalid confirmed order: %v", err)
		return nil
	}

	for _, t := range tickets {
		created, err := s.tickets.CreateTicket(ctx, t)
		if err != nil {
			if apperr.IsConflict(err) {
				s.logger.Debug("ticket already exists", "order_id", evt.OrderID, "station_id", t.StationID)
				continue
			}
			return err
		}
		s.logger.Info("ticket created", "ticket_id", created.ID, "order_id", evt.OrderID, "station_id", created.StationID)
	}
	return nil
}

// TicketsForOrder groups the lines of an order by station, keeping the order in
// which stations first appear.
func TicketsForOrder(evt event.OrderConfirmedEvent) ([]*kitchen.Ticket, error) {
	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		return nil, fmt.Errorf("invalid order_id %q: %w", evt.OrderID, err)
	}

	var ref *kitchen.TableRef
	if evt.TableID != "" {
		tableID, err := uuid.Parse(evt.TableID)
		if err != nil {
			return nil, fmt.Errorf("invalid table_id %q: %w", evt.TableID, err)
		}
		ref = &kitchen.TableRef{ID: tableID, Number: evt.TableNumber}
	}

	var priority *string
	if evt.Priority != "" {
		p := evt.Priority
		priority = &p
	}

	byStation := make(map[string]*kitchen.Ticket)
	var out []*kitchen.Ticket
	for _, line := range evt.Items {
		if line.Quantity <= 0 {
			continue
		}
		stationID := line.StationID
		if stationID == "" {
			stationID = station.ForCategory(line.Category).Code()
		}

		t, ok := byStation[stationID]
		if !ok {
			t = &kitchen.Ticket{
				OrderID:   orderID,
				StationID: stationID,
				Priority:  priority,
				Order:     &kitchen.OrderRef{ID: orderID, Type: evt.OrderType, Number: evt.OrderNumber},
				Table:     ref,
			}
			byStation[stationID] = t
			out = append(out, t)
		}
		t.Items = append(t.Items, kitchen.LineItem{Name: line.Name, Quantity: line.Quantity, Category: line.Category})
	}
	return out, nil
}
