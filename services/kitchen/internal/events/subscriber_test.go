package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/pos/pkg/apperr"
	"github.com/appetiteclub/pos/pkg/event"
	"github.com/appetiteclub/pos/services/kitchen/internal/kitchen"
	"github.com/google/uuid"
)

// MockSubscriber implements events.Subscriber for testing
type MockSubscriber struct {
	Topic         string
	Handler       events.HandlerFunc
	SubscribeFunc func(ctx context.Context, topic string, handler events.HandlerFunc) error
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, topic, handler)
	}
	m.Topic = topic
	m.Handler = handler
	return nil
}

// MockTicketCreator records created tickets.
type MockTicketCreator struct {
	Created          []*kitchen.Ticket
	CreateTicketFunc func(ctx context.Context, t *kitchen.Ticket) (*kitchen.Ticket, error)
}

func (m *MockTicketCreator) CreateTicket(ctx context.Context, t *kitchen.Ticket) (*kitchen.Ticket, error) {
	if m.CreateTicketFunc != nil {
		return m.CreateTicketFunc(ctx, t)
	}
	t.EnsureID()
	m.Created = append(m.Created, t)
	return t, nil
}

func confirmedOrder(items ...event.OrderLineEvent) []byte {
	data, _ := json.Marshal(event.OrderConfirmedEvent{
		EventType:   event.EventOrderConfirmed,
		OccurredAt:  time.Now().UTC(),
		OrderID:     uuid.NewString(),
		OrderType:   "dine_in",
		OrderNumber: "A-012",
		TableID:     uuid.NewString(),
		TableNumber: "7",
		Items:       items,
	})
	return data
}

func TestOrderConfirmedSubscriberStart(t *testing.T) {
	tests := []struct {
		name      string
		subErr    error
		expectErr bool
	}{
		{name: "success", subErr: nil, expectErr: false},
		{name: "subscribeError", subErr: errors.New("nats down"), expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &MockSubscriber{}
			if tt.subErr != nil {
				sub.SubscribeFunc = func(ctx context.Context, topic string, handler events.HandlerFunc) error {
					return tt.subErr
				}
			}
			s := NewOrderConfirmedSubscriber(sub, &MockTicketCreator{}, nil)

			err := s.Start(context.Background())
			if (err != nil) != tt.expectErr {
				t.Fatalf("Start() error = %v, expectErr %v", err, tt.expectErr)
			}
			if !tt.expectErr && sub.Topic != event.OrdersConfirmedTopic {
				t.Errorf("topic = %q", sub.Topic)
			}
		})
	}
}

func TestHandleOrderConfirmed(t *testing.T) {
	creator := &MockTicketCreator{}
	s := NewOrderConfirmedSubscriber(&MockSubscriber{}, creator, nil)

	msg := confirmedOrder(
		event.OrderLineEvent{Name: "Nasi goreng", Quantity: 2, Category: "mains"},
		event.OrderLineEvent{Name: "Es teh", Quantity: 1, Category: "drinks"},
		event.OrderLineEvent{Name: "Sate", Quantity: 3, Category: "mains", StationID: "grill"},
		event.OrderLineEvent{Name: "Mie ayam", Quantity: 1, Category: "mains"},
	)
	if err := s.handleEvent(context.Background(), msg); err != nil {
		t.Fatalf("handleEvent() error = %v", err)
	}

	if len(creator.Created) != 3 {
		t.Fatalf("tickets created = %d, want 3", len(creator.Created))
	}
	first := creator.Created[0]
	if len(first.Items) != 2 {
		t.Errorf("first station items = %d, want 2", len(first.Items))
	}
	if creator.Created[2].StationID != "grill" {
		t.Errorf("explicit station = %q, want grill", creator.Created[2].StationID)
	}
	if first.Table == nil || first.Table.Number != "7" || first.Order.Number != "A-012" {
		t.Errorf("ticket refs = %+v %+v", first.Table, first.Order)
	}
}

func TestHandleOrderConfirmedIgnoresDuplicates(t *testing.T) {
	creator := &MockTicketCreator{
		CreateTicketFunc: func(ctx context.Context, t *kitchen.Ticket) (*kitchen.Ticket, error) {
			return nil, apperr.New(apperr.Conflict, "DuplicateTicket", "ticket already exists")
		},
	}
	s := NewOrderConfirmedSubscriber(&MockSubscriber{}, creator, nil)

	msg := confirmedOrder(event.OrderLineEvent{Name: "Sate", Quantity: 1, Category: "mains"})
	if err := s.handleEvent(context.Background(), msg); err != nil {
		t.Errorf("handleEvent() error = %v, want nil on redelivery", err)
	}
}

func TestHandleOrderConfirmedStoreError(t *testing.T) {
	creator := &MockTicketCreator{
		CreateTicketFunc: func(ctx context.Context, t *kitchen.Ticket) (*kitchen.Ticket, error) {
			return nil, apperr.New(apperr.Internal, "", "boom")
		},
	}
	s := NewOrderConfirmedSubscriber(&MockSubscriber{}, creator, nil)

	msg := confirmedOrder(event.OrderLineEvent{Name: "Sate", Quantity: 1, Category: "mains"})
	if err := s.handleEvent(context.Background(), msg); err == nil {
		t.Error("handleEvent() expected error so the message is retried")
	}
}

func TestHandleOrderConfirmedDropsBadMessages(t *testing.T) {
	tests := []struct {
		name string
		msg  []byte
	}{
		{name: "notJSON", msg: []byte("{")},
		{name: "otherEvent", msg: []byte(`{"event_type":"order.cancelled"}`)},
		{name: "badOrderID", msg: []byte(`{"event_type":"order.confirmed","order_id":"x","items":[{"name":"a","quantity":1}]}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &MockTicketCreator{}
			s := NewOrderConfirmedSubscriber(&MockSubscriber{}, creator, nil)
			if err := s.handleEvent(context.Background(), tt.msg); err != nil {
				t.Errorf("handleEvent() error = %v", err)
			}
			if len(creator.Created) != 0 {
				t.Errorf("created %d tickets, want 0", len(creator.Created))
			}
		})
	}
}
