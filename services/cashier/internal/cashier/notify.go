package cashier

import (
	"context"
	"encoding/json"

	"github.com/appetiteclub/pos/pkg/event"
)

func (s *Service) publish(ctx context.Context, topic string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("cannot encode event", "topic", topic, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, topic, data); err != nil {
		s.logger.Error("cannot publish event", "topic", topic, "error", err)
	}
}

func (s *Service) notifySession(ctx context.Context, eventType string, session *Session) {
	s.publish(ctx, event.CashierNotificationsTopic, event.SessionEvent{
		EventType:      eventType,
		OccurredAt:     s.clock.Now().UTC(),
		SessionID:      session.ID.String(),
		CashierID:      session.CashierID.String(),
		TerminalID:     session.TerminalID.String(),
		BranchID:       session.BranchID.String(),
		OpeningAmount:  session.OpeningAmount,
		ExpectedAmount: session.ExpectedAmount,
		ClosingAmount:  session.ClosingAmount,
		Difference:     session.Difference,
	})
}

func (s *Service) notifyPayment(ctx context.Context, eventType string, p Payment, change int64) {
	evt := event.PaymentEvent{
		EventType:  eventType,
		OccurredAt: s.clock.Now().UTC(),
		PaymentID:  p.ID.String(),
		OrderID:    p.OrderID.String(),
		Method:     p.Method,
		Amount:     p.Amount,
		Tip:        p.Tip,
		Change:     change,
		RequestID:  p.IdempotencyKey,
	}
	if p.SessionID != nil {
		evt.SessionID = p.SessionID.String()
	}
	s.publish(ctx, event.CashierNotificationsTopic, evt)
}

func (s *Service) notifyTableReleased(ctx context.Context, o *Order) {
	table := tableToRelease(o)
	if table == nil {
		return
	}
	s.publish(ctx, event.TableStatusTopic, event.TableStatusEvent{
		EventType:   event.EventTableReleased,
		OccurredAt:  s.clock.Now().UTC(),
		TableID:     table.String(),
		TableNumber: o.TableNumber,
		OrderID:     o.ID.String(),
		Status:      TableAvailable,
		Previous:    TableOccupied,
		Reason:      event.ReasonOrderSettled,
	})
}

func (s *Service) notifyOrderConfirmed(ctx context.Context, o *Order) {
	evt := event.OrderConfirmedEvent{
		EventType:   event.EventOrderConfirmed,
		OccurredAt:  s.clock.Now().UTC(),
		OrderID:     o.ID.String(),
		OrderType:   o.Type,
		OrderNumber: o.Number,
		TableNumber: o.TableNumber,
		Priority:    o.Priority,
	}
	if o.TableID != nil {
		evt.TableID = o.TableID.String()
	}
	for _, item := range o.Items {
		evt.Items = append(evt.Items, event.OrderLineEvent{
			Name:      item.Name,
			Quantity:  item.Quantity,
			Category:  item.Category,
			StationID: item.StationID,
		})
	}
	s.publish(ctx, event.OrdersConfirmedTopic, evt)
}
