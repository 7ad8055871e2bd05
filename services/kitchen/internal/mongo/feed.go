package mongo

import (
	"context"
	"fmt"
	"sync"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/pos/pkg/event"
	"github.com/appetiteclub/pos/services/kitchen/internal/kitchen"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const changeBuffer = 64

// TicketFeed reads row-level ticket changes from a Mongo change stream.
// Requires a replica set.
type TicketFeed struct {
	tickets *TicketRepo
	logger  apt.Logger
}

func NewTicketFeed(tickets *TicketRepo, logger apt.Logger) *TicketFeed {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &TicketFeed{tickets: tickets, logger: logger}
}

type changeDocument struct {
	OperationType string          `bson:"operationType"`
	FullDocument  *kitchen.Ticket `bson:"fullDocument"`
	DocumentKey   struct {
		ID kitchen.TicketID `bson:"_id"`
	} `bson:"documentKey"`
}

// ChangePipeline scopes a change stream to one station. Deletes carry no
// document, so they always pass and the reducer ignores unknown ids.
func ChangePipeline(stationID string) mongo.Pipeline {
	ops := bson.A{"insert", "update", "replace", "delete"}
	if stationID == "" {
		return mongo.Pipeline{{{Key: "$match", Value: bson.M{"operationType": bson.M{"$in": ops}}}}}
	}
	return mongo.Pipeline{{{Key: "$match", Value: bson.M{
		"operationType": bson.M{"$in": ops},
		"$or": bson.A{
			bson.M{"fullDocument.station_id": stationID},
			bson.M{"operationType": "delete"},
		},
	}}}}
}

func (f *TicketFeed) Subscribe(ctx context.Context, filter kitchen.Filter) (kitchen.Subscription, error) {
	coll := f.tickets.Collection()
	if coll == nil {
		return nil, fmt.Errorf("ticket collection not started")
	}

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := coll.Watch(ctx, ChangePipeline(filter.StationID), opts)
	if err != nil {
		return nil, fmt.Errorf("cannot watch tickets: %w", err)
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	sub := &changeSubscription{
		events: make(chan kitchen.ChangeEvent, changeBuffer),
		stream: stream,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go sub.pump(watchCtx, filter.StationID, f.logger)
	return sub, nil
}

type changeSubscription struct {
	events chan kitchen.ChangeEvent
	stream *mongo.ChangeStream
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *changeSubscription) pump(ctx context.Context, stationID string, logger apt.Logger) {
	defer close(s.done)
	defer close(s.events)

	for s.stream.Next(ctx) {
		var doc changeDocument
		if err := s.stream.Decode(&doc); err != nil {
			logger.Error("cannot decode ticket change", "error", err)
			continue
		}

		evt, ok := toChangeEvent(doc)
		if !ok {
			continue
		}
		if stationID != "" && evt.Kind != event.ChangeDelete && evt.Record.StationID != stationID {
			continue
		}

		select {
		case s.events <- evt:
		case <-ctx.Done():
			return
		}
	}
	if err := s.stream.Err(); err != nil && ctx.Err() == nil {
		logger.Error("ticket change stream ended", "error", err)
	}
}

func toChangeEvent(doc changeDocument) (kitchen.ChangeEvent, bool) {
	switch doc.OperationType {
	case "insert":
		if doc.FullDocument == nil {
			return kitchen.ChangeEvent{}, false
		}
		return kitchen.ChangeEvent{Kind: event.ChangeInsert, Record: *doc.FullDocument}, true
	case "update", "replace":
		if doc.FullDocument == nil {
			return kitchen.ChangeEvent{}, false
		}
		return kitchen.ChangeEvent{Kind: event.ChangeUpdate, Record: *doc.FullDocument}, true
	case "delete":
		return kitchen.ChangeEvent{Kind: event.ChangeDelete, Record: kitchen.Ticket{ID: doc.DocumentKey.ID}}, true
	default:
		return kitchen.ChangeEvent{}, false
	}
}

func (s *changeSubscription) Events() <-chan kitchen.ChangeEvent {
	return s.events
}

func (s *changeSubscription) Unsubscribe() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		<-s.done
		err = s.stream.Close(context.Background())
	})
	return err
}
