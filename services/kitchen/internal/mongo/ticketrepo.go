package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/pos/pkg/enums/ticketstatus"
	"github.com/appetiteclub/pos/services/kitchen/internal/kitchen"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ticketsCollection = "tickets"

type TicketRepo struct {
	base       *BaseRepo
	collection *mongo.Collection
	logger     apt.Logger
}

func NewTicketRepo(base *BaseRepo, logger apt.Logger) *TicketRepo {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &TicketRepo{base: base, logger: logger}
}

// Start binds the collection and ensures its indexes. The base repo must be started first.
func (r *TicketRepo) Start(ctx context.Context) error {
	db := r.base.GetDatabase()
	if db == nil {
		return fmt.Errorf("mongo database not connected")
	}
	r.collection = db.Collection(ticketsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}, {Key: "station_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("order_station_unique"),
		},
		{
			Keys: bson.D{{Key: "station_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
		},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("cannot create ticket indexes: %w", err)
	}

	r.logger.Infof("Ticket collection ready: %s", ticketsCollection)
	return nil
}

func (r *TicketRepo) Collection() *mongo.Collection {
	return r.collection
}

func (r *TicketRepo) Create(ctx context.Context, t *kitchen.Ticket) error {
	if _, err := r.collection.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return kitchen.ErrDuplicateTicket
		}
		return fmt.Errorf("cannot insert ticket: %w", err)
	}
	return nil
}

func (r *TicketRepo) FindByID(ctx context.Context, id kitchen.TicketID) (*kitchen.Ticket, error) {
	var ticket kitchen.Ticket
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, kitchen.ErrTicketNotFound
		}
		return nil, fmt.Errorf("cannot find ticket: %w", err)
	}
	return &ticket, nil
}

func (r *TicketRepo) List(ctx context.Context, filter kitchen.TicketFilter) ([]kitchen.Ticket, error) {
	query := bson.M{}
	if filter.StationID != "" {
		query["station_id"] = filter.StationID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.OrderID != nil {
		query["order_id"] = *filter.OrderID
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}

	return r.find(ctx, query, opts)
}

func (r *TicketRepo) ListActive(ctx context.Context, stationID string) ([]kitchen.Ticket, error) {
	query := bson.M{
		"station_id": stationID,
		"status": bson.M{"$in": bson.A{
			ticketstatus.Statuses.Pending.Name,
			ticketstatus.Statuses.Preparing.Name,
		}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.find(ctx, query, opts)
}

func (r *TicketRepo) UpdateStatus(ctx context.Context, id kitchen.TicketID, from, to string, ts kitchen.StatusTimestamps) error {
	set := bson.M{
		"status":     to,
		"updated_at": ts.UpdatedAt,
	}
	if ts.AcceptedAt != nil {
		set["accepted_at"] = *ts.AcceptedAt
	}
	if ts.CompletedAt != nil {
		set["completed_at"] = *ts.CompletedAt
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("cannot update ticket status: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot check ticket: %w", err)
	}
	if count == 0 {
		return kitchen.ErrTicketNotFound
	}
	return kitchen.ErrStaleStatus
}

func (r *TicketRepo) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]kitchen.Ticket, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find tickets: %w", err)
	}
	defer cursor.Close(ctx)

	tickets := []kitchen.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("cannot decode tickets: %w", err)
	}
	return tickets, nil
}
