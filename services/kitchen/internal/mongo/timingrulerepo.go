package mongo

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/pos/services/kitchen/internal/kitchen"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const timingRulesCollection = "timing_rules"

type TimingRuleRepo struct {
	base       *BaseRepo
	collection *mongo.Collection
	logger     apt.Logger
}

func NewTimingRuleRepo(base *BaseRepo, logger apt.Logger) *TimingRuleRepo {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &TimingRuleRepo{base: base, logger: logger}
}

func (r *TimingRuleRepo) Start(ctx context.Context) error {
	db := r.base.GetDatabase()
	if db == nil {
		return fmt.Errorf("mongo database not connected")
	}
	r.collection = db.Collection(timingRulesCollection)

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "station_id", Value: 1}, {Key: "category", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("cannot create timing rule index: %w", err)
	}
	return nil
}

func (r *TimingRuleRepo) ListByStation(ctx context.Context, stationID string) ([]kitchen.TimingRule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"station_id": stationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find timing rules: %w", err)
	}
	defer cursor.Close(ctx)

	rules := []kitchen.TimingRule{}
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("cannot decode timing rules: %w", err)
	}
	return rules, nil
}

func (r *TimingRuleRepo) Upsert(ctx context.Context, rule kitchen.TimingRule) error {
	filter := bson.M{"station_id": rule.StationID, "category": rule.Category}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, filter, rule, opts); err != nil {
		return fmt.Errorf("cannot upsert timing rule: %w", err)
	}
	return nil
}
