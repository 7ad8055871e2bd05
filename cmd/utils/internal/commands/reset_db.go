package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var kitchenCollections = []string{"tickets", "timing_rules", "_seeds"}

func NewResetKitchenCommand(env *Env) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset-kitchen",
		Short: "Drop kitchen tickets, timing rules and seed history (USE WITH CAUTION)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to drop kitchen data without --yes")
			}
			return ResetKitchen(cmd.Context(), env.Config, env.Logger)
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm dropping kitchen data")
	return cmd
}

// ResetKitchen drops the kitchen collections. Collections that do not exist
// are skipped.
func ResetKitchen(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	mongoURL := config.GetStringOrDef("db.mongo.url", "mongodb://localhost:27017")
	dbName := config.GetStringOrDef("db.mongo.name", "pos_kitchen")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return fmt.Errorf("connect to mongodb: %w", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	existing, err := db.ListCollectionNames(ctx, bson.M{"name": bson.M{"$in": kitchenCollections}})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	for _, name := range existing {
		if err := db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("drop %s: %w", name, err)
		}
		logger.Info("Collection dropped", "database", dbName, "collection", name)
	}
	logger.Info("Kitchen data reset", "dropped", len(existing))
	return nil
}
