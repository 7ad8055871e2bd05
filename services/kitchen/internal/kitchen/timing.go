package kitchen

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"github.com/appetiteclub/pos/pkg/validate"
	"go.mongodb.org/mongo-driver/mongo"
)

const timingSeedApplication = "kitchen_timing"

// TimingSeeds builds one seed per station so a changed file version is applied once.
func TimingSeeds(svc *Service, f *validate.TimingFile) []seed.Seed {
	seeds := make([]seed.Seed, 0, len(f.Stations))
	for _, stationID := range f.StationIDs() {
		stationID := stationID
		rules := f.Stations[stationID]
		seeds = append(seeds, seed.Seed{
			ID:          fmt.Sprintf("timing_rules_%s_v%d", stationID, f.Version),
			Description: fmt.Sprintf("Timing rules for station %s", stationID),
			Run: func(ctx context.Context) error {
				_, err := svc.SetTimingRules(ctx, stationID, rules)
				return err
			},
		})
	}
	return seeds
}

// ApplyTimingSeeds loads rules into the store, tracking applied seeds in Mongo.
func ApplyTimingSeeds(ctx context.Context, db *mongo.Database, svc *Service, f *validate.TimingFile, logger apt.Logger) error {
	if db == nil {
		return fmt.Errorf("database is required for timing seeding")
	}

	seeds := TimingSeeds(svc, f)
	if len(seeds) == 0 {
		logger.Info("No timing rule seeds to apply")
		return nil
	}

	tracker := seed.NewMongoTracker(db)
	if err := seed.Apply(ctx, tracker, seeds, timingSeedApplication); err != nil {
		return fmt.Errorf("timing seed failed: %w", err)
	}

	logger.Info("Timing rules seeded", "stations", len(seeds))
	return nil
}
