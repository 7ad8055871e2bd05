package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/appetiteclub/apt"
	aptevents "github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/middleware"
	"github.com/appetiteclub/pos/pkg"
	"github.com/appetiteclub/pos/pkg/clock"
	"github.com/appetiteclub/pos/pkg/event"
	"github.com/appetiteclub/pos/pkg/validate"
	"github.com/appetiteclub/pos/services/kitchen/internal/events"
	"github.com/appetiteclub/pos/services/kitchen/internal/kitchen"
	"github.com/appetiteclub/pos/services/kitchen/internal/mongo"
)

const (
	AppName    = "kitchen"
	AppVersion = "0.1.0"

	FeedSourceNATS  = "nats"
	FeedSourceMongo = "mongo"
)

// App encapsulates the kitchen service application
type App struct {
	config *apt.Config
	logger apt.Logger
	micro  *apt.Micro
}

func New(config *apt.Config, logger apt.Logger) (*App, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &App{
		config: config,
		logger: logger,
	}, nil
}

// EscalationInterval reads kitchen.escalation.interval, falling back to the default.
func EscalationInterval(config *apt.Config) time.Duration {
	raw := config.GetStringOrDef("kitchen.escalation.interval", "")
	if raw == "" {
		return kitchen.DefaultEscalationInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return kitchen.DefaultEscalationInterval
	}
	return d
}

// Initialize sets up all dependencies and components
func (a *App) Initialize(ctx context.Context) error {
	baseRepo := mongo.NewBaseRepo(a.config, a.logger)
	if err := baseRepo.Start(ctx); err != nil {
		return err
	}

	ticketRepo := mongo.NewTicketRepo(baseRepo, a.logger)
	if err := ticketRepo.Start(ctx); err != nil {
		return err
	}
	ruleRepo := mongo.NewTimingRuleRepo(baseRepo, a.logger)
	if err := ruleRepo.Start(ctx); err != nil {
		return err
	}

	natsURL := a.config.GetStringOrDef("nats.url", "nats://localhost:4222")

	var stream *pkg.NATSStream
	var publisher aptevents.Publisher
	if a.config.GetStringOrDef("nats.stream.enabled", "false") == "true" {
		var err error
		stream, err = pkg.NewNATSStream(ctx, pkg.NATSStreamConfig{
			URL:      natsURL,
			Name:     "KITCHEN_TICKETS",
			Subjects: []string{event.KitchenTicketsTopic + ".>"},
			MaxAge:   24 * time.Hour,
		})
		if err != nil {
			return err
		}
		a.logger.Info("NATS stream initialized for ticket changes")
		publisher = stream
	} else {
		natsPub, err := pkg.NewNATSPublisher(natsURL)
		if err != nil {
			return err
		}
		publisher = natsPub
	}

	subscriber, err := pkg.NewNATSSubscriber(natsURL, a.logger)
	if err != nil {
		return err
	}

	hub := kitchen.NewInvalidationHub(a.logger)
	clk := clock.Real()

	svc := kitchen.NewService(kitchen.ServiceDeps{
		Tickets:   ticketRepo,
		Rules:     ruleRepo,
		Publisher: publisher,
		Hub:       hub,
		Clock:     clk,
	}, a.logger)

	if err := a.seedTimingRules(ctx, baseRepo, svc); err != nil {
		a.logger.Errorf("Timing rule seeding failed (non-fatal): %v", err)
	}

	var feed kitchen.ChangeFeed
	switch source := a.config.GetStringOrDef("kitchen.feed.source", FeedSourceNATS); source {
	case FeedSourceMongo:
		feed = mongo.NewTicketFeed(ticketRepo, a.logger)
	case FeedSourceNATS:
		feed = kitchen.NewNATSFeed(subscriber, a.logger)
	default:
		return fmt.Errorf("unknown kitchen.feed.source %q", source)
	}

	orderSub := events.NewOrderConfirmedSubscriber(subscriber, svc, a.logger)

	handler := kitchen.NewHandler(kitchen.HandlerDeps{
		Service:  svc,
		Feed:     feed,
		Hub:      hub,
		Clock:    clk,
		Interval: EscalationInterval(a.config),
	}, a.config, a.logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      a.logger,
		DisableCORS: true,
	})
	stack = append(stack, middleware.InternalOnly())

	lifecycles := []interface{}{
		orderSub,
		apt.LifecycleHooks{OnStop: func(context.Context) error { return subscriber.Close() }},
		apt.LifecycleHooks{OnStop: baseRepo.Stop},
	}
	if closer, ok := publisher.(interface{ Close() error }); ok {
		lifecycles = append(lifecycles, apt.LifecycleHooks{
			OnStop: func(context.Context) error { return closer.Close() },
		})
	}

	a.micro = apt.NewMicro(
		apt.WithConfig(a.config),
		apt.WithLogger(a.logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", handler),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(AppName),
	)
	return nil
}

func (a *App) seedTimingRules(ctx context.Context, baseRepo *mongo.BaseRepo, svc *kitchen.Service) error {
	if a.config.GetStringOrDef("seed.timing.enabled", "false") != "true" {
		return nil
	}
	path := a.config.GetStringOrDef("kitchen.timing.file", "")
	if path == "" {
		return fmt.Errorf("kitchen.timing.file is required when seed.timing.enabled is true")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open timing rules: %w", err)
	}
	defer f.Close()

	rules, err := validate.LoadTimingFile(f)
	if err != nil {
		return err
	}
	return kitchen.ApplyTimingSeeds(ctx, baseRepo.GetDatabase(), svc, rules, a.logger)
}

// Run starts the application
func (a *App) Run(ctx context.Context) error {
	if a.micro == nil {
		return fmt.Errorf("%s not initialized", AppName)
	}
	a.logger.Infof("Starting %s(%s)", AppName, AppVersion)
	if err := a.micro.Run(ctx); err != nil {
		return err
	}
	a.logger.Infof("%s(%s) stopped", AppName, AppVersion)
	return nil
}
