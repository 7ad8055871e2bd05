package app

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	aptevents "github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/middleware"
	"github.com/appetiteclub/pos/pkg"
	"github.com/appetiteclub/pos/pkg/cashierdb"
	"github.com/appetiteclub/pos/pkg/clock"
	"github.com/appetiteclub/pos/services/cashier/internal/cashier"
	"github.com/appetiteclub/pos/services/cashier/internal/postgres"
)

const (
	AppName    = "cashier"
	AppVersion = "0.1.0"

	DefaultAMQPExchange = "cashier.notifications"
)

// App encapsulates the cashier service application
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

// Settings are the mandatory values the service refuses to start without.
type Settings struct {
	PostgresURL   string
	GatewaySecret []byte
}

func LoadSettings(config *apt.Config) (Settings, error) {
	url := config.GetStringOrDef("db.postgres.url", "")
	if url == "" {
		return Settings{}, fmt.Errorf("db.postgres.url is required")
	}
	secret := config.GetStringOrDef("gateway.secret", "")
	if secret == "" {
		return Settings{}, fmt.Errorf("gateway.secret is required")
	}
	return Settings{PostgresURL: url, GatewaySecret: []byte(secret)}, nil
}

// Initialize sets up all dependencies and components
func (a *App) Initialize(ctx context.Context) error {
	settings, err := LoadSettings(a.config)
	if err != nil {
		return err
	}

	db, err := cashierdb.Connect(ctx, settings.PostgresURL)
	if err != nil {
		return err
	}
	if a.config.GetStringOrDef("db.migrate", "true") == "true" {
		if err := cashierdb.Migrate(ctx, db); err != nil {
			db.Close()
			return err
		}
		a.logger.Info("cashier schema applied")
	}
	store := postgres.NewStore(db, a.logger)

	natsURL := a.config.GetStringOrDef("nats.url", "nats://localhost:4222")
	natsPub, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		db.Close()
		return err
	}

	publishers := []aptevents.Publisher{natsPub}
	lifecycles := []interface{}{
		apt.LifecycleHooks{OnStop: func(context.Context) error { db.Close(); return nil }},
		apt.LifecycleHooks{OnStop: func(context.Context) error { return natsPub.Close() }},
	}

	if amqpURL := a.config.GetStringOrDef("amqp.url", ""); amqpURL != "" {
		exchange := a.config.GetStringOrDef("amqp.exchange", DefaultAMQPExchange)
		amqpPub, err := pkg.NewAMQPPublisher(amqpURL, exchange)
		if err != nil {
			a.logger.Errorf("RabbitMQ publisher disabled (non-fatal): %v", err)
		} else {
			a.logger.Info("RabbitMQ publisher initialized", "exchange", exchange)
			publishers = append(publishers, amqpPub)
			lifecycles = append(lifecycles, apt.LifecycleHooks{
				OnStop: func(context.Context) error { return amqpPub.Close() },
			})
		}
	}

	svc := cashier.NewService(cashier.ServiceDeps{
		Store:     store,
		Publisher: pkg.NewMultiPublisher(publishers...),
		Clock:     clock.Real(),
	}, a.logger)

	handler := cashier.NewHandler(cashier.HandlerDeps{
		Service:       svc,
		GatewaySecret: settings.GatewaySecret,
	}, a.config, a.logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      a.logger,
		DisableCORS: true,
	})

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
