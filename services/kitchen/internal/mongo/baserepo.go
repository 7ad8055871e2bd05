package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultURL      = "mongodb://localhost:27017"
	defaultDatabase = "pos_kitchen"
	defaultTimeout  = 10 * time.Second
)

// ConnOptions selects the kitchen database.
type ConnOptions struct {
	URL      string
	Database string
	Timeout  time.Duration
}

// ConnOptionsFrom reads db.mongo.url, db.mongo.name and db.mongo.timeout.
func ConnOptionsFrom(config *apt.Config) ConnOptions {
	opts := ConnOptions{URL: defaultURL, Database: defaultDatabase, Timeout: defaultTimeout}
	if config == nil {
		return opts
	}
	opts.URL = config.GetStringOrDef("db.mongo.url", defaultURL)
	opts.Database = config.GetStringOrDef("db.mongo.name", defaultDatabase)
	if d, err := time.ParseDuration(config.GetStringOrDef("db.mongo.timeout", "")); err == nil && d > 0 {
		opts.Timeout = d
	}
	return opts
}

// BaseRepo owns the client shared by the ticket and timing rule repositories.
type BaseRepo struct {
	opts   ConnOptions
	client *mongo.Client
	db     *mongo.Database
	logger apt.Logger
}

func NewBaseRepo(config *apt.Config, logger apt.Logger) *BaseRepo {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &BaseRepo{opts: ConnOptionsFrom(config), logger: logger}
}

func (r *BaseRepo) Start(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(r.opts.URL).
		SetConnectTimeout(r.opts.Timeout).
		SetServerSelectionTimeout(r.opts.Timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("cannot connect to kitchen database: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("cannot reach kitchen database: %w", err)
	}

	r.client = client
	r.db = client.Database(r.opts.Database)
	r.logger.Info("kitchen database connected", "database", r.opts.Database)
	return nil
}

func (r *BaseRepo) Stop(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("cannot disconnect kitchen database: %w", err)
	}
	r.client, r.db = nil, nil
	r.logger.Info("kitchen database disconnected")
	return nil
}

// GetDatabase returns nil until Start succeeds.
func (r *BaseRepo) GetDatabase() *mongo.Database {
	return r.db
}
