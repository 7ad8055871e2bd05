package pkg

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const defaultStreamMaxAge = 24 * time.Hour

// NATSStream publishes ticket changes into a JetStream stream so consumers that
// come up late can still read the recent history.
type NATSStream struct {
	conn *nats.Conn
	js   jetstream.JetStream
	name string
}

type NATSStreamConfig struct {
	URL      string
	Name     string
	Subjects []string
	// MaxAge defaults to 24h.
	MaxAge time.Duration
	// MaxMsgs of zero keeps every message within MaxAge.
	MaxMsgs int64
}

// JetStreamConfig turns cfg into the stream definition sent to the server.
func (cfg NATSStreamConfig) JetStreamConfig() (jetstream.StreamConfig, error) {
	if cfg.Name == "" {
		return jetstream.StreamConfig{}, fmt.Errorf("stream name is required")
	}
	if len(cfg.Subjects) == 0 {
		return jetstream.StreamConfig{}, fmt.Errorf("stream %s needs at least one subject", cfg.Name)
	}

	sc := jetstream.StreamConfig{
		Name:      cfg.Name,
		Subjects:  cfg.Subjects,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    cfg.MaxAge,
	}
	if sc.MaxAge <= 0 {
		sc.MaxAge = defaultStreamMaxAge
	}
	if cfg.MaxMsgs > 0 {
		sc.MaxMsgs = cfg.MaxMsgs
	}
	return sc, nil
}

// NewNATSStream connects and creates or updates the stream.
func NewNATSStream(ctx context.Context, cfg NATSStreamConfig) (*NATSStream, error) {
	sc, err := cfg.JetStreamConfig()
	if err != nil {
		return nil, err
	}

	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := js.CreateOrUpdateStream(ctx, sc); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create/update stream %s: %w", cfg.Name, err)
	}

	return &NATSStream{conn: conn, js: js, name: cfg.Name}, nil
}

// Publish waits for the stream to acknowledge the message.
func (s *NATSStream) Publish(ctx context.Context, topic string, msg []byte) error {
	if _, err := s.js.Publish(ctx, topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s to stream %s: %w", topic, s.name, err)
	}
	return nil
}

func (s *NATSStream) Close() error {
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
	}
	return nil
}
