package pkg

import (
	"context"
	"errors"

	"github.com/appetiteclub/apt/events"
)

// MultiPublisher delivers every message to all of its publishers and joins
// their errors.
type MultiPublisher struct {
	publishers []events.Publisher
}

func NewMultiPublisher(publishers ...events.Publisher) *MultiPublisher {
	live := make([]events.Publisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			live = append(live, p)
		}
	}
	return &MultiPublisher{publishers: live}
}

func (m *MultiPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, topic, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
