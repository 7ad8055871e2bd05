package kitchen

import (
	"sync"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// InvalidationHub signals open board sessions that their snapshot is stale.
type InvalidationHub struct {
	logger apt.Logger

	mu          sync.RWMutex
	subscribers map[string]invalidationSubscriber
}

type invalidationSubscriber struct {
	stationID string
	ch        chan struct{}
}

func NewInvalidationHub(logger apt.Logger) *InvalidationHub {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &InvalidationHub{
		logger:      logger,
		subscribers: make(map[string]invalidationSubscriber),
	}
}

// Subscribe registers interest in one station. An empty station matches all.
func (h *InvalidationHub) Subscribe(stationID string) (string, <-chan struct{}) {
	id := uuid.NewString()
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	h.subscribers[id] = invalidationSubscriber{stationID: stationID, ch: ch}
	h.mu.Unlock()

	return id, ch
}

func (h *InvalidationHub) Unsubscribe(id string) {
	h.mu.Lock()
	delete(h.subscribers, id)
	h.mu.Unlock()
}

// Invalidate never blocks. A subscriber with a pending signal keeps a single one.
func (h *InvalidationHub) Invalidate(stationID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	notified := 0
	for _, sub := range h.subscribers {
		if sub.stationID != "" && sub.stationID != stationID {
			continue
		}
		select {
		case sub.ch <- struct{}{}:
			notified++
		default:
		}
	}
	h.logger.Debug("board invalidated", "station_id", stationID, "notified", notified)
}

func (h *InvalidationHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
