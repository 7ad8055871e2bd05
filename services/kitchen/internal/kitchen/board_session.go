package kitchen

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/pos/pkg/clock"
)

type SnapshotSource interface {
	Snapshot(ctx context.Context, stationID string) (Snapshot, error)
}

type BoardSessionDeps struct {
	Source   SnapshotSource
	Feed     ChangeFeed
	Hub      *InvalidationHub
	Clock    clock.Clock
	Interval time.Duration
}

// BoardSession keeps one station board in sync. A single goroutine owns the
// board: it applies feed events one at a time, replaces the board whenever a
// fresh snapshot arrives and recomputes severities on every escalation tick.
type BoardSession struct {
	stationID string
	source    SnapshotSource
	feed      Subscription
	hubID     string
	hub       *InvalidationHub
	clock     clock.Clock
	escalator *Escalator
	logger    apt.Logger

	board Board
	rules RuleSet

	snapshots     chan Snapshot
	refreshes     chan struct{}
	invalidations <-chan struct{}
	ticks         chan time.Time
	updates       chan BoardView

	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
	once   sync.Once
}

// OpenBoardSession fetches the initial snapshot, subscribes to the feed and
// starts the session loop. Close must be called to release both.
func OpenBoardSession(ctx context.Context, stationID string, deps BoardSessionDeps, logger apt.Logger) (*BoardSession, error) {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if deps.Source == nil {
		return nil, fmt.Errorf("board snapshot source not configured")
	}
	if deps.Feed == nil {
		return nil, fmt.Errorf("board change feed not configured")
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}

	snap, err := deps.Source.Snapshot(ctx, stationID)
	if err != nil {
		return nil, err
	}

	sub, err := deps.Feed.Subscribe(ctx, Filter{StationID: stationID})
	if err != nil {
		return nil, fmt.Errorf("cannot subscribe to ticket changes: %w", err)
	}

	s := &BoardSession{
		stationID: stationID,
		source:    deps.Source,
		feed:      sub,
		hub:       deps.Hub,
		clock:     deps.Clock,
		escalator: NewEscalator(deps.Clock, deps.Interval),
		logger:    logger.With("component", "BoardSession", "station_id", stationID),
		board:     Resync(Board{StationID: stationID}, snap.Tickets),
		rules:     snap.Rules,
		snapshots: make(chan Snapshot, 1),
		refreshes: make(chan struct{}, 1),
		ticks:     make(chan time.Time, 1),
		updates:   make(chan BoardView, 1),
		done:      make(chan struct{}),
	}

	if deps.Hub != nil {
		s.hubID, s.invalidations = deps.Hub.Subscribe(stationID)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.publish()

	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		s.escalator.Run(loopCtx, s.ticks)
	}()
	go func() {
		defer s.wg.Done()
		s.refreshLoop(loopCtx)
	}()
	go func() {
		defer s.wg.Done()
		s.run(loopCtx)
	}()

	s.logger.Debug("board session opened", "tickets", len(s.board.Tickets))
	return s, nil
}

// Updates delivers the latest board view. Stale views are replaced, never queued.
func (s *BoardSession) Updates() <-chan BoardView {
	return s.updates
}

func (s *BoardSession) Done() <-chan struct{} {
	return s.done
}

// Close stops the loop and the escalation ticker and unsubscribes the feed.
func (s *BoardSession) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
		if s.hub != nil {
			s.hub.Unsubscribe(s.hubID)
		}
		err = s.feed.Unsubscribe()
		s.logger.Debug("board session closed")
	})
	return err
}

func (s *BoardSession) run(ctx context.Context) {
	defer close(s.done)

	events := s.feed.Events()
	for {
		// A pending snapshot always wins over queued events.
		select {
		case snap := <-s.snapshots:
			s.resync(snap)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return

		case snap := <-s.snapshots:
			s.resync(snap)

		case evt, ok := <-events:
			if !ok {
				s.logger.Info("ticket change feed closed")
				events = nil
				continue
			}
			if next, changed := Apply(s.board, evt); changed {
				s.board = next
				s.publish()
			}

		case <-s.invalidations:
			s.Refresh()

		case <-s.ticks:
			s.publish()
		}
	}
}

// Refresh requests a new snapshot without blocking the session loop. Requests
// made while a fetch is running collapse into one follow-up fetch.
func (s *BoardSession) Refresh() {
	select {
	case s.refreshes <- struct{}{}:
	default:
	}
}

// refreshLoop fetches one snapshot at a time, so snapshots reach the session
// in the order they were read.
func (s *BoardSession) refreshLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.refreshes:
			s.refresh(ctx)
		}
	}
}

func (s *BoardSession) refresh(ctx context.Context) {
	snap, err := s.source.Snapshot(ctx, s.stationID)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("cannot refresh board snapshot", "error", err)
		}
		return
	}
	offerLatest(s.snapshots, snap)
}

func (s *BoardSession) resync(snap Snapshot) {
	s.board = Resync(s.board, snap.Tickets)
	if snap.Rules != nil {
		s.rules = snap.Rules
	}
	s.publish()
}

func (s *BoardSession) publish() {
	offerLatest(s.updates, NewBoardView(s.board, s.rules, s.clock.Now()))
}

// offerLatest replaces whatever is buffered in ch with v.
func offerLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
