package kitchen

import (
	"context"
	"sort"
	"sync"

	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/pos/pkg"
	"github.com/appetiteclub/pos/pkg/enums/ticketstatus"
)

// MockTicketRepository is a test mock for TicketRepository
type MockTicketRepository struct {
	mu      sync.Mutex
	tickets map[TicketID]Ticket

	CreateFunc       func(ctx context.Context, t *Ticket) error
	FindByIDFunc     func(ctx context.Context, id TicketID) (*Ticket, error)
	ListActiveFunc   func(ctx context.Context, stationID string) ([]Ticket, error)
	UpdateStatusFunc func(ctx context.Context, id TicketID, from, to string, ts StatusTimestamps) error

	listActiveCalls int
}

func NewMockTicketRepository(tickets ...Ticket) *MockTicketRepository {
	m := &MockTicketRepository{tickets: make(map[TicketID]Ticket)}
	for _, t := range tickets {
		m.tickets[t.ID] = t
	}
	return m
}

func (m *MockTicketRepository) Create(ctx context.Context, t *Ticket) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tickets {
		if existing.OrderID == t.OrderID && existing.StationID == t.StationID {
			return ErrDuplicateTicket
		}
	}
	m.tickets[t.ID] = *t
	return nil
}

func (m *MockTicketRepository) FindByID(ctx context.Context, id TicketID) (*Ticket, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return &t, nil
}

func (m *MockTicketRepository) List(ctx context.Context, filter TicketFilter) ([]Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		if filter.StationID != "" && t.StationID != filter.StationID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.OrderID != nil && t.OrderID != *filter.OrderID {
			continue
		}
		out = append(out, t)
	}
	sortByCreated(out)
	return out, nil
}

func (m *MockTicketRepository) ListActive(ctx context.Context, stationID string) ([]Ticket, error) {
	m.mu.Lock()
	m.listActiveCalls++
	m.mu.Unlock()
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, stationID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		if t.StationID == stationID && ticketstatus.IsActive(t.Status) {
			out = append(out, t)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (m *MockTicketRepository) UpdateStatus(ctx context.Context, id TicketID, from, to string, ts StatusTimestamps) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, from, to, ts)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return ErrTicketNotFound
	}
	if t.Status != from {
		return ErrStaleStatus
	}
	t.Status = to
	t.UpdatedAt = ts.UpdatedAt
	if ts.AcceptedAt != nil {
		t.AcceptedAt = ts.AcceptedAt
	}
	if ts.CompletedAt != nil {
		t.CompletedAt = ts.CompletedAt
	}
	m.tickets[id] = t
	return nil
}

func (m *MockTicketRepository) Put(t Ticket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[t.ID] = t
}

func (m *MockTicketRepository) Stored(id TicketID) Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tickets[id]
}

func (m *MockTicketRepository) ListActiveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listActiveCalls
}

func sortByCreated(ts []Ticket) {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].CreatedAt.Before(ts[j].CreatedAt)
	})
}

// MockTimingRuleRepository is a test mock for TimingRuleRepository
type MockTimingRuleRepository struct {
	mu    sync.Mutex
	rules map[string]map[string]TimingRule

	UpsertFunc func(ctx context.Context, rule TimingRule) error
}

func NewMockTimingRuleRepository(rules ...TimingRule) *MockTimingRuleRepository {
	m := &MockTimingRuleRepository{rules: make(map[string]map[string]TimingRule)}
	for _, r := range rules {
		_ = m.Upsert(context.Background(), r)
	}
	return m
}

func (m *MockTimingRuleRepository) ListByStation(ctx context.Context, stationID string) ([]TimingRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TimingRule, 0, len(m.rules[stationID]))
	for _, r := range m.rules[stationID] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (m *MockTimingRuleRepository) Upsert(ctx context.Context, rule TimingRule) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, rule)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rules[rule.StationID] == nil {
		m.rules[rule.StationID] = make(map[string]TimingRule)
	}
	m.rules[rule.StationID][rule.Category] = rule
	return nil
}

// MockPublisher is a test mock for events.Publisher
type MockPublisher struct {
	mu          sync.Mutex
	published   []PublishedMessage
	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

type PublishedMessage struct {
	Topic string
	Data  []byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, PublishedMessage{Topic: topic, Data: msg})
	return nil
}

func (m *MockPublisher) Messages() []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishedMessage(nil), m.published...)
}

// MockFeed is a test ChangeFeed whose events are pushed by the test.
type MockFeed struct {
	mu            sync.Mutex
	subs          []*MockSubscription
	SubscribeFunc func(ctx context.Context, filter Filter) (Subscription, error)
}

func NewMockFeed() *MockFeed {
	return &MockFeed{}
}

func (f *MockFeed) Subscribe(ctx context.Context, filter Filter) (Subscription, error) {
	if f.SubscribeFunc != nil {
		return f.SubscribeFunc(ctx, filter)
	}
	sub := &MockSubscription{ch: make(chan ChangeEvent, 16), Filter: filter}
	f.mu.Lock()
	f.subs = append(f.subs, sub)
	f.mu.Unlock()
	return sub, nil
}

func (f *MockFeed) Last() *MockSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) == 0 {
		return nil
	}
	return f.subs[len(f.subs)-1]
}

type MockSubscription struct {
	mu           sync.Mutex
	ch           chan ChangeEvent
	Filter       Filter
	unsubscribed bool
}

func (s *MockSubscription) Events() <-chan ChangeEvent {
	return s.ch
}

func (s *MockSubscription) Push(evt ChangeEvent) {
	s.ch <- evt
}

func (s *MockSubscription) Unsubscribe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribed = true
	return nil
}

func (s *MockSubscription) Unsubscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsubscribed
}

// MockListener captures the handler registered by NATSFeed.
type MockListener struct {
	Topic        string
	Handler      events.HandlerFunc
	Registration *MockRegistration
	ListenFunc   func(ctx context.Context, topic string, handler events.HandlerFunc) (pkg.Subscription, error)
}

func (l *MockListener) Listen(ctx context.Context, topic string, handler events.HandlerFunc) (pkg.Subscription, error) {
	if l.ListenFunc != nil {
		return l.ListenFunc(ctx, topic, handler)
	}
	l.Topic = topic
	l.Handler = handler
	l.Registration = &MockRegistration{}
	return l.Registration, nil
}

type MockRegistration struct {
	Calls int
}

func (r *MockRegistration) Unsubscribe() error {
	r.Calls++
	return nil
}

type MockSnapshotSource struct {
	SnapshotFunc func(ctx context.Context, stationID string) (Snapshot, error)
}

func (m *MockSnapshotSource) Snapshot(ctx context.Context, stationID string) (Snapshot, error) {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc(ctx, stationID)
	}
	return Snapshot{}, nil
}
