package cashier

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store enforcing the same uniqueness rules as the
// relational schema.
type MockStore struct {
	mu         sync.Mutex
	terminals  map[uuid.UUID]Terminal
	employees  map[uuid.UUID]Employee
	sessions   map[uuid.UUID]Session
	payments   map[string]Payment
	orders     map[uuid.UUID]Order
	tables     map[uuid.UUID]string
	vouchers   map[uuid.UUID]Voucher
	customers  map[uuid.UUID]Customer
	inventory  map[uuid.UUID]InventoryItem
	settleRuns int

	FindOpenSessionByCashierFunc func(ctx context.Context, cashierID uuid.UUID) (*Session, error)
	InsertSessionFunc            func(ctx context.Context, s *Session) error
	ListSessionPaymentsFunc      func(ctx context.Context, sessionID uuid.UUID) ([]Payment, error)
	SettleOrderFunc              func(ctx context.Context, s Settlement) error
	FindPaymentByKeyFunc         func(ctx context.Context, key string) (*Payment, error)
}

func NewMockStore() *MockStore {
	return &MockStore{
		terminals: make(map[uuid.UUID]Terminal),
		employees: make(map[uuid.UUID]Employee),
		sessions:  make(map[uuid.UUID]Session),
		payments:  make(map[string]Payment),
		orders:    make(map[uuid.UUID]Order),
		tables:    make(map[uuid.UUID]string),
		vouchers:  make(map[uuid.UUID]Voucher),
		customers: make(map[uuid.UUID]Customer),
		inventory: make(map[uuid.UUID]InventoryItem),
	}
}

func (m *MockStore) InsertTerminal(ctx context.Context, t *Terminal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.terminals {
		if existing.Fingerprint == t.Fingerprint {
			return ErrDuplicateFingerprint
		}
	}
	m.terminals[t.ID] = *t
	return nil
}

func (m *MockStore) FindTerminal(ctx context.Context, id uuid.UUID) (*Terminal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.terminals[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MockStore) UpdateTerminalFlags(ctx context.Context, id uuid.UUID, active, approved bool, at time.Time) (*Terminal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.terminals[id]
	if !ok {
		return nil, ErrNotFound
	}
	t.Active = active
	t.Approved = approved
	t.UpdatedAt = at
	m.terminals[id] = t
	return &t, nil
}

func (m *MockStore) InsertEmployee(ctx context.Context, e *Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = *e
	return nil
}

func (m *MockStore) FindEmployee(ctx context.Context, id uuid.UUID) (*Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (m *MockStore) InsertSession(ctx context.Context, s *Session) error {
	if m.InsertSessionFunc != nil {
		return m.InsertSessionFunc(ctx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sessions {
		if existing.Status != SessionOpen {
			continue
		}
		if existing.CashierID == s.CashierID {
			return ErrCashierSessionOpen
		}
		if existing.TerminalID == s.TerminalID {
			return ErrTerminalSessionOpen
		}
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *MockStore) FindSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MockStore) FindOpenSessionByCashier(ctx context.Context, cashierID uuid.UUID) (*Session, error) {
	if m.FindOpenSessionByCashierFunc != nil {
		return m.FindOpenSessionByCashierFunc(ctx, cashierID)
	}
	return m.findOpen(func(s Session) bool { return s.CashierID == cashierID })
}

func (m *MockStore) FindOpenSessionByTerminal(ctx context.Context, terminalID uuid.UUID) (*Session, error) {
	return m.findOpen(func(s Session) bool { return s.TerminalID == terminalID })
}

func (m *MockStore) findOpen(match func(Session) bool) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.Status == SessionOpen && match(s) {
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockStore) CloseSession(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.sessions[s.ID]
	if !ok || existing.Status != SessionOpen {
		return ErrSessionNotOpen
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *MockStore) ListSessionPayments(ctx context.Context, sessionID uuid.UUID) ([]Payment, error) {
	if m.ListSessionPaymentsFunc != nil {
		return m.ListSessionPaymentsFunc(ctx, sessionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Payment
	for _, p := range m.payments {
		if p.SessionID != nil && *p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockStore) InsertOrder(ctx context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.TableID != nil {
		if _, ok := m.tables[*o.TableID]; !ok {
			return ErrNotFound
		}
		m.tables[*o.TableID] = TableOccupied
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *MockStore) FindOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (m *MockStore) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	if o.Status != from {
		return ErrOrderStatusChanged
	}
	o.Status = to
	o.UpdatedAt = at
	m.orders[id] = o
	return nil
}

func (m *MockStore) SettleOrder(ctx context.Context, s Settlement) error {
	if m.SettleOrderFunc != nil {
		return m.SettleOrderFunc(ctx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[s.Payment.IdempotencyKey]; ok {
		return ErrDuplicatePayment
	}
	o, ok := m.orders[s.OrderID]
	if !ok {
		return ErrNotFound
	}
	if o.Status == OrderCompleted || o.Status == OrderCancelled {
		return ErrOrderNotPayable
	}
	m.applySettlement(o, s.Payment, s.TableID, s.VoucherID, s.At)
	return nil
}

func (m *MockStore) applySettlement(o Order, p Payment, table, voucher *uuid.UUID, at time.Time) {
	m.settleRuns++
	m.payments[p.IdempotencyKey] = p
	o.Status = OrderCompleted
	o.CompletedAt = &at
	m.orders[o.ID] = o
	if table != nil {
		m.tables[*table] = TableAvailable
	}
	if voucher != nil {
		v := m.vouchers[*voucher]
		v.UsageCount++
		m.vouchers[*voucher] = v
	}
}

func (m *MockStore) InsertPayment(ctx context.Context, p *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[p.IdempotencyKey]; ok {
		return ErrDuplicatePayment
	}
	m.payments[p.IdempotencyKey] = *p
	return nil
}

func (m *MockStore) FindPaymentByKey(ctx context.Context, key string) (*Payment, error) {
	if m.FindPaymentByKeyFunc != nil {
		return m.FindPaymentByKeyFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MockStore) CompletePendingPayment(ctx context.Context, key string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[key]
	if !ok || p.Status != PaymentPending {
		return false, nil
	}
	p.Status = PaymentCompleted
	p.CompletedAt = &at

	o := m.orders[p.OrderID]
	var table *uuid.UUID
	if o.IsDineIn() {
		table = o.TableID
	}
	m.applySettlement(o, p, table, o.VoucherID, at)
	return true, nil
}

func (m *MockStore) FailPendingPayment(ctx context.Context, key string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[key]
	if !ok || p.Status != PaymentPending {
		return false, nil
	}
	p.Status = PaymentFailed
	m.payments[key] = p
	return true, nil
}

func (m *MockStore) InsertCustomer(ctx context.Context, c *Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.ID] = *c
	return nil
}

func (m *MockStore) InsertInventoryItem(ctx context.Context, item *InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inventory[item.ID] = *item
	return nil
}

func (m *MockStore) InsertVoucher(ctx context.Context, v *Voucher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.vouchers {
		if existing.Code == v.Code {
			return ErrDuplicateVoucher
		}
	}
	m.vouchers[v.ID] = *v
	return nil
}

func (m *MockStore) InsertTable(ctx context.Context, t *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[t.ID]; ok {
		return ErrDuplicateTable
	}
	m.tables[t.ID] = t.Status
	return nil
}

// Test helpers

func (m *MockStore) PutTable(id uuid.UUID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[id] = status
}

func (m *MockStore) TableStatus(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tables[id]
}

func (m *MockStore) PutOrder(o Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
}

func (m *MockStore) PutPayment(p Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.IdempotencyKey] = p
}

func (m *MockStore) PutVoucher(v Voucher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vouchers[v.ID] = v
}

func (m *MockStore) Voucher(id uuid.UUID) Voucher {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vouchers[id]
}

func (m *MockStore) SettleRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settleRuns
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

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, PublishedMessage{Topic: topic, Data: msg})
	return nil
}

func (m *MockPublisher) Topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.published))
	for _, p := range m.published {
		out = append(out, p.Topic)
	}
	return out
}
