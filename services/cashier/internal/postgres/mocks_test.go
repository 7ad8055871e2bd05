package postgres

import (
	"context"
	"errors"
	"sync"

	"github.com/appetiteclub/pos/pkg/cashierdb"
)

type MockTag int64

func (t MockTag) RowsAffected() int64 { return int64(t) }

type MockRow struct {
	ScanFunc func(dest ...any) error
}

func (r MockRow) Scan(dest ...any) error {
	if r.ScanFunc != nil {
		return r.ScanFunc(dest...)
	}
	return errors.New("no scan configured")
}

// MockTx records executed statements and how the transaction ended.
type MockTx struct {
	mu         sync.Mutex
	Statements []string
	Committed  bool
	RolledBack bool

	ExecFunc     func(ctx context.Context, sql string, args ...any) (cashierdb.CommandTag, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) cashierdb.Row
}

func (t *MockTx) record(sql string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Statements = append(t.Statements, sql)
}

func (t *MockTx) Query(ctx context.Context, sql string, args ...any) (cashierdb.Rows, error) {
	t.record(sql)
	return nil, errors.New("not implemented")
}

func (t *MockTx) QueryRow(ctx context.Context, sql string, args ...any) cashierdb.Row {
	t.record(sql)
	if t.QueryRowFunc != nil {
		return t.QueryRowFunc(ctx, sql, args...)
	}
	return MockRow{}
}

func (t *MockTx) Exec(ctx context.Context, sql string, args ...any) (cashierdb.CommandTag, error) {
	t.record(sql)
	if t.ExecFunc != nil {
		return t.ExecFunc(ctx, sql, args...)
	}
	return MockTag(1), nil
}

func (t *MockTx) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *MockTx) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

type MockDB struct {
	Tx *MockTx

	ExecFunc     func(ctx context.Context, sql string, args ...any) (cashierdb.CommandTag, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) cashierdb.Row
	QueryFunc    func(ctx context.Context, sql string, args ...any) (cashierdb.Rows, error)
	BeginFunc    func(ctx context.Context) (cashierdb.Tx, error)
}

func (m *MockDB) Query(ctx context.Context, sql string, args ...any) (cashierdb.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return nil, errors.New("not implemented")
}

func (m *MockDB) QueryRow(ctx context.Context, sql string, args ...any) cashierdb.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return MockRow{}
}

func (m *MockDB) Exec(ctx context.Context, sql string, args ...any) (cashierdb.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return MockTag(1), nil
}

func (m *MockDB) Begin(ctx context.Context) (cashierdb.Tx, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	if m.Tx == nil {
		m.Tx = &MockTx{}
	}
	return m.Tx, nil
}

func (m *MockDB) Ping(ctx context.Context) error { return nil }

func (m *MockDB) Close() {}
