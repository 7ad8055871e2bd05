// Package postgres implements the cashier store on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/pos/pkg/cashierdb"
	"github.com/appetiteclub/pos/services/cashier/internal/cashier"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	terminalColumns = `id, branch_id, name, type, fingerprint, active, approved, created_at, updated_at`
	employeeColumns = `id, branch_id, name, role, active, created_at`
	sessionColumns  = `id, cashier_id, terminal_id, branch_id, opening_amount, opened_at, status,
		closing_amount, expected_amount, difference, closed_at, notes`
	orderColumns = `id, branch_id, number, type, status, total, priority, table_id, table_number,
		voucher_id, items, created_at, updated_at, completed_at`
	paymentColumns = `id, order_id, session_id, method, amount, tip, status, idempotency_key,
		created_at, completed_at`
)

// Store implements cashier.Store on PostgreSQL.
type Store struct {
	db     cashierdb.DB
	logger apt.Logger
}

func NewStore(db cashierdb.DB, logger apt.Logger) *Store {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Store{db: db, logger: logger}
}

var _ cashier.Store = (*Store)(nil)

func (s *Store) InsertTerminal(ctx context.Context, t *cashier.Terminal) error {
	query := `INSERT INTO terminals (` + terminalColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.db.Exec(ctx, query,
		t.ID, t.BranchID, t.Name, t.Type, t.Fingerprint, t.Active, t.Approved, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert terminal: %w", mapError(err))
	}
	return nil
}

func scanTerminal(row cashierdb.Row) (*cashier.Terminal, error) {
	var t cashier.Terminal
	err := row.Scan(&t.ID, &t.BranchID, &t.Name, &t.Type, &t.Fingerprint, &t.Active, &t.Approved, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}

func (s *Store) FindTerminal(ctx context.Context, id uuid.UUID) (*cashier.Terminal, error) {
	query := `SELECT ` + terminalColumns + ` FROM terminals WHERE id = $1`
	t, err := scanTerminal(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to load terminal: %w", err)
	}
	return t, nil
}

func (s *Store) UpdateTerminalFlags(ctx context.Context, id uuid.UUID, active, approved bool, at time.Time) (*cashier.Terminal, error) {
	query := `
		UPDATE terminals SET active = $2, approved = $3, updated_at = $4
		WHERE id = $1
		RETURNING ` + terminalColumns
	t, err := scanTerminal(s.db.QueryRow(ctx, query, id, active, approved, at))
	if err != nil {
		return nil, fmt.Errorf("failed to update terminal: %w", err)
	}
	return t, nil
}

func (s *Store) InsertEmployee(ctx context.Context, e *cashier.Employee) error {
	query := `INSERT INTO employees (` + employeeColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.db.Exec(ctx, query, e.ID, e.BranchID, e.Name, e.Role, e.Active, e.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert employee: %w", mapError(err))
	}
	return nil
}

func (s *Store) FindEmployee(ctx context.Context, id uuid.UUID) (*cashier.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	var e cashier.Employee
	err := s.db.QueryRow(ctx, query, id).Scan(&e.ID, &e.BranchID, &e.Name, &e.Role, &e.Active, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", mapError(err))
	}
	return &e, nil
}

// InsertSession relies on the partial unique indexes to reject a second open
// session for the same cashier or terminal.
func (s *Store) InsertSession(ctx context.Context, sess *cashier.Session) error {
	query := `
		INSERT INTO cash_sessions (id, cashier_id, terminal_id, branch_id, opening_amount, opened_at, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.Exec(ctx, query,
		sess.ID, sess.CashierID, sess.TerminalID, sess.BranchID, sess.OpeningAmount, sess.OpenedAt, sess.Status, sess.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", mapError(err))
	}
	return nil
}

func scanSession(row cashierdb.Row) (*cashier.Session, error) {
	var sess cashier.Session
	err := row.Scan(
		&sess.ID, &sess.CashierID, &sess.TerminalID, &sess.BranchID, &sess.OpeningAmount, &sess.OpenedAt, &sess.Status,
		&sess.ClosingAmount, &sess.ExpectedAmount, &sess.Difference, &sess.ClosedAt, &sess.Notes,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &sess, nil
}

func (s *Store) FindSession(ctx context.Context, id uuid.UUID) (*cashier.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM cash_sessions WHERE id = $1`
	sess, err := scanSession(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return sess, nil
}

func (s *Store) FindOpenSessionByCashier(ctx context.Context, cashierID uuid.UUID) (*cashier.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM cash_sessions WHERE cashier_id = $1 AND status = 'open'`
	sess, err := scanSession(s.db.QueryRow(ctx, query, cashierID))
	if err != nil {
		return nil, fmt.Errorf("failed to load open session: %w", err)
	}
	return sess, nil
}

func (s *Store) FindOpenSessionByTerminal(ctx context.Context, terminalID uuid.UUID) (*cashier.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM cash_sessions WHERE terminal_id = $1 AND status = 'open'`
	sess, err := scanSession(s.db.QueryRow(ctx, query, terminalID))
	if err != nil {
		return nil, fmt.Errorf("failed to load open session: %w", err)
	}
	return sess, nil
}

func (s *Store) CloseSession(ctx context.Context, sess *cashier.Session) error {
	query := `
		UPDATE cash_sessions
		SET status = $2, closing_amount = $3, expected_amount = $4, difference = $5, closed_at = $6, notes = $7
		WHERE id = $1 AND status = 'open'
	`
	tag, err := s.db.Exec(ctx, query,
		sess.ID, sess.Status, sess.ClosingAmount, sess.ExpectedAmount, sess.Difference, sess.ClosedAt, sess.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return cashier.ErrSessionNotOpen
	}
	return nil
}

func (s *Store) ListSessionPayments(ctx context.Context, sessionID uuid.UUID) ([]cashier.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE session_id = $1 ORDER BY created_at ASC`
	rows, err := s.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session payments: %w", err)
	}
	defer rows.Close()

	var payments []cashier.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list session payments: %w", err)
	}
	return payments, nil
}

// InsertOrder occupies the dine-in table and stores the order in one
// transaction. An unknown table is reported as ErrNotFound.
func (s *Store) InsertOrder(ctx context.Context, o *cashier.Order) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if o.TableID != nil {
		err := tx.QueryRow(ctx,
			`UPDATE restaurant_tables SET status = $2, updated_at = $3 WHERE id = $1 RETURNING number`,
			*o.TableID, cashier.TableOccupied, o.CreatedAt,
		).Scan(&o.TableNumber)
		if err != nil {
			return fmt.Errorf("failed to occupy table: %w", mapError(err))
		}
	}

	items := o.Items
	if items == nil {
		items = []cashier.OrderLine{}
	}
	query := `INSERT INTO orders (` + orderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = tx.Exec(ctx, query,
		o.ID, o.BranchID, o.Number, o.Type, o.Status, o.Total, o.Priority, o.TableID, o.TableNumber,
		o.VoucherID, items, o.CreatedAt, o.UpdatedAt, o.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", mapError(err))
	}

	return tx.Commit(ctx)
}

func (s *Store) FindOrder(ctx context.Context, id uuid.UUID) (*cashier.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	var o cashier.Order
	err := s.db.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.BranchID, &o.Number, &o.Type, &o.Status, &o.Total, &o.Priority, &o.TableID, &o.TableNumber,
		&o.VoucherID, &o.Items, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", mapError(err))
	}
	return &o, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to string, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		id, from, to, at,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", mapError(err))
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	return s.missingOr(ctx, s.db, id, cashier.ErrOrderStatusChanged)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) cashierdb.Row
}

// missingOr reports ErrNotFound when the order does not exist and otherwise
// returns the given error.
func (s *Store) missingOr(ctx context.Context, q queryRower, orderID uuid.UUID, otherwise error) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check order: %w", err)
	}
	if !exists {
		return cashier.ErrNotFound
	}
	return otherwise
}

func (s *Store) SettleOrder(ctx context.Context, st cashier.Settlement) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertPayment(ctx, tx, &st.Payment); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE orders SET status = 'completed', completed_at = $2, updated_at = $2
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled')
	`, st.OrderID, st.At)
	if err != nil {
		return fmt.Errorf("failed to complete order: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return s.missingOr(ctx, tx, st.OrderID, cashier.ErrOrderNotPayable)
	}

	if err := releaseTable(ctx, tx, st.TableID, st.At); err != nil {
		return err
	}
	if err := countVoucherUse(ctx, tx, st.VoucherID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit settlement: %w", err)
	}
	return nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (cashierdb.CommandTag, error)
}

func insertPayment(ctx context.Context, db execer, p *cashier.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := db.Exec(ctx, query,
		p.ID, p.OrderID, p.SessionID, p.Method, p.Amount, p.Tip, p.Status, p.IdempotencyKey, p.CreatedAt, p.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", mapError(err))
	}
	return nil
}

func releaseTable(ctx context.Context, db execer, tableID *uuid.UUID, at time.Time) error {
	if tableID == nil {
		return nil
	}
	_, err := db.Exec(ctx,
		`UPDATE restaurant_tables SET status = $2, updated_at = $3 WHERE id = $1`,
		*tableID, cashier.TableAvailable, at,
	)
	if err != nil {
		return fmt.Errorf("failed to release table: %w", err)
	}
	return nil
}

func countVoucherUse(ctx context.Context, db execer, voucherID *uuid.UUID) error {
	if voucherID == nil {
		return nil
	}
	if _, err := db.Exec(ctx, `UPDATE vouchers SET usage_count = usage_count + 1 WHERE id = $1`, *voucherID); err != nil {
		return fmt.Errorf("failed to count voucher use: %w", err)
	}
	return nil
}

func (s *Store) InsertPayment(ctx context.Context, p *cashier.Payment) error {
	return insertPayment(ctx, s.db, p)
}

func scanPayment(row cashierdb.Row) (*cashier.Payment, error) {
	var p cashier.Payment
	err := row.Scan(
		&p.ID, &p.OrderID, &p.SessionID, &p.Method, &p.Amount, &p.Tip, &p.Status, &p.IdempotencyKey,
		&p.CreatedAt, &p.CompletedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (s *Store) FindPaymentByKey(ctx context.Context, key string) (*cashier.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE idempotency_key = $1`
	p, err := scanPayment(s.db.QueryRow(ctx, query, key))
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return p, nil
}

// CompletePendingPayment flips a pending payment to completed and cascades
// to its order, table and voucher. The conditional update is the guard
// against duplicate gateway deliveries: when it matches no row the payment
// was already resolved and nothing else runs.
func (s *Store) CompletePendingPayment(ctx context.Context, key string, at time.Time) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var orderID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE payments SET status = 'completed', completed_at = $2
		WHERE idempotency_key = $1 AND status = 'pending'
		RETURNING order_id
	`, key, at).Scan(&orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to complete payment: %w", err)
	}

	var (
		orderType string
		tableID   *uuid.UUID
		voucherID *uuid.UUID
	)
	err = tx.QueryRow(ctx, `
		UPDATE orders SET status = 'completed', completed_at = $2, updated_at = $2
		WHERE id = $1 AND status NOT IN ('completed', 'cancelled')
		RETURNING type, table_id, voucher_id
	`, orderID, at).Scan(&orderType, &tableID, &voucherID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		s.logger.Error("gateway payment completed for an order that is no longer payable", "order_id", orderID, "request_id", key)
	case err != nil:
		return false, fmt.Errorf("failed to complete order: %w", err)
	default:
		if orderType != "dine_in" {
			tableID = nil
		}
		if err := releaseTable(ctx, tx, tableID, at); err != nil {
			return false, err
		}
		if err := countVoucherUse(ctx, tx, voucherID); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit payment: %w", err)
	}
	return true, nil
}

func (s *Store) FailPendingPayment(ctx context.Context, key string, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE payments SET status = 'failed', completed_at = $2 WHERE idempotency_key = $1 AND status = 'pending'`,
		key, at,
	)
	if err != nil {
		return false, fmt.Errorf("failed to fail payment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) InsertCustomer(ctx context.Context, c *cashier.Customer) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO customers (id, name, phone, email, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Phone, c.Email, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", mapError(err))
	}
	return nil
}

func (s *Store) InsertInventoryItem(ctx context.Context, item *cashier.InventoryItem) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO inventory_items (id, branch_id, name, unit, quantity, reorder_level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, item.ID, item.BranchID, item.Name, item.Unit, item.Quantity, item.ReorderLevel, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert inventory item: %w", mapError(err))
	}
	return nil
}

func (s *Store) InsertVoucher(ctx context.Context, v *cashier.Voucher) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO vouchers (id, code, kind, value, usage_limit, usage_count, valid_from, valid_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, v.ID, v.Code, v.Kind, v.Value, v.UsageLimit, v.UsageCount, v.ValidFrom, v.ValidUntil, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert voucher: %w", mapError(err))
	}
	return nil
}

func (s *Store) InsertTable(ctx context.Context, t *cashier.Table) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO restaurant_tables (id, number, status, updated_at) VALUES ($1, $2, $3, $4)`,
		t.ID, t.Number, t.Status, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert table: %w", mapError(err))
	}
	return nil
}
