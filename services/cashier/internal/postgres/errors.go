package postgres

import (
	"errors"

	"github.com/appetiteclub/pos/services/cashier/internal/cashier"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

var constraintErrors = map[string]error{
	"terminals_fingerprint_key":      cashier.ErrDuplicateFingerprint,
	"payments_idempotency_key_key":   cashier.ErrDuplicatePayment,
	"vouchers_code_key":              cashier.ErrDuplicateVoucher,
	"restaurant_tables_number_key":   cashier.ErrDuplicateTable,
	"sessions_one_open_per_cashier":  cashier.ErrCashierSessionOpen,
	"sessions_one_open_per_terminal": cashier.ErrTerminalSessionOpen,
}

// mapError translates driver errors into the cashier store errors. Anything
// it does not recognise is returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return cashier.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		if mapped, ok := constraintErrors[pgErr.ConstraintName]; ok {
			return mapped
		}
	case foreignKeyViolation:
		return cashier.ErrNotFound
	}
	return err
}
