package repositories

import (
	"context"
	"errors"

	"gstbill/internal/common"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock.PgxPoolIface.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	invoiceNumberConstraint = "invoices_tenant_id_invoice_number_key"
)

// mapError translates driver errors into application error kinds. resource
// names the entity in not-found messages.
func mapError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NewNotFoundError(resource)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if pgErr.ConstraintName == invoiceNumberConstraint {
				return common.NewDuplicateInvoiceNumberError("", err)
			}
			return common.NewConflictError(resource+" already exists", err)
		case pgForeignKeyViolation:
			return common.NewValidationError(pgErr.ColumnName, "referenced record does not exist")
		}
	}
	return err
}

// requireRow turns a zero-row update or delete into NotFound.
func requireRow(tag pgconn.CommandTag, resource string) error {
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError(resource)
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on any error.
func withTx(ctx context.Context, db DBTX, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// rowScanner is implemented by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
