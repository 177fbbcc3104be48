package repositories

import (
	"context"

	"gstbill/internal/models"

	"github.com/google/uuid"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Transaction, error)
	MarkPaid(ctx context.Context, orderID, paymentID string) (bool, error)
	MarkFailed(ctx context.Context, orderID string) error
	List(ctx context.Context, tenantID *uuid.UUID, status string, limit, offset int) ([]*models.Transaction, error)
}

type transactionRepo struct {
	db DBTX
}

func NewTransactionRepo(db DBTX) TransactionRepository {
	return &transactionRepo{db: db}
}

const transactionColumns = `id, tenant_id, plan_id, amount, currency, gateway_order_id, gateway_payment_id, status, created_at, updated_at`

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	if err := row.Scan(&t.ID, &t.TenantID, &t.PlanID, &t.Amount, &t.Currency, &t.GatewayOrderID, &t.GatewayPaymentID,
		&t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *transactionRepo) Create(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, tenant_id, plan_id, amount, currency, gateway_order_id, gateway_payment_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, t.ID, t.TenantID, t.PlanID, t.Amount, t.Currency, t.GatewayOrderID, t.GatewayPaymentID, t.Status)
	return mapError(err, "transaction")
}

func (r *transactionRepo) GetByOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE gateway_order_id = $1`
	t, err := scanTransaction(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		return nil, mapError(err, "transaction")
	}
	return t, nil
}

// MarkPaid moves a pending transaction to paid. It reports false when the
// transaction was already settled, so callers can stay idempotent.
func (r *transactionRepo) MarkPaid(ctx context.Context, orderID, paymentID string) (bool, error) {
	query := `
		UPDATE transactions
		SET status = 'paid', gateway_payment_id = $1, updated_at = NOW()
		WHERE gateway_order_id = $2 AND status <> 'paid'
	`
	tag, err := r.db.Exec(ctx, query, paymentID, orderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *transactionRepo) MarkFailed(ctx context.Context, orderID string) error {
	query := `UPDATE transactions SET status = 'failed', updated_at = NOW() WHERE gateway_order_id = $1 AND status = 'pending'`
	_, err := r.db.Exec(ctx, query, orderID)
	return err
}

// List filters by tenant when tenantID is non-nil and by status when status is non-empty.
func (r *transactionRepo) List(ctx context.Context, tenantID *uuid.UUID, status string, limit, offset int) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ($1::uuid IS NULL OR tenant_id = $1) AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, tenantID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := []*models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
