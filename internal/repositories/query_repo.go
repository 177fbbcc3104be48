package repositories

import (
	"context"

	"gstbill/internal/models"

	"github.com/google/uuid"
)

type QueryRepository interface {
	Create(ctx context.Context, q *models.Query) error
	ListForTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Query, error)
	ListAll(ctx context.Context, status string, limit, offset int) ([]*models.Query, error)
	Reply(ctx context.Context, id uuid.UUID, reply string, status string) (*models.Query, error)
}

type queryRepo struct {
	db DBTX
}

func NewQueryRepo(db DBTX) QueryRepository {
	return &queryRepo{db: db}
}

const queryColumns = `id, tenant_id, subject, message, status, reply, created_at, updated_at`

func scanQuery(row rowScanner) (*models.Query, error) {
	q := &models.Query{}
	if err := row.Scan(&q.ID, &q.TenantID, &q.Subject, &q.Message, &q.Status, &q.Reply, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *queryRepo) Create(ctx context.Context, q *models.Query) error {
	query := `
		INSERT INTO support_queries (id, tenant_id, subject, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, q.ID, q.TenantID, q.Subject, q.Message, q.Status)
	return mapError(err, "query")
}

func (r *queryRepo) ListForTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Query, error) {
	sql := `
		SELECT ` + queryColumns + `
		FROM support_queries
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, sql, tenantID, limit, offset)
}

func (r *queryRepo) ListAll(ctx context.Context, status string, limit, offset int) ([]*models.Query, error) {
	sql := `
		SELECT ` + queryColumns + `
		FROM support_queries
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, sql, status, limit, offset)
}

func (r *queryRepo) list(ctx context.Context, sql string, args ...any) ([]*models.Query, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	queries := []*models.Query{}
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

func (r *queryRepo) Reply(ctx context.Context, id uuid.UUID, reply string, status string) (*models.Query, error) {
	sql := `
		UPDATE support_queries
		SET reply = $1, status = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + queryColumns
	q, err := scanQuery(r.db.QueryRow(ctx, sql, reply, status, id))
	if err != nil {
		return nil, mapError(err, "query")
	}
	return q, nil
}
