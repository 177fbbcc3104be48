package repositories

import (
	"context"

	"gstbill/internal/models"

	"github.com/google/uuid"
)

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	InsertIfAbsent(ctx context.Context, item *models.Item) (bool, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error)
	GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Item, error)
}

type itemRepo struct {
	db DBTX
}

func NewItemRepo(db DBTX) ItemRepository {
	return &itemRepo{db: db}
}

const itemColumns = `id, tenant_id, name, description, hsn_code, price, discount, gst_rate, created_at, updated_at`

func scanItem(row rowScanner) (*models.Item, error) {
	i := &models.Item{}
	if err := row.Scan(&i.ID, &i.TenantID, &i.Name, &i.Description, &i.HSNCode, &i.Price, &i.Discount, &i.GSTRate,
		&i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	return i, nil
}

func (r *itemRepo) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (id, tenant_id, name, description, hsn_code, price, discount, gst_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.TenantID, item.Name, item.Description, item.HSNCode,
		item.Price, item.Discount, item.GSTRate)
	return mapError(err, "item")
}

// InsertIfAbsent adds the item to the catalog unless the name is already
// taken in the tenant. It reports whether a row was written.
func (r *itemRepo) InsertIfAbsent(ctx context.Context, item *models.Item) (bool, error) {
	query := `
		INSERT INTO items (id, tenant_id, name, description, hsn_code, price, discount, gst_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (tenant_id, lower(name)) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, item.ID, item.TenantID, item.Name, item.Description, item.HSNCode,
		item.Price, item.Discount, item.GSTRate)
	if err != nil {
		return false, mapError(err, "item")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *itemRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE tenant_id = $1 AND id = $2`
	item, err := scanItem(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, mapError(err, "item")
	}
	return item, nil
}

// GetByName matches case-insensitively, the same way the unique index does.
func (r *itemRepo) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE tenant_id = $1 AND lower(name) = lower($2)`
	item, err := scanItem(r.db.QueryRow(ctx, query, tenantID, name))
	if err != nil {
		return nil, mapError(err, "item")
	}
	return item, nil
}

func (r *itemRepo) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET name = $1, description = $2, hsn_code = $3, price = $4, discount = $5, gst_rate = $6, updated_at = NOW()
		WHERE tenant_id = $7 AND id = $8
	`
	tag, err := r.db.Exec(ctx, query, item.Name, item.Description, item.HSNCode, item.Price, item.Discount, item.GSTRate,
		item.TenantID, item.ID)
	if err != nil {
		return mapError(err, "item")
	}
	return requireRow(tag, "item")
}

func (r *itemRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	return requireRow(tag, "item")
}

func (r *itemRepo) List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE tenant_id = $1 AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY name
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, tenantID, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
