package repositories

import (
	"context"

	"gstbill/internal/models"

	"github.com/google/uuid"
)

type CustomerRepository interface {
	UpsertByPhone(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Customer, error)
}

type customerRepo struct {
	db DBTX
}

func NewCustomerRepo(db DBTX) CustomerRepository {
	return &customerRepo{db: db}
}

const customerColumns = `id, tenant_id, name, phone, email, address, gstin, created_at, updated_at`

func scanCustomer(row rowScanner) (*models.Customer, error) {
	c := &models.Customer{}
	if err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.GSTIN, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// UpsertByPhone inserts the customer or, when the phone already exists in the
// tenant, refreshes its name and any contact fields that were supplied. The
// stored row is returned either way.
func (r *customerRepo) UpsertByPhone(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	query := `
		INSERT INTO customers (id, tenant_id, name, phone, email, address, gstin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (tenant_id, phone) DO UPDATE
		SET name = EXCLUDED.name,
			email = COALESCE(EXCLUDED.email, customers.email),
			address = COALESCE(EXCLUDED.address, customers.address),
			gstin = COALESCE(EXCLUDED.gstin, customers.gstin),
			updated_at = NOW()
		RETURNING ` + customerColumns
	stored, err := scanCustomer(r.db.QueryRow(ctx, query, c.ID, c.TenantID, c.Name, c.Phone, c.Email, c.Address, c.GSTIN))
	if err != nil {
		return nil, mapError(err, "customer")
	}
	return stored, nil
}

func (r *customerRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE tenant_id = $1 AND id = $2`
	c, err := scanCustomer(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, mapError(err, "customer")
	}
	return c, nil
}

func (r *customerRepo) Update(ctx context.Context, c *models.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, phone = $2, email = $3, address = $4, gstin = $5, updated_at = NOW()
		WHERE tenant_id = $6 AND id = $7
	`
	tag, err := r.db.Exec(ctx, query, c.Name, c.Phone, c.Email, c.Address, c.GSTIN, c.TenantID, c.ID)
	if err != nil {
		return mapError(err, "customer")
	}
	return requireRow(tag, "customer")
}

func (r *customerRepo) List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE tenant_id = $1 AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR phone LIKE '%' || $2 || '%')
		ORDER BY name
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, tenantID, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
