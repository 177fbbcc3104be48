package repositories

import (
	"context"
	"time"

	"gstbill/internal/models"

	"github.com/google/uuid"
)

type BusinessRepository interface {
	Create(ctx context.Context, business *models.Business) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	GetByEmail(ctx context.Context, email string) (*models.Business, error)
	Update(ctx context.Context, business *models.Business) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	List(ctx context.Context, search string, limit, offset int) ([]*models.Business, error)
	ExtendSubscription(ctx context.Context, id uuid.UUID, days int, now time.Time) (time.Time, error)
	ExpireSubscriptions(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

type businessRepo struct {
	db DBTX
}

func NewBusinessRepo(db DBTX) BusinessRepository {
	return &businessRepo{db: db}
}

const businessColumns = `id, name, owner_name, email, password_hash, phone, address, gstin, role, status,
		subscription_status, subscription_expires_at, created_at, updated_at`

func scanBusiness(row rowScanner) (*models.Business, error) {
	b := &models.Business{}
	err := row.Scan(&b.ID, &b.Name, &b.OwnerName, &b.Email, &b.PasswordHash, &b.Phone, &b.Address, &b.GSTIN,
		&b.Role, &b.Status, &b.SubscriptionStatus, &b.SubscriptionExpiresAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *businessRepo) Create(ctx context.Context, b *models.Business) error {
	query := `
		INSERT INTO businesses (id, name, owner_name, email, password_hash, phone, address, gstin, role, status,
			subscription_status, subscription_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, b.ID, b.Name, b.OwnerName, b.Email, b.PasswordHash, b.Phone, b.Address, b.GSTIN,
		b.Role, b.Status, b.SubscriptionStatus, b.SubscriptionExpiresAt)
	return mapError(err, "business")
}

func (r *businessRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE id = $1`
	b, err := scanBusiness(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "business")
	}
	return b, nil
}

func (r *businessRepo) GetByEmail(ctx context.Context, email string) (*models.Business, error) {
	query := `SELECT ` + businessColumns + ` FROM businesses WHERE lower(email) = lower($1)`
	b, err := scanBusiness(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, mapError(err, "business")
	}
	return b, nil
}

func (r *businessRepo) Update(ctx context.Context, b *models.Business) error {
	query := `
		UPDATE businesses
		SET name = $1, owner_name = $2, phone = $3, address = $4, gstin = $5, updated_at = NOW()
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, query, b.Name, b.OwnerName, b.Phone, b.Address, b.GSTIN, b.ID)
	if err != nil {
		return mapError(err, "business")
	}
	return requireRow(tag, "business")
}

func (r *businessRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE businesses SET status = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	return requireRow(tag, "business")
}

func (r *businessRepo) List(ctx context.Context, search string, limit, offset int) ([]*models.Business, error) {
	query := `
		SELECT ` + businessColumns + `
		FROM businesses
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var businesses []*models.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, b)
	}
	return businesses, rows.Err()
}

// ExtendSubscription adds days to whichever is later of now and the current
// expiry, and marks the subscription active.
func (r *businessRepo) ExtendSubscription(ctx context.Context, id uuid.UUID, days int, now time.Time) (time.Time, error) {
	query := `
		UPDATE businesses
		SET subscription_expires_at = GREATEST(COALESCE(subscription_expires_at, $2), $2) + make_interval(days => $3),
			subscription_status = 'active',
			updated_at = NOW()
		WHERE id = $1
		RETURNING subscription_expires_at
	`
	var expiresAt time.Time
	if err := r.db.QueryRow(ctx, query, id, now, days).Scan(&expiresAt); err != nil {
		return time.Time{}, mapError(err, "business")
	}
	return expiresAt, nil
}

// ExpireSubscriptions flips every lapsed subscription to expired and returns
// the affected business ids.
func (r *businessRepo) ExpireSubscriptions(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE businesses
		SET subscription_status = 'expired', updated_at = NOW()
		WHERE subscription_status <> 'expired' AND subscription_expires_at IS NOT NULL AND subscription_expires_at < $1
		RETURNING id
	`
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
