package repositories

import (
	"context"

	"gstbill/internal/models"

	"github.com/google/uuid"
)

type SubscriptionPlanRepository interface {
	Create(ctx context.Context, plan *models.SubscriptionPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error)
	Update(ctx context.Context, plan *models.SubscriptionPlan) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]*models.SubscriptionPlan, error)
}

type subscriptionPlanRepo struct {
	db DBTX
}

func NewSubscriptionPlanRepo(db DBTX) SubscriptionPlanRepository {
	return &subscriptionPlanRepo{db: db}
}

const planColumns = `id, name, description, price, currency, duration_days, features, is_active, created_at, updated_at`

func scanPlan(row rowScanner) (*models.SubscriptionPlan, error) {
	p := &models.SubscriptionPlan{}
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Currency, &p.DurationDays, &p.Features,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *subscriptionPlanRepo) Create(ctx context.Context, p *models.SubscriptionPlan) error {
	query := `
		INSERT INTO subscription_plans (id, name, description, price, currency, duration_days, features, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.Name, p.Description, p.Price, p.Currency, p.DurationDays, p.Features, p.IsActive)
	return mapError(err, "subscription plan")
}

func (r *subscriptionPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1`
	p, err := scanPlan(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "subscription plan")
	}
	return p, nil
}

func (r *subscriptionPlanRepo) Update(ctx context.Context, p *models.SubscriptionPlan) error {
	query := `
		UPDATE subscription_plans
		SET name = $1, description = $2, price = $3, currency = $4, duration_days = $5, features = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
	`
	tag, err := r.db.Exec(ctx, query, p.Name, p.Description, p.Price, p.Currency, p.DurationDays, p.Features, p.IsActive, p.ID)
	if err != nil {
		return mapError(err, "subscription plan")
	}
	return requireRow(tag, "subscription plan")
}

func (r *subscriptionPlanRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subscription_plans WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "subscription plan")
	}
	return requireRow(tag, "subscription plan")
}

func (r *subscriptionPlanRepo) List(ctx context.Context, activeOnly bool) ([]*models.SubscriptionPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM subscription_plans
		WHERE NOT $1 OR is_active
		ORDER BY price
	`
	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []*models.SubscriptionPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
