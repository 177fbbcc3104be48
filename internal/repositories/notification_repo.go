package repositories

import (
	"context"

	"gstbill/internal/models"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Notification, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, tenantID, id uuid.UUID) error
}

type notificationRepo struct {
	db DBTX
}

func NewNotificationRepo(db DBTX) NotificationRepository {
	return &notificationRepo{db: db}
}

// Create fills in CreatedAt from the database clock.
func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, tenant_id, title, message, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, n.ID, n.TenantID, n.Title, n.Message).Scan(&n.CreatedAt)
	return mapError(err, "notification")
}

// ListForTenant returns broadcasts plus notifications addressed to the tenant,
// each flagged with whether the tenant has read it.
func (r *notificationRepo) ListForTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	query := `
		SELECT n.id, n.tenant_id, n.title, n.message, n.created_at, (nr.notification_id IS NOT NULL)
		FROM notifications n
		LEFT JOIN notification_reads nr ON nr.notification_id = n.id AND nr.tenant_id = $1
		WHERE n.tenant_id IS NULL OR n.tenant_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.TenantID, &n.Title, &n.Message, &n.CreatedAt, &n.Read); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepo) ListAll(ctx context.Context, limit, offset int) ([]*models.Notification, error) {
	query := `
		SELECT id, tenant_id, title, message, created_at
		FROM notifications
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.TenantID, &n.Title, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead is idempotent. It fails with NotFound when the notification is not
// visible to the tenant.
func (r *notificationRepo) MarkRead(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `
		INSERT INTO notification_reads (notification_id, tenant_id, read_at)
		SELECT n.id, $2, NOW()
		FROM notifications n
		WHERE n.id = $1 AND (n.tenant_id IS NULL OR n.tenant_id = $2)
		ON CONFLICT (notification_id, tenant_id) DO UPDATE SET read_at = notification_reads.read_at
	`
	tag, err := r.db.Exec(ctx, query, id, tenantID)
	if err != nil {
		return err
	}
	return requireRow(tag, "notification")
}
