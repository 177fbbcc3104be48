package services

import (
	"context"
	"strings"

	"gstbill/internal/caching"
	"gstbill/internal/common"
	"gstbill/internal/models"
	"gstbill/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type NotificationRequest struct {
	Title    string     `json:"title"`
	Message  string     `json:"message"`
	TenantID *uuid.UUID `json:"tenant_id,omitempty"`
}

type NotificationService interface {
	Send(ctx context.Context, req *NotificationRequest) (*models.Notification, error)
	ListForTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Notification, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, tenantID, id uuid.UUID) error
	Subscribe(ctx context.Context) (<-chan []byte, func() error)
}

type notificationService struct {
	repo   repositories.NotificationRepository
	cache  caching.CacheService
	logger *logrus.Entry
}

func NewNotificationService(repo repositories.NotificationRepository, cache caching.CacheService, logger *logrus.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		cache:  cache,
		logger: logger.WithField("component", "notification_service"),
	}
}

// Send stores the notification and then publishes it for live listeners.
// A nil TenantID makes it a broadcast. Publish failures are only logged since
// the stored copy is still listed.
func (s *notificationService) Send(ctx context.Context, req *NotificationRequest) (*models.Notification, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, common.NewValidationError("title", "title is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, common.NewValidationError("message", "message is required")
	}

	n := &models.Notification{
		ID:       uuid.New(),
		TenantID: req.TenantID,
		Title:    strings.TrimSpace(req.Title),
		Message:  strings.TrimSpace(req.Message),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if err := s.cache.Publish(ctx, caching.NotificationChannel, n); err != nil {
		s.logger.WithError(err).WithField("notification_id", n.ID).Warn("failed to publish notification")
	}
	return n, nil
}

func (s *notificationService) ListForTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	return s.repo.ListForTenant(ctx, tenantID, limit, offset)
}

func (s *notificationService) ListAll(ctx context.Context, limit, offset int) ([]*models.Notification, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

func (s *notificationService) MarkRead(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, tenantID, id)
}

func (s *notificationService) Subscribe(ctx context.Context) (<-chan []byte, func() error) {
	return s.cache.Subscribe(ctx, caching.NotificationChannel)
}
