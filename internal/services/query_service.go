package services

import (
	"context"
	"strings"

	"gstbill/internal/common"
	"gstbill/internal/models"
	"gstbill/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CreateQueryRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ReplyQueryRequest struct {
	Reply   string `json:"reply"`
	Resolve bool   `json:"resolve"`
}

// QueryService manages support tickets.
type QueryService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req *CreateQueryRequest) (*models.Query, error)
	ListForTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Query, error)
	ListAll(ctx context.Context, status string, limit, offset int) ([]*models.Query, error)
	Reply(ctx context.Context, id uuid.UUID, req *ReplyQueryRequest) (*models.Query, error)
}

type queryService struct {
	repo          repositories.QueryRepository
	notifications NotificationService
	logger        *logrus.Entry
}

func NewQueryService(repo repositories.QueryRepository, notifications NotificationService, logger *logrus.Logger) QueryService {
	return &queryService{
		repo:          repo,
		notifications: notifications,
		logger:        logger.WithField("component", "query_service"),
	}
}

func (s *queryService) Create(ctx context.Context, tenantID uuid.UUID, req *CreateQueryRequest) (*models.Query, error) {
	if err := common.ValidateRequiredString(req.Subject, "subject"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.Message, "message"); err != nil {
		return nil, err
	}

	q := &models.Query{
		ID:       uuid.New(),
		TenantID: tenantID,
		Subject:  strings.TrimSpace(req.Subject),
		Message:  strings.TrimSpace(req.Message),
		Status:   models.QueryOpen,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *queryService) ListForTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Query, error) {
	return s.repo.ListForTenant(ctx, tenantID, limit, offset)
}

func (s *queryService) ListAll(ctx context.Context, status string, limit, offset int) ([]*models.Query, error) {
	if status != "" && status != models.QueryOpen && status != models.QueryResolved {
		return nil, common.NewValidationError("status", "status must be open or resolved")
	}
	return s.repo.ListAll(ctx, status, limit, offset)
}

// Reply answers a ticket and tells the raising business about it.
func (s *queryService) Reply(ctx context.Context, id uuid.UUID, req *ReplyQueryRequest) (*models.Query, error) {
	if err := common.ValidateRequiredString(req.Reply, "reply"); err != nil {
		return nil, err
	}
	status := models.QueryOpen
	if req.Resolve {
		status = models.QueryResolved
	}

	reply := strings.TrimSpace(req.Reply)
	q, err := s.repo.Reply(ctx, id, reply, status)
	if err != nil {
		return nil, err
	}

	tenantID := q.TenantID
	if _, err := s.notifications.Send(ctx, &NotificationRequest{
		Title:    "Support reply: " + q.Subject,
		Message:  reply,
		TenantID: &tenantID,
	}); err != nil {
		s.logger.WithError(err).WithField("query_id", q.ID).Warn("failed to notify business of reply")
	}
	return q, nil
}
