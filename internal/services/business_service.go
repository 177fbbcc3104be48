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

type UpdateProfileRequest struct {
	Name      string  `json:"name"`
	OwnerName string  `json:"owner_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	GSTIN     *string `json:"gstin"`
}

type BusinessService interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Business, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*models.Business, error)
	List(ctx context.Context, search string, limit, offset int) ([]*models.Business, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type businessService struct {
	repo   repositories.BusinessRepository
	logger *logrus.Entry
}

func NewBusinessService(repo repositories.BusinessRepository, logger *logrus.Logger) BusinessService {
	return &businessService{repo: repo, logger: logger.WithField("component", "business_service")}
}

func (s *businessService) Get(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *businessService) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*models.Business, error) {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, err
	}
	if req.Phone != nil {
		if err := common.ValidatePhone(*req.Phone, "phone"); err != nil {
			return nil, err
		}
	}
	if req.GSTIN != nil {
		if err := common.ValidateGSTIN(*req.GSTIN, "gstin"); err != nil {
			return nil, err
		}
	}

	business, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	business.Name = strings.TrimSpace(req.Name)
	business.OwnerName = strings.TrimSpace(req.OwnerName)
	business.Phone = req.Phone
	business.Address = req.Address
	business.GSTIN = req.GSTIN

	if err := s.repo.Update(ctx, business); err != nil {
		return nil, err
	}
	return business, nil
}

func (s *businessService) List(ctx context.Context, search string, limit, offset int) ([]*models.Business, error) {
	return s.repo.List(ctx, common.SanitizeSearchQuery(search), limit, offset)
}

// SetActive toggles whether the business may log in.
func (s *businessService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	status := models.BusinessStatusInactive
	if active {
		status = models.BusinessStatusActive
	}
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"tenant_id": id, "status": status}).Info("business status changed")
	return nil
}
