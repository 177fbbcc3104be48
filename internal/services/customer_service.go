package services

import (
	"context"
	"strings"

	"gstbill/internal/common"
	"gstbill/internal/models"
	"gstbill/internal/repositories"

	"github.com/google/uuid"
)

// CustomerInput identifies a customer by phone within the tenant.
type CustomerInput struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
	GSTIN   *string `json:"gstin,omitempty"`
}

func (in *CustomerInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.GSTIN != nil {
		g := strings.ToUpper(strings.TrimSpace(*in.GSTIN))
		in.GSTIN = &g
		if g == "" {
			in.GSTIN = nil
		}
	}
}

func (in *CustomerInput) validate(prefix string) error {
	if in.Name == "" {
		return common.NewValidationError(prefix+"name", "customer name is required")
	}
	if err := common.ValidatePhone(in.Phone, prefix+"phone"); err != nil {
		return err
	}
	if in.GSTIN != nil {
		return common.ValidateGSTIN(*in.GSTIN, prefix+"gstin")
	}
	return nil
}

type CustomerService interface {
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in *CustomerInput) (*models.Customer, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Customer, error)
}

type customerService struct {
	repo repositories.CustomerRepository
}

func NewCustomerService(repo repositories.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

// Update fails with a conflict when the new phone number belongs to another
// customer of the same tenant.
func (s *customerService) Update(ctx context.Context, tenantID, id uuid.UUID, in *CustomerInput) (*models.Customer, error) {
	in.normalize()
	if err := in.validate(""); err != nil {
		return nil, err
	}

	customer, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	customer.Name = in.Name
	customer.Phone = in.Phone
	customer.Email = in.Email
	customer.Address = in.Address
	customer.GSTIN = in.GSTIN

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Customer, error) {
	return s.repo.List(ctx, tenantID, common.SanitizeSearchQuery(search), limit, offset)
}
