package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gstbill/internal/billing"
	"gstbill/internal/caching"
	"gstbill/internal/common"
	"gstbill/internal/models"
	"gstbill/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const itemCacheTTL = 15 * time.Minute

type ItemRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	HSNCode     *string `json:"hsn_code"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
	GSTRate     float64 `json:"gst_rate"`
}

type ItemService interface {
	ItemCatalog
	Create(ctx context.Context, tenantID uuid.UUID, req *ItemRequest) (*models.Item, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req *ItemRequest) (*models.Item, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Item, error)
	AddIfAbsent(ctx context.Context, items []*models.Item)
}

type itemService struct {
	repo   repositories.ItemRepository
	cache  caching.CacheService
	logger *logrus.Entry
}

func NewItemService(repo repositories.ItemRepository, cache caching.CacheService, logger *logrus.Logger) ItemService {
	return &itemService{
		repo:   repo,
		cache:  cache,
		logger: logger.WithField("component", "item_service"),
	}
}

func validateItemRequest(req *ItemRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return common.NewValidationError("name", "name is required")
	}
	if err := billing.ValidatePrice("price", req.Price); err != nil {
		return err
	}
	if err := billing.ValidatePercent("discount", req.Discount); err != nil {
		return err
	}
	return billing.ValidatePercent("gst_rate", req.GSTRate)
}

// Lookup reads through the cache. Cache failures are logged and fall back to
// the database.
func (s *itemService) Lookup(ctx context.Context, tenantID uuid.UUID, name string) (*models.Item, error) {
	if cached, err := s.cache.GetItem(ctx, tenantID, name); err != nil {
		s.logger.WithError(err).Warn("item cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	item, err := s.repo.GetByName(ctx, tenantID, name)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := s.cache.SetItem(ctx, item, itemCacheTTL); err != nil {
		s.logger.WithError(err).Warn("item cache write failed")
	}
	return item, nil
}

func (s *itemService) Create(ctx context.Context, tenantID uuid.UUID, req *ItemRequest) (*models.Item, error) {
	if err := validateItemRequest(req); err != nil {
		return nil, err
	}

	item := &models.Item{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		HSNCode:     req.HSNCode,
		Price:       req.Price,
		Discount:    req.Discount,
		GSTRate:     req.GSTRate,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.evict(ctx, tenantID, item.Name)
	return item, nil
}

func (s *itemService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

// Update changes only the catalog. Invoices keep the values they were created with.
func (s *itemService) Update(ctx context.Context, tenantID, id uuid.UUID, req *ItemRequest) (*models.Item, error) {
	if err := validateItemRequest(req); err != nil {
		return nil, err
	}

	item, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	oldName := item.Name

	item.Name = strings.TrimSpace(req.Name)
	item.Description = req.Description
	item.HSNCode = req.HSNCode
	item.Price = req.Price
	item.Discount = req.Discount
	item.GSTRate = req.GSTRate

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	s.evict(ctx, tenantID, oldName)
	if !strings.EqualFold(oldName, item.Name) {
		s.evict(ctx, tenantID, item.Name)
	}
	return item, nil
}

func (s *itemService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	item, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.evict(ctx, tenantID, item.Name)
	return nil
}

func (s *itemService) List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Item, error) {
	return s.repo.List(ctx, tenantID, common.SanitizeSearchQuery(search), limit, offset)
}

// AddIfAbsent stores catalog entries discovered while invoicing. Failures are
// logged; they never fail the invoice that triggered them.
func (s *itemService) AddIfAbsent(ctx context.Context, items []*models.Item) {
	for _, item := range items {
		inserted, err := s.repo.InsertIfAbsent(ctx, item)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"tenant_id": item.TenantID,
				"item_name": item.Name,
			}).Warn("failed to add item to catalog")
			continue
		}
		if inserted {
			s.evict(ctx, item.TenantID, item.Name)
		}
	}
}

func (s *itemService) evict(ctx context.Context, tenantID uuid.UUID, name string) {
	if err := s.cache.DeleteItem(ctx, tenantID, name); err != nil {
		s.logger.WithError(err).Warn("item cache eviction failed")
	}
}
