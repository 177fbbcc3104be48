package services

import (
	"context"
	"fmt"
	"strings"

	"gstbill/internal/billing"
	"gstbill/internal/common"
	"gstbill/internal/models"

	"github.com/google/uuid"
)

// LineItemRequest is one requested invoice row. Nil price, discount or GST
// rate fall back to the catalog entry with the same name.
type LineItemRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Quantity    float64  `json:"quantity"`
	Price       *float64 `json:"price,omitempty"`
	Discount    *float64 `json:"discount,omitempty"`
	GSTRate     *float64 `json:"gstRate,omitempty"`
}

// ItemCatalog is the read-only view of a tenant's catalog the resolver needs.
// Lookup returns nil, nil when no item has the name.
type ItemCatalog interface {
	Lookup(ctx context.Context, tenantID uuid.UUID, name string) (*models.Item, error)
}

// Resolution holds resolved rows plus the catalog entries that did not exist
// yet. Persisting NewItems is left to the caller.
type Resolution struct {
	Items    []billing.LineItem
	NewItems []*models.Item
}

type LineItemResolver interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, requests []LineItemRequest) (*Resolution, error)
}

type lineItemResolver struct {
	catalog ItemCatalog
}

func NewLineItemResolver(catalog ItemCatalog) LineItemResolver {
	return &lineItemResolver{catalog: catalog}
}

func (r *lineItemResolver) Resolve(ctx context.Context, tenantID uuid.UUID, requests []LineItemRequest) (*Resolution, error) {
	res := &Resolution{Items: make([]billing.LineItem, 0, len(requests))}
	seenNew := make(map[string]bool)

	for i, req := range requests {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			return nil, common.NewValidationError(fmt.Sprintf("items[%d].name", i), "item name is required")
		}

		catalogItem, err := r.catalog.Lookup(ctx, tenantID, name)
		if err != nil {
			return nil, err
		}

		item := billing.LineItem{
			Name:        name,
			Description: req.Description,
			Quantity:    req.Quantity,
		}

		switch {
		case req.Price != nil:
			item.UnitPrice = *req.Price
		case catalogItem != nil:
			item.UnitPrice = catalogItem.Price
		default:
			return nil, common.NewValidationError(fmt.Sprintf("items[%d].price", i), "price is required for items not in the catalog")
		}
		item.DiscountPercent = pick(req.Discount, catalogItem, func(ci *models.Item) float64 { return ci.Discount })
		item.GSTRatePercent = pick(req.GSTRate, catalogItem, func(ci *models.Item) float64 { return ci.GSTRate })
		if item.Description == "" && catalogItem != nil && catalogItem.Description != nil {
			item.Description = *catalogItem.Description
		}

		if err := billing.ValidateLineItem(i, item); err != nil {
			return nil, err
		}
		res.Items = append(res.Items, item)

		key := strings.ToLower(name)
		if catalogItem == nil && !seenNew[key] {
			seenNew[key] = true
			res.NewItems = append(res.NewItems, catalogEntryFor(tenantID, item))
		}
	}

	return res, nil
}

func pick(explicit *float64, catalogItem *models.Item, fromCatalog func(*models.Item) float64) float64 {
	if explicit != nil {
		return *explicit
	}
	if catalogItem != nil {
		return fromCatalog(catalogItem)
	}
	return 0
}

func catalogEntryFor(tenantID uuid.UUID, item billing.LineItem) *models.Item {
	entry := &models.Item{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     item.Name,
		Price:    item.UnitPrice,
		Discount: item.DiscountPercent,
		GSTRate:  item.GSTRatePercent,
	}
	if item.Description != "" {
		desc := item.Description
		entry.Description = &desc
	}
	return entry
}
