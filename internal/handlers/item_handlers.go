package handlers

import (
	"net/http"

	"gstbill/internal/common"
	"gstbill/internal/models"
	"gstbill/internal/services"

	"github.com/labstack/echo/v4"
)

// ItemHandlers serves the tenant's item catalog.
type ItemHandlers struct {
	itemService services.ItemService
}

func NewItemHandlers(itemService services.ItemService) *ItemHandlers {
	return &ItemHandlers{itemService: itemService}
}

// CreateItem handles POST /v1/items
func (h *ItemHandlers) CreateItem(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var req services.ItemRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}

	item, err := h.itemService.Create(c.Request().Context(), tenantID, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// GetItem handles GET /v1/items/:id
func (h *ItemHandlers) GetItem(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	item, err := h.itemService.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// UpdateItem handles PUT /v1/items/:id
func (h *ItemHandlers) UpdateItem(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	var req services.ItemRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}

	item, err := h.itemService.Update(c.Request().Context(), tenantID, id, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// DeleteItem handles DELETE /v1/items/:id
func (h *ItemHandlers) DeleteItem(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.itemService.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListItems handles GET /v1/items
func (h *ItemHandlers) ListItems(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return common.SendError(c, err)
	}

	items, err := h.itemService.List(c.Request().Context(), tenantID, c.QueryParam("search"), limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	if items == nil {
		items = []*models.Item{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
	})
}
