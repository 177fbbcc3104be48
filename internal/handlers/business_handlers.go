package handlers

import (
	"net/http"

	"gstbill/internal/common"
	"gstbill/internal/models"
	"gstbill/internal/services"

	"github.com/labstack/echo/v4"
)

// BusinessHandlers lets super-admins manage registered businesses.
type BusinessHandlers struct {
	businessService services.BusinessService
}

func NewBusinessHandlers(businessService services.BusinessService) *BusinessHandlers {
	return &BusinessHandlers{businessService: businessService}
}

// ListBusinesses handles GET /v1/admin/businesses
func (h *BusinessHandlers) ListBusinesses(c echo.Context) error {
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return common.SendError(c, err)
	}

	businesses, err := h.businessService.List(c.Request().Context(), c.QueryParam("search"), limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	if businesses == nil {
		businesses = []*models.Business{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"businesses": businesses,
		"limit":      limit,
		"offset":     offset,
	})
}

// GetBusiness handles GET /v1/admin/businesses/:id
func (h *BusinessHandlers) GetBusiness(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	business, err := h.businessService.Get(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, business)
}

// ActivateBusiness handles POST /v1/admin/businesses/:id/activate
func (h *BusinessHandlers) ActivateBusiness(c echo.Context) error {
	return h.setActive(c, true)
}

// DeactivateBusiness handles POST /v1/admin/businesses/:id/deactivate
func (h *BusinessHandlers) DeactivateBusiness(c echo.Context) error {
	return h.setActive(c, false)
}

func (h *BusinessHandlers) setActive(c echo.Context, active bool) error {
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.businessService.SetActive(c.Request().Context(), id, active); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
