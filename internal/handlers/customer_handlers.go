package handlers

import (
	"net/http"

	"gstbill/internal/common"
	"gstbill/internal/models"
	"gstbill/internal/services"

	"github.com/labstack/echo/v4"
)

type CustomerHandlers struct {
	customerService services.CustomerService
}

func NewCustomerHandlers(customerService services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{customerService: customerService}
}

// ListCustomers handles GET /v1/customers
func (h *CustomerHandlers) ListCustomers(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return common.SendError(c, err)
	}

	customers, err := h.customerService.List(c.Request().Context(), tenantID, c.QueryParam("search"), limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	if customers == nil {
		customers = []*models.Customer{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"customers": customers,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetCustomer handles GET /v1/customers/:id
func (h *CustomerHandlers) GetCustomer(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	customer, err := h.customerService.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// UpdateCustomer handles PUT /v1/customers/:id
func (h *CustomerHandlers) UpdateCustomer(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	var req services.CustomerInput
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}

	customer, err := h.customerService.Update(c.Request().Context(), tenantID, id, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}
