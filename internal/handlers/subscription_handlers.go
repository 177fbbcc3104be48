package handlers

import (
	"net/http"

	"gstbill/internal/common"
	"gstbill/internal/models"
	"gstbill/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SubscriptionHandlers handles plan purchase for businesses and plan and
// transaction management for super-admins.
type SubscriptionHandlers struct {
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandlers(subscriptionService services.SubscriptionService) *SubscriptionHandlers {
	return &SubscriptionHandlers{subscriptionService: subscriptionService}
}

// ListActivePlans handles GET /v1/plans
func (h *SubscriptionHandlers) ListActivePlans(c echo.Context) error {
	return h.listPlans(c, true)
}

// ListAllPlans handles GET /v1/admin/plans
func (h *SubscriptionHandlers) ListAllPlans(c echo.Context) error {
	return h.listPlans(c, false)
}

func (h *SubscriptionHandlers) listPlans(c echo.Context, activeOnly bool) error {
	plans, err := h.subscriptionService.ListPlans(c.Request().Context(), activeOnly)
	if err != nil {
		return common.SendError(c, err)
	}
	if plans == nil {
		plans = []*models.SubscriptionPlan{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"plans": plans})
}

// CreatePlan handles POST /v1/admin/plans
func (h *SubscriptionHandlers) CreatePlan(c echo.Context) error {
	var req services.PlanRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}

	plan, err := h.subscriptionService.CreatePlan(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, plan)
}

// UpdatePlan handles PUT /v1/admin/plans/:id
func (h *SubscriptionHandlers) UpdatePlan(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	var req services.PlanRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}

	plan, err := h.subscriptionService.UpdatePlan(c.Request().Context(), id, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}

// DeletePlan handles DELETE /v1/admin/plans/:id
func (h *SubscriptionHandlers) DeletePlan(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.subscriptionService.DeletePlan(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateOrder handles POST /v1/subscriptions/order
func (h *SubscriptionHandlers) CreateOrder(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var req services.CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}

	resp, err := h.subscriptionService.CreateOrder(c.Request().Context(), tenantID, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// VerifyPayment handles POST /v1/subscriptions/verify
func (h *SubscriptionHandlers) VerifyPayment(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var req services.VerifyPaymentRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}

	resp, err := h.subscriptionService.VerifyPayment(c.Request().Context(), tenantID, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListMyTransactions handles GET /v1/subscriptions/transactions
func (h *SubscriptionHandlers) ListMyTransactions(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	return h.listTransactions(c, &tenantID)
}

// ListTransactions handles GET /v1/admin/transactions
func (h *SubscriptionHandlers) ListTransactions(c echo.Context) error {
	return h.listTransactions(c, nil)
}

func (h *SubscriptionHandlers) listTransactions(c echo.Context, tenantID *uuid.UUID) error {
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return common.SendError(c, err)
	}

	txns, err := h.subscriptionService.ListTransactions(c.Request().Context(), tenantID, c.QueryParam("status"), limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	if txns == nil {
		txns = []*models.Transaction{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"transactions": txns,
		"limit":        limit,
		"offset":       offset,
	})
}
