package handlers

import (
	"net/http"

	"gstbill/internal/common"
	"gstbill/internal/models"
	"gstbill/internal/services"

	"github.com/labstack/echo/v4"
)

// QueryHandlers serves support tickets.
type QueryHandlers struct {
	queryService services.QueryService
}

func NewQueryHandlers(queryService services.QueryService) *QueryHandlers {
	return &QueryHandlers{queryService: queryService}
}

// CreateQuery handles POST /v1/queries
func (h *QueryHandlers) CreateQuery(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var req services.CreateQueryRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}

	q, err := h.queryService.Create(c.Request().Context(), tenantID, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, q)
}

// ListMyQueries handles GET /v1/queries
func (h *QueryHandlers) ListMyQueries(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return common.SendError(c, err)
	}

	queries, err := h.queryService.ListForTenant(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"queries": nonNilQueries(queries)})
}

// ListAllQueries handles GET /v1/admin/queries
func (h *QueryHandlers) ListAllQueries(c echo.Context) error {
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return common.SendError(c, err)
	}

	queries, err := h.queryService.ListAll(c.Request().Context(), c.QueryParam("status"), limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"queries": nonNilQueries(queries)})
}

// ReplyQuery handles POST /v1/admin/queries/:id/reply
func (h *QueryHandlers) ReplyQuery(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	var req services.ReplyQueryRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}

	q, err := h.queryService.Reply(c.Request().Context(), id, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

func nonNilQueries(q []*models.Query) []*models.Query {
	if q == nil {
		return []*models.Query{}
	}
	return q
}
