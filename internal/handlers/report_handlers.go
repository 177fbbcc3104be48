package handlers

import (
	"net/http"
	"time"

	"gstbill/internal/analytics"
	"gstbill/internal/common"

	"github.com/labstack/echo/v4"
)

type ReportHandlers struct {
	analytics analytics.Service
}

func NewReportHandlers(analyticsService analytics.Service) *ReportHandlers {
	return &ReportHandlers{analytics: analyticsService}
}

// SalesReport handles GET /v1/reports/sales?from=&to=
func (h *ReportHandlers) SalesReport(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	from, err := queryDate(c, "from")
	if err != nil {
		return common.SendError(c, err)
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return common.SendError(c, err)
	}
	if to != nil && c.QueryParam("to") == to.Format("2006-01-02") {
		end := to.Add(24 * time.Hour)
		to = &end
	}

	report, err := h.analytics.SalesReport(c.Request().Context(), tenantID, from, to)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
