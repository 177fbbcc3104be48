package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"gstbill/internal/common"
	"gstbill/internal/models"
	"gstbill/internal/services"

	"github.com/labstack/echo/v4"
)

// InvoiceHandlers handles HTTP requests for invoices
type InvoiceHandlers struct {
	invoiceService services.InvoiceServiceInterface
	pdfService     services.PDFService
	exportService  services.ExportService
}

func NewInvoiceHandlers(invoiceService services.InvoiceServiceInterface, pdfService services.PDFService, exportService services.ExportService) *InvoiceHandlers {
	return &InvoiceHandlers{
		invoiceService: invoiceService,
		pdfService:     pdfService,
		exportService:  exportService,
	}
}

// CreateInvoice handles POST /v1/invoices
func (h *InvoiceHandlers) CreateInvoice(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var req services.CreateInvoiceRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}

	invoice, err := h.invoiceService.Create(c.Request().Context(), tenantID, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, invoice)
}

// PreviewInvoice handles POST /v1/invoices/preview
func (h *InvoiceHandlers) PreviewInvoice(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var req services.ComputeInvoiceRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}

	resp, err := h.invoiceService.Preview(c.Request().Context(), tenantID, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetInvoice handles GET /v1/invoices/:id
func (h *InvoiceHandlers) GetInvoice(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	invoice, err := h.invoiceService.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice handles PUT /v1/invoices/:id
func (h *InvoiceHandlers) UpdateInvoice(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}
	var req services.UpdateInvoiceRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}

	invoice, err := h.invoiceService.Update(c.Request().Context(), tenantID, id, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice handles DELETE /v1/invoices/:id
func (h *InvoiceHandlers) DeleteInvoice(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.invoiceService.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func invoiceFilter(c echo.Context) (models.InvoiceFilter, error) {
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return models.InvoiceFilter{}, err
	}
	from, err := queryDate(c, "from")
	if err != nil {
		return models.InvoiceFilter{}, err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return models.InvoiceFilter{}, err
	}
	// A bare date for "to" covers the whole day.
	if to != nil && c.QueryParam("to") == to.Format("2006-01-02") {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return models.InvoiceFilter{
		From:   from,
		To:     to,
		Search: c.QueryParam("search"),
		Limit:  limit,
		Offset: offset,
	}, nil
}

// ListInvoices handles GET /v1/invoices
func (h *InvoiceHandlers) ListInvoices(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	filter, err := invoiceFilter(c)
	if err != nil {
		return common.SendError(c, err)
	}

	invoices, total, err := h.invoiceService.List(c.Request().Context(), tenantID, filter)
	if err != nil {
		return common.SendError(c, err)
	}
	if invoices == nil {
		invoices = []*models.InvoiceDetail{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"total":    total,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// ExportInvoices handles GET /v1/invoices/export?format=csv|xlsx
func (h *InvoiceHandlers) ExportInvoices(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	filter, err := invoiceFilter(c)
	if err != nil {
		return common.SendError(c, err)
	}
	format := c.QueryParam("format")
	if format == "" {
		format = services.ExportCSV
	}

	var buf bytes.Buffer
	if err := h.exportService.Export(c.Request().Context(), tenantID, format, filter, &buf); err != nil {
		return common.SendError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=invoices.%s", format))
	return c.Blob(http.StatusOK, services.ContentType(format), buf.Bytes())
}

// InvoicePDF handles GET /v1/invoices/:id/pdf
func (h *InvoiceHandlers) InvoicePDF(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	url, err := h.pdfService.Link(c.Request().Context(), tenantID, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
