package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"gstbill/internal/billing"
	"gstbill/internal/common"
	"gstbill/internal/models"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"
)

var exportHeaders = []string{"Invoice Number", "Customer Name", "Customer Phone", "Date", "Subtotal", "Tax", "Grand Total"}

// ExportService writes invoice listings as spreadsheets.
type ExportService interface {
	Export(ctx context.Context, tenantID uuid.UUID, format string, filter models.InvoiceFilter, w io.Writer) error
}

type exportService struct {
	invoices InvoiceServiceInterface
}

func NewExportService(invoices InvoiceServiceInterface) ExportService {
	return &exportService{invoices: invoices}
}

// ContentType returns the MIME type for an export format.
func ContentType(format string) string {
	if format == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Export ignores the filter's pagination and writes every matching invoice.
func (s *exportService) Export(ctx context.Context, tenantID uuid.UUID, format string, filter models.InvoiceFilter, w io.Writer) error {
	if format == "" {
		format = ExportCSV
	}
	if format != ExportCSV && format != ExportXLSX {
		return common.NewValidationError("format", "format must be csv or xlsx")
	}

	filter.Limit, filter.Offset = 0, 0
	invoices, _, err := s.invoices.List(ctx, tenantID, filter)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, exportRow(inv))
	}

	if format == ExportXLSX {
		return writeXLSX(w, rows)
	}
	return writeCSV(w, rows)
}

func exportRow(inv *models.InvoiceDetail) []string {
	return []string{
		inv.InvoiceNumber,
		inv.Customer.Name,
		inv.Customer.Phone,
		inv.InvoiceDate.Format("2006-01-02"),
		billing.FormatAmount(inv.Subtotal),
		billing.FormatAmount(inv.TaxAmount),
		billing.FormatAmount(inv.GrandTotal),
	}
}

func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeaders); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing csv export: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Invoices"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}

		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, 18); err != nil {
			return err
		}
	}

	// Amount columns go in as text so they keep the two decimal places.
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("writing cell %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing xlsx export: %w", err)
	}
	return nil
}
