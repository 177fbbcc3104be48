package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"gstbill/internal/billing"
	"gstbill/internal/models"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
)

const pdfLinkExpiry = 15 * time.Minute

// PDFService renders stored invoices. Figures come from the persisted
// snapshot; nothing is recalculated here.
type PDFService interface {
	Render(detail *models.InvoiceDetail, seller *models.Business) ([]byte, error)
	Link(ctx context.Context, tenantID, invoiceID uuid.UUID) (string, error)
}

type pdfService struct {
	invoices   InvoiceServiceInterface
	businesses BusinessService
	storage    StorageService
	logger     *logrus.Entry
}

func NewPDFService(invoices InvoiceServiceInterface, businesses BusinessService, storage StorageService, logger *logrus.Logger) PDFService {
	return &pdfService{
		invoices:   invoices,
		businesses: businesses,
		storage:    storage,
		logger:     logger.WithField("component", "pdf_service"),
	}
}

// Link renders the invoice, stores it and returns a short-lived download URL.
func (s *pdfService) Link(ctx context.Context, tenantID, invoiceID uuid.UUID) (string, error) {
	detail, err := s.invoices.Get(ctx, tenantID, invoiceID)
	if err != nil {
		return "", err
	}
	seller, err := s.businesses.Get(ctx, tenantID)
	if err != nil {
		return "", err
	}

	data, err := s.Render(detail, seller)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("%s/%s.pdf", tenantID, detail.InvoiceNumber)
	if err := s.storage.Upload(ctx, objectName, bytes.NewReader(data), int64(len(data)), "application/pdf"); err != nil {
		return "", fmt.Errorf("uploading invoice pdf: %w", err)
	}

	url, err := s.storage.PresignedURL(ctx, objectName, pdfLinkExpiry)
	if err != nil {
		return "", fmt.Errorf("presigning invoice pdf: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"invoice_id": invoiceID,
		"object":     objectName,
	}).Info("invoice pdf stored")
	return url, nil
}

var (
	itemHeaders = []string{"#", "Item", "Qty", "Rate", "Disc %", "GST %", "Taxable", "GST", "Amount"}
	itemWidths  = []float64{8, 52, 14, 20, 14, 14, 22, 18, 18}
)

func (s *pdfService) Render(detail *models.InvoiceDetail, seller *models.Business) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	margin := 15.0
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()
	pdf.SetTextColor(33, 37, 41)

	// Seller
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 9, tr(seller.Name))
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 9)
	if seller.Address != nil && *seller.Address != "" {
		pdf.MultiCell(100, 4.5, tr(*seller.Address), "", "L", false)
	}
	if seller.GSTIN != nil && *seller.GSTIN != "" {
		pdf.Cell(0, 5, "GSTIN: "+*seller.GSTIN)
		pdf.Ln(5)
	}
	if seller.Phone != nil && *seller.Phone != "" {
		pdf.Cell(0, 5, "Phone: "+*seller.Phone)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, "TAX INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// Invoice meta on the right, customer on the left
	top := pdf.GetY()
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, "Bill To:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 9)
	customer := detail.Customer
	pdf.Cell(0, 5, tr(customer.Name))
	pdf.Ln(5)
	pdf.Cell(0, 5, "Phone: "+customer.Phone)
	pdf.Ln(5)
	if customer.Address != nil && *customer.Address != "" {
		pdf.MultiCell(100, 4.5, tr(*customer.Address), "", "L", false)
	}
	if customer.GSTIN != nil && *customer.GSTIN != "" {
		pdf.Cell(0, 5, "GSTIN: "+*customer.GSTIN)
		pdf.Ln(5)
	}
	bottom := pdf.GetY()

	pdf.SetXY(125, top)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(70, 5, "Invoice No: "+detail.InvoiceNumber, "", 2, "R", false, 0, "")
	pdf.CellFormat(70, 5, "Date: "+detail.InvoiceDate.Format("02-Jan-2006"), "", 2, "R", false, 0, "")

	pdf.SetXY(margin, bottom+6)

	// Items
	pdf.SetFont("Arial", "B", 8)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range itemHeaders {
		pdf.CellFormat(itemWidths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 8)
	for _, item := range detail.Items {
		cells := []string{
			fmt.Sprintf("%d", item.Position+1),
			tr(item.ItemName),
			billing.FormatQuantity(item.Quantity),
			billing.FormatAmount(item.Price),
			billing.FormatQuantity(item.Discount),
			billing.FormatQuantity(item.GSTRate),
			billing.FormatAmount(item.TaxableValue),
			billing.FormatAmount(item.TaxAmount),
			billing.FormatAmount(item.Amount),
		}
		for i, text := range cells {
			align := "R"
			if i == 1 {
				align = "L"
			}
			pdf.CellFormat(itemWidths[i], 6, text, "1", 0, align, false, 0, "")
		}
		pdf.Ln(6)
	}
	pdf.Ln(4)

	// Totals
	totals := []struct {
		label string
		value float64
	}{
		{"Subtotal", detail.Subtotal},
		{"Item discount", -detail.TotalItemDiscount},
		{fmt.Sprintf("Overall discount (%s%%)", billing.FormatQuantity(detail.OverallDiscountPercent)), -detail.TotalOverallDiscount},
		{"Taxable value", detail.TotalAmount},
		{"GST", detail.TaxAmount},
	}
	pdf.SetFont("Arial", "", 9)
	for _, t := range totals {
		pdf.CellFormat(140, 6, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, billing.FormatAmount(t.value), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(140, 8, "Grand Total (INR)", "T", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, billing.FormatAmount(detail.GrandTotal), "T", 1, "R", false, 0, "")

	if detail.Notes != nil && *detail.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 9)
		pdf.Cell(0, 5, "Notes:")
		pdf.Ln(5)
		pdf.SetFont("Arial", "", 8)
		pdf.MultiCell(0, 4, tr(*detail.Notes), "", "L", false)
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, "This is a computer generated invoice.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
