package services

import (
	"context"
	"errors"
	"time"

	"gstbill/internal/billing"
	"gstbill/internal/common"
	"gstbill/internal/models"
	"gstbill/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CreateInvoiceRequest struct {
	Customer               CustomerInput     `json:"customer"`
	Items                  []LineItemRequest `json:"items"`
	OverallDiscountPercent float64           `json:"overallDiscountPercent"`
	InvoiceDate            *time.Time        `json:"invoiceDate,omitempty"`
	Notes                  *string           `json:"notes,omitempty"`
}

// UpdateInvoiceRequest is a patch. Nil fields keep their stored values; a
// non-nil Items replaces the whole item list.
type UpdateInvoiceRequest struct {
	Customer               *CustomerInput    `json:"customer,omitempty"`
	Items                  []LineItemRequest `json:"items,omitempty"`
	OverallDiscountPercent *float64          `json:"overallDiscountPercent,omitempty"`
	InvoiceDate            *time.Time        `json:"invoiceDate,omitempty"`
	Notes                  *string           `json:"notes,omitempty"`
}

type ComputeInvoiceRequest struct {
	Items                  []LineItemRequest `json:"items"`
	OverallDiscountPercent float64           `json:"overallDiscountPercent"`
}

type ComputeInvoiceResponse struct {
	billing.InvoiceTotals
	Items []billing.LineItemResult `json:"items"`
}

type InvoiceServiceInterface interface {
	Create(ctx context.Context, tenantID uuid.UUID, req *CreateInvoiceRequest) (*models.InvoiceDetail, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.InvoiceDetail, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req *UpdateInvoiceRequest) (*models.InvoiceDetail, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter models.InvoiceFilter) ([]*models.InvoiceDetail, int, error)
	Preview(ctx context.Context, tenantID uuid.UUID, req *ComputeInvoiceRequest) (*ComputeInvoiceResponse, error)
}

type invoiceService struct {
	invoiceRepo  repositories.InvoiceRepository
	customerRepo repositories.CustomerRepository
	items        ItemService
	resolver     LineItemResolver
	logger       *logrus.Entry
	now          func() time.Time
}

func NewInvoiceService(
	invoiceRepo repositories.InvoiceRepository,
	customerRepo repositories.CustomerRepository,
	items ItemService,
	logger *logrus.Logger,
) InvoiceServiceInterface {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		items:        items,
		resolver:     NewLineItemResolver(items),
		logger:       logger.WithField("component", "invoice_service"),
		now:          time.Now,
	}
}

// Create validates and computes everything before the first write, so a
// rejected request leaves no trace.
func (s *invoiceService) Create(ctx context.Context, tenantID uuid.UUID, req *CreateInvoiceRequest) (*models.InvoiceDetail, error) {
	req.Customer.normalize()
	if err := req.Customer.validate("customer."); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, common.NewValidationError("items", "at least one item is required")
	}

	resolution, computation, err := s.compute(ctx, tenantID, req.Items, req.OverallDiscountPercent)
	if err != nil {
		return nil, err
	}

	customer, err := s.upsertCustomer(ctx, tenantID, &req.Customer)
	if err != nil {
		return nil, err
	}
	s.items.AddIfAbsent(ctx, resolution.NewItems)

	now := s.now()
	invoice := &models.Invoice{
		ID:                     uuid.New(),
		TenantID:               tenantID,
		CustomerID:             customer.ID,
		InvoiceDate:            now,
		OverallDiscountPercent: req.OverallDiscountPercent,
		Notes:                  req.Notes,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if req.InvoiceDate != nil {
		invoice.InvoiceDate = *req.InvoiceDate
	}
	applyComputation(invoice, computation)

	if err := s.persistWithNumber(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":      tenantID,
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
		"grand_total":    billing.FormatAmount(invoice.GrandTotal),
	}).Info("invoice created")

	return &models.InvoiceDetail{Invoice: *invoice, Customer: *customer}, nil
}

// persistWithNumber draws an invoice number and writes the invoice, drawing a
// fresh number once if the first collides.
func (s *invoiceService) persistWithNumber(ctx context.Context, invoice *models.Invoice) error {
	const attempts = 2

	for attempt := 1; ; attempt++ {
		number, err := s.invoiceRepo.NextInvoiceNumber(ctx, invoice.TenantID, s.now())
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number

		err = s.invoiceRepo.Create(ctx, invoice)
		if err == nil {
			return nil
		}
		if !errors.Is(err, common.ErrDuplicateInvoiceNumber) || attempt == attempts {
			return err
		}
		s.logger.WithFields(logrus.Fields{
			"tenant_id":      invoice.TenantID,
			"invoice_number": number,
		}).Warn("invoice number collision, retrying with a fresh number")
	}
}

func (s *invoiceService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.InvoiceDetail, error) {
	return s.invoiceRepo.GetByID(ctx, tenantID, id)
}

// Update always recomputes every total. When the patch carries no items the
// stored snapshot rows are fed back through the calculator, so a changed
// overall discount still produces consistent figures.
func (s *invoiceService) Update(ctx context.Context, tenantID, id uuid.UUID, req *UpdateInvoiceRequest) (*models.InvoiceDetail, error) {
	if req.Customer != nil {
		req.Customer.normalize()
		if err := req.Customer.validate("customer."); err != nil {
			return nil, err
		}
	}
	if req.Items != nil && len(req.Items) == 0 {
		return nil, common.NewValidationError("items", "at least one item is required")
	}

	existing, err := s.invoiceRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	overall := existing.OverallDiscountPercent
	if req.OverallDiscountPercent != nil {
		overall = *req.OverallDiscountPercent
	}

	var (
		computation *billing.Computation
		newItems    []*models.Item
	)
	if req.Items != nil {
		resolution, c, err := s.compute(ctx, tenantID, req.Items, overall)
		if err != nil {
			return nil, err
		}
		computation, newItems = c, resolution.NewItems
	} else {
		computation, err = billing.Compute(lineItemsFromSnapshot(existing.Items), overall)
		if err != nil {
			return nil, err
		}
	}

	customer := existing.Customer
	if req.Customer != nil {
		upserted, err := s.upsertCustomer(ctx, tenantID, req.Customer)
		if err != nil {
			return nil, err
		}
		customer = *upserted
	}
	s.items.AddIfAbsent(ctx, newItems)

	invoice := existing.Invoice
	invoice.CustomerID = customer.ID
	invoice.OverallDiscountPercent = overall
	if req.InvoiceDate != nil {
		invoice.InvoiceDate = *req.InvoiceDate
	}
	if req.Notes != nil {
		invoice.Notes = req.Notes
	}
	invoice.UpdatedAt = s.now()
	applyComputation(&invoice, computation)

	if err := s.invoiceRepo.Update(ctx, &invoice); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":      tenantID,
		"invoice_id":     invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
	}).Info("invoice updated")

	return &models.InvoiceDetail{Invoice: invoice, Customer: customer}, nil
}

func (s *invoiceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.invoiceRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"tenant_id": tenantID, "invoice_id": id}).Info("invoice deleted")
	return nil
}

func (s *invoiceService) List(ctx context.Context, tenantID uuid.UUID, filter models.InvoiceFilter) ([]*models.InvoiceDetail, int, error) {
	filter.Search = common.SanitizeSearchQuery(filter.Search)
	if filter.From != nil && filter.To != nil {
		if err := common.ValidateDateRange(*filter.From, *filter.To); err != nil {
			return nil, 0, err
		}
	}
	return s.invoiceRepo.List(ctx, tenantID, filter)
}

// Preview runs the same resolution and calculation as Create without writing anything.
func (s *invoiceService) Preview(ctx context.Context, tenantID uuid.UUID, req *ComputeInvoiceRequest) (*ComputeInvoiceResponse, error) {
	_, computation, err := s.compute(ctx, tenantID, req.Items, req.OverallDiscountPercent)
	if err != nil {
		return nil, err
	}
	return &ComputeInvoiceResponse{InvoiceTotals: computation.Totals, Items: computation.Items}, nil
}

func (s *invoiceService) compute(ctx context.Context, tenantID uuid.UUID, requests []LineItemRequest, overall float64) (*Resolution, *billing.Computation, error) {
	if err := billing.ValidateOverallDiscount(overall); err != nil {
		return nil, nil, err
	}
	resolution, err := s.resolver.Resolve(ctx, tenantID, requests)
	if err != nil {
		return nil, nil, err
	}
	computation, err := billing.Compute(resolution.Items, overall)
	if err != nil {
		return nil, nil, err
	}
	return resolution, computation, nil
}

func (s *invoiceService) upsertCustomer(ctx context.Context, tenantID uuid.UUID, in *CustomerInput) (*models.Customer, error) {
	return s.customerRepo.UpsertByPhone(ctx, &models.Customer{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     in.Name,
		Phone:    in.Phone,
		Email:    in.Email,
		Address:  in.Address,
		GSTIN:    in.GSTIN,
	})
}

// applyComputation copies computed figures onto the invoice and rebuilds its
// item snapshot.
func applyComputation(invoice *models.Invoice, c *billing.Computation) {
	invoice.Subtotal = c.Totals.Subtotal
	invoice.TotalItemDiscount = c.Totals.TotalItemDiscount
	invoice.TotalOverallDiscount = c.Totals.TotalOverallDiscount
	invoice.TotalAmount = c.Totals.TotalTaxableValue
	invoice.TaxAmount = c.Totals.TotalTax
	invoice.GrandTotal = c.Totals.GrandTotal

	invoice.Items = make([]models.InvoiceItem, len(c.Items))
	for i, r := range c.Items {
		it := models.InvoiceItem{
			ID:                   uuid.New(),
			InvoiceID:            invoice.ID,
			Position:             i,
			ItemName:             r.Name,
			Quantity:             r.Quantity,
			Price:                r.UnitPrice,
			Discount:             r.DiscountPercent,
			GSTRate:              r.GSTRatePercent,
			GrossAmount:          r.GrossAmount,
			DiscountAmount:       r.DiscountAmount,
			OverallDiscountShare: r.OverallDiscountShare,
			TaxableValue:         r.TaxableValue,
			TaxAmount:            r.TaxAmount,
			Amount:               r.FinalAmount,
		}
		if r.Description != "" {
			desc := r.Description
			it.Description = &desc
		}
		invoice.Items[i] = it
	}
}

func lineItemsFromSnapshot(rows []models.InvoiceItem) []billing.LineItem {
	items := make([]billing.LineItem, len(rows))
	for i, row := range rows {
		items[i] = billing.LineItem{
			Name:            row.ItemName,
			Description:     common.SafeString(row.Description),
			Quantity:        row.Quantity,
			UnitPrice:       row.Price,
			DiscountPercent: row.Discount,
			GSTRatePercent:  row.GSTRate,
		}
	}
	return items
}
