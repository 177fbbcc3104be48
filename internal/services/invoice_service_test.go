package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gstbill/internal/common"
	"gstbill/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const delta = 1e-9

type InvoiceServiceTestSuite struct {
	suite.Suite
	invoices  *MockInvoiceRepository
	customers *MockCustomerRepository
	items     *MockItemService
	service   *invoiceService
	tenantID  uuid.UUID
	now       time.Time
	ctx       context.Context
}

func (suite *InvoiceServiceTestSuite) SetupTest() {
	suite.invoices = &MockInvoiceRepository{}
	suite.customers = &MockCustomerRepository{}
	suite.items = &MockItemService{}
	suite.invoices.Test(suite.T())
	suite.customers.Test(suite.T())
	suite.items.Test(suite.T())

	suite.service = NewInvoiceService(suite.invoices, suite.customers, suite.items, testLogger()).(*invoiceService)
	suite.now = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	suite.service.now = func() time.Time { return suite.now }
	suite.tenantID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *InvoiceServiceTestSuite) TearDownTest() {
	suite.invoices.AssertExpectations(suite.T())
	suite.customers.AssertExpectations(suite.T())
	suite.items.AssertExpectations(suite.T())
}

func TestInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}

func (suite *InvoiceServiceTestSuite) widget() *models.Item {
	return &models.Item{
		ID:       uuid.New(),
		TenantID: suite.tenantID,
		Name:     "Widget",
		Price:    100,
		Discount: 10,
		GSTRate:  18,
	}
}

func (suite *InvoiceServiceTestSuite) customerFor(in CustomerInput) *models.Customer {
	return &models.Customer{ID: uuid.New(), TenantID: suite.tenantID, Name: in.Name, Phone: in.Phone}
}

func (suite *InvoiceServiceTestSuite) createRequest() *CreateInvoiceRequest {
	return &CreateInvoiceRequest{
		Customer:               CustomerInput{Name: "Asha Traders", Phone: "9876543210"},
		Items:                  []LineItemRequest{{Name: "Widget", Quantity: 2}},
		OverallDiscountPercent: 10,
	}
}

func (suite *InvoiceServiceTestSuite) TestCreate_UsesCatalogDefaultsAndPersists() {
	req := suite.createRequest()
	customer := suite.customerFor(req.Customer)

	suite.items.On("Lookup", suite.ctx, suite.tenantID, "Widget").Return(suite.widget(), nil)
	suite.customers.On("UpsertByPhone", suite.ctx, mock.AnythingOfType("*models.Customer")).Return(customer, nil)
	suite.items.On("AddIfAbsent", suite.ctx, []*models.Item(nil)).Return()
	suite.invoices.On("NextInvoiceNumber", suite.ctx, suite.tenantID, suite.now).Return("INV-202610-000001", nil)
	suite.invoices.On("Create", suite.ctx, mock.AnythingOfType("*models.Invoice")).Return(nil)

	detail, err := suite.service.Create(suite.ctx, suite.tenantID, req)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "INV-202610-000001", detail.InvoiceNumber)
	assert.Equal(suite.T(), customer.ID, detail.CustomerID)
	assert.Equal(suite.T(), suite.now, detail.InvoiceDate)
	assert.InDelta(suite.T(), 200.0, detail.Subtotal, delta)
	assert.InDelta(suite.T(), 20.0, detail.TotalItemDiscount, delta)
	assert.InDelta(suite.T(), 18.0, detail.TotalOverallDiscount, delta)
	assert.InDelta(suite.T(), 162.0, detail.TotalAmount, delta)
	assert.InDelta(suite.T(), 29.16, detail.TaxAmount, delta)
	assert.InDelta(suite.T(), 191.16, detail.GrandTotal, delta)

	require.Len(suite.T(), detail.Items, 1)
	item := detail.Items[0]
	assert.Equal(suite.T(), 0, item.Position)
	assert.Equal(suite.T(), detail.ID, item.InvoiceID)
	assert.Equal(suite.T(), 100.0, item.Price)
	assert.Equal(suite.T(), 10.0, item.Discount)
	assert.Equal(suite.T(), 18.0, item.GSTRate)
}

func (suite *InvoiceServiceTestSuite) TestCreate_NewItemAddedToCatalogAfterValidation() {
	req := suite.createRequest()
	req.Items = []LineItemRequest{{Name: "Gadget", Quantity: 1, Price: floatPtr(50), GSTRate: floatPtr(5)}}
	customer := suite.customerFor(req.Customer)

	suite.items.On("Lookup", suite.ctx, suite.tenantID, "Gadget").Return(nil, nil)
	suite.customers.On("UpsertByPhone", suite.ctx, mock.Anything).Return(customer, nil)
	suite.items.On("AddIfAbsent", suite.ctx, mock.MatchedBy(func(items []*models.Item) bool {
		return len(items) == 1 && items[0].Name == "Gadget" && items[0].Price == 50 && items[0].GSTRate == 5
	})).Return()
	suite.invoices.On("NextInvoiceNumber", suite.ctx, suite.tenantID, suite.now).Return("INV-202610-000002", nil)
	suite.invoices.On("Create", suite.ctx, mock.Anything).Return(nil)

	detail, err := suite.service.Create(suite.ctx, suite.tenantID, req)
	require.NoError(suite.T(), err)
	assert.InDelta(suite.T(), 47.25, detail.GrandTotal, delta)
}

func (suite *InvoiceServiceTestSuite) TestCreate_InvalidItemWritesNothing() {
	req := suite.createRequest()
	req.Items = []LineItemRequest{
		{Name: "Widget", Quantity: 1},
		{Name: "Widget", Quantity: 0},
	}
	suite.items.On("Lookup", suite.ctx, suite.tenantID, "Widget").Return(suite.widget(), nil)

	detail, err := suite.service.Create(suite.ctx, suite.tenantID, req)
	assert.Nil(suite.T(), detail)
	require.Error(suite.T(), err)

	var appErr *common.AppError
	require.True(suite.T(), errors.As(err, &appErr))
	assert.Equal(suite.T(), common.KindValidation, appErr.Kind)
	assert.Equal(suite.T(), "items[1].quantity", appErr.Field)

	suite.customers.AssertNotCalled(suite.T(), "UpsertByPhone", mock.Anything, mock.Anything)
	suite.invoices.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestCreate_MissingPriceForUnknownItem() {
	req := suite.createRequest()
	req.Items = []LineItemRequest{{Name: "Mystery", Quantity: 1}}
	suite.items.On("Lookup", suite.ctx, suite.tenantID, "Mystery").Return(nil, nil)

	_, err := suite.service.Create(suite.ctx, suite.tenantID, req)

	var appErr *common.AppError
	require.True(suite.T(), errors.As(err, &appErr))
	assert.Equal(suite.T(), "items[0].price", appErr.Field)
}

func (suite *InvoiceServiceTestSuite) TestCreate_RejectsBadOverallDiscountBeforeLookup() {
	req := suite.createRequest()
	req.OverallDiscountPercent = 120

	_, err := suite.service.Create(suite.ctx, suite.tenantID, req)
	assert.True(suite.T(), errors.Is(err, common.ErrValidation))
	suite.items.AssertNotCalled(suite.T(), "Lookup", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestCreate_RequiresCustomerAndItems() {
	req := suite.createRequest()
	req.Customer.Phone = "12ab"
	_, err := suite.service.Create(suite.ctx, suite.tenantID, req)
	var appErr *common.AppError
	require.True(suite.T(), errors.As(err, &appErr))
	assert.Equal(suite.T(), "customer.phone", appErr.Field)

	req = suite.createRequest()
	req.Items = nil
	_, err = suite.service.Create(suite.ctx, suite.tenantID, req)
	require.True(suite.T(), errors.As(err, &appErr))
	assert.Equal(suite.T(), "items", appErr.Field)
}

func (suite *InvoiceServiceTestSuite) TestCreate_RetriesOnceOnDuplicateNumber() {
	req := suite.createRequest()
	customer := suite.customerFor(req.Customer)

	suite.items.On("Lookup", suite.ctx, suite.tenantID, "Widget").Return(suite.widget(), nil)
	suite.customers.On("UpsertByPhone", suite.ctx, mock.Anything).Return(customer, nil)
	suite.items.On("AddIfAbsent", suite.ctx, mock.Anything).Return()
	suite.invoices.On("NextInvoiceNumber", suite.ctx, suite.tenantID, suite.now).Return("INV-202610-000007", nil).Once()
	suite.invoices.On("NextInvoiceNumber", suite.ctx, suite.tenantID, suite.now).Return("INV-202610-000008", nil).Once()
	suite.invoices.On("Create", suite.ctx, mock.Anything).
		Return(common.NewDuplicateInvoiceNumberError("INV-202610-000007", nil)).Once()
	suite.invoices.On("Create", suite.ctx, mock.Anything).Return(nil).Once()

	detail, err := suite.service.Create(suite.ctx, suite.tenantID, req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "INV-202610-000008", detail.InvoiceNumber)
}

func (suite *InvoiceServiceTestSuite) TestCreate_SecondDuplicateFails() {
	req := suite.createRequest()
	customer := suite.customerFor(req.Customer)

	suite.items.On("Lookup", suite.ctx, suite.tenantID, "Widget").Return(suite.widget(), nil)
	suite.customers.On("UpsertByPhone", suite.ctx, mock.Anything).Return(customer, nil)
	suite.items.On("AddIfAbsent", suite.ctx, mock.Anything).Return()
	suite.invoices.On("NextInvoiceNumber", suite.ctx, suite.tenantID, suite.now).Return("INV-202610-000007", nil).Twice()
	suite.invoices.On("Create", suite.ctx, mock.Anything).
		Return(common.NewDuplicateInvoiceNumberError("INV-202610-000007", nil)).Twice()

	detail, err := suite.service.Create(suite.ctx, suite.tenantID, req)
	assert.Nil(suite.T(), detail)
	assert.True(suite.T(), errors.Is(err, common.ErrDuplicateInvoiceNumber))
}

func (suite *InvoiceServiceTestSuite) TestPreview_MatchesCreatedTotals() {
	req := suite.createRequest()
	req.Items = append(req.Items, LineItemRequest{Name: "Gadget", Quantity: 3, Price: floatPtr(33.33), Discount: floatPtr(5), GSTRate: floatPtr(12)})
	customer := suite.customerFor(req.Customer)

	suite.items.On("Lookup", suite.ctx, suite.tenantID, "Widget").Return(suite.widget(), nil)
	suite.items.On("Lookup", suite.ctx, suite.tenantID, "Gadget").Return(nil, nil)
	suite.customers.On("UpsertByPhone", suite.ctx, mock.Anything).Return(customer, nil)
	suite.items.On("AddIfAbsent", suite.ctx, mock.Anything).Return()
	suite.invoices.On("NextInvoiceNumber", suite.ctx, suite.tenantID, suite.now).Return("INV-202610-000003", nil)
	suite.invoices.On("Create", suite.ctx, mock.Anything).Return(nil)

	preview, err := suite.service.Preview(suite.ctx, suite.tenantID, &ComputeInvoiceRequest{
		Items:                  req.Items,
		OverallDiscountPercent: req.OverallDiscountPercent,
	})
	require.NoError(suite.T(), err)

	detail, err := suite.service.Create(suite.ctx, suite.tenantID, req)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), preview.Subtotal, detail.Subtotal)
	assert.Equal(suite.T(), preview.TotalItemDiscount, detail.TotalItemDiscount)
	assert.Equal(suite.T(), preview.TotalOverallDiscount, detail.TotalOverallDiscount)
	assert.Equal(suite.T(), preview.TotalTaxableValue, detail.TotalAmount)
	assert.Equal(suite.T(), preview.TotalTax, detail.TaxAmount)
	assert.Equal(suite.T(), preview.GrandTotal, detail.GrandTotal)
	require.Len(suite.T(), preview.Items, 2)
	assert.Equal(suite.T(), preview.Items[1].FinalAmount, detail.Items[1].Amount)
}

func (suite *InvoiceServiceTestSuite) TestPreview_EmptyItemsYieldZeroTotals() {
	preview, err := suite.service.Preview(suite.ctx, suite.tenantID, &ComputeInvoiceRequest{OverallDiscountPercent: 25})
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), preview.GrandTotal)
	assert.Empty(suite.T(), preview.Items)
}

func (suite *InvoiceServiceTestSuite) storedInvoice() *models.InvoiceDetail {
	id := uuid.New()
	return &models.InvoiceDetail{
		Invoice: models.Invoice{
			ID:                   id,
			TenantID:             suite.tenantID,
			CustomerID:           uuid.New(),
			InvoiceNumber:        "INV-202609-000004",
			InvoiceDate:          time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			Subtotal:             200,
			TotalItemDiscount:    20,
			TotalOverallDiscount: 0,
			TotalAmount:          180,
			TaxAmount:            32.4,
			GrandTotal:           212.4,
			Items: []models.InvoiceItem{{
				ID:             uuid.New(),
				InvoiceID:      id,
				ItemName:       "Widget",
				Quantity:       2,
				Price:          100,
				Discount:       10,
				GSTRate:        18,
				GrossAmount:    200,
				DiscountAmount: 20,
				TaxableValue:   180,
				TaxAmount:      32.4,
				Amount:         212.4,
			}},
		},
		Customer: models.Customer{ID: uuid.New(), TenantID: suite.tenantID, Name: "Asha Traders", Phone: "9876543210"},
	}
}

func (suite *InvoiceServiceTestSuite) TestUpdate_WithoutItemsRecomputesFromSnapshot() {
	existing := suite.storedInvoice()
	suite.invoices.On("GetByID", suite.ctx, suite.tenantID, existing.ID).Return(existing, nil)
	suite.items.On("AddIfAbsent", suite.ctx, []*models.Item(nil)).Return()
	suite.invoices.On("Update", suite.ctx, mock.AnythingOfType("*models.Invoice")).Return(nil)

	detail, err := suite.service.Update(suite.ctx, suite.tenantID, existing.ID, &UpdateInvoiceRequest{
		OverallDiscountPercent: floatPtr(10),
	})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "INV-202609-000004", detail.InvoiceNumber)
	assert.InDelta(suite.T(), 18.0, detail.TotalOverallDiscount, delta)
	assert.InDelta(suite.T(), 191.16, detail.GrandTotal, delta)
	assert.Equal(suite.T(), 100.0, detail.Items[0].Price)

	// The catalog is never consulted when items are not replaced.
	suite.items.AssertNotCalled(suite.T(), "Lookup", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestUpdate_NotesOnlyKeepsFigures() {
	existing := suite.storedInvoice()
	suite.invoices.On("GetByID", suite.ctx, suite.tenantID, existing.ID).Return(existing, nil)
	suite.items.On("AddIfAbsent", suite.ctx, []*models.Item(nil)).Return()
	suite.invoices.On("Update", suite.ctx, mock.Anything).Return(nil)

	detail, err := suite.service.Update(suite.ctx, suite.tenantID, existing.ID, &UpdateInvoiceRequest{
		Notes: strPtr("paid in cash"),
	})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "paid in cash", *detail.Notes)
	assert.InDelta(suite.T(), existing.GrandTotal, detail.GrandTotal, delta)
	assert.InDelta(suite.T(), existing.TaxAmount, detail.TaxAmount, delta)
	assert.Equal(suite.T(), existing.Customer.ID, detail.Customer.ID)
	assert.Equal(suite.T(), suite.now, detail.UpdatedAt)
}

func (suite *InvoiceServiceTestSuite) TestUpdate_ReplacesItems() {
	existing := suite.storedInvoice()
	suite.invoices.On("GetByID", suite.ctx, suite.tenantID, existing.ID).Return(existing, nil)
	suite.items.On("Lookup", suite.ctx, suite.tenantID, "Bolt").Return(nil, nil)
	suite.items.On("AddIfAbsent", suite.ctx, mock.Anything).Return()
	suite.invoices.On("Update", suite.ctx, mock.MatchedBy(func(inv *models.Invoice) bool {
		return len(inv.Items) == 1 && inv.Items[0].ItemName == "Bolt"
	})).Return(nil)

	detail, err := suite.service.Update(suite.ctx, suite.tenantID, existing.ID, &UpdateInvoiceRequest{
		Items: []LineItemRequest{{Name: "Bolt", Quantity: 10, Price: floatPtr(2)}},
	})
	require.NoError(suite.T(), err)
	assert.InDelta(suite.T(), 20.0, detail.GrandTotal, delta)
}

func (suite *InvoiceServiceTestSuite) TestUpdate_EmptyItemListRejected() {
	_, err := suite.service.Update(suite.ctx, suite.tenantID, uuid.New(), &UpdateInvoiceRequest{
		Items: []LineItemRequest{},
	})
	assert.True(suite.T(), errors.Is(err, common.ErrValidation))
}

func (suite *InvoiceServiceTestSuite) TestUpdate_OtherTenantNotFound() {
	id := uuid.New()
	suite.invoices.On("GetByID", suite.ctx, suite.tenantID, id).Return(nil, common.NewNotFoundError("invoice"))

	_, err := suite.service.Update(suite.ctx, suite.tenantID, id, &UpdateInvoiceRequest{Notes: strPtr("x")})
	assert.True(suite.T(), errors.Is(err, common.ErrNotFound))
}

func (suite *InvoiceServiceTestSuite) TestList_RejectsInvertedRange() {
	from := suite.now
	to := suite.now.AddDate(0, -1, 0)

	_, _, err := suite.service.List(suite.ctx, suite.tenantID, models.InvoiceFilter{From: &from, To: &to})
	assert.True(suite.T(), errors.Is(err, common.ErrValidation))
}

func (suite *InvoiceServiceTestSuite) TestCreate_OverflowingAmountWritesNothing() {
	req := suite.createRequest()
	req.Items = []LineItemRequest{{Name: "Big", Quantity: 10, Price: floatPtr(1e308), GSTRate: floatPtr(18)}}
	suite.items.On("Lookup", suite.ctx, suite.tenantID, "Big").Return(nil, nil)

	detail, err := suite.service.Create(suite.ctx, suite.tenantID, req)
	assert.Nil(suite.T(), detail)

	var appErr *common.AppError
	require.True(suite.T(), errors.As(err, &appErr))
	assert.Equal(suite.T(), common.KindValidation, appErr.Kind)
	assert.Equal(suite.T(), "items[0].quantity", appErr.Field)

	suite.customers.AssertNotCalled(suite.T(), "UpsertByPhone", mock.Anything, mock.Anything)
	suite.invoices.AssertNotCalled(suite.T(), "NextInvoiceNumber", mock.Anything, mock.Anything, mock.Anything)
	suite.invoices.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestPreview_OverflowingAmountRejected() {
	suite.items.On("Lookup", suite.ctx, suite.tenantID, "Big").Return(nil, nil)

	preview, err := suite.service.Preview(suite.ctx, suite.tenantID, &ComputeInvoiceRequest{
		Items: []LineItemRequest{{Name: "Big", Quantity: 1, Price: floatPtr(1e308), GSTRate: floatPtr(18)}},
	})
	assert.Nil(suite.T(), preview)
	assert.True(suite.T(), errors.Is(err, common.ErrValidation))
}

func (suite *InvoiceServiceTestSuite) TestCatalogEditLeavesIssuedInvoiceUntouched() {
	req := suite.createRequest()
	customer := suite.customerFor(req.Customer)
	widget := suite.widget()

	var stored *models.Invoice
	suite.items.On("Lookup", suite.ctx, suite.tenantID, "Widget").Return(widget, nil).Once()
	suite.customers.On("UpsertByPhone", suite.ctx, mock.Anything).Return(customer, nil)
	suite.items.On("AddIfAbsent", suite.ctx, []*models.Item(nil)).Return()
	suite.invoices.On("NextInvoiceNumber", suite.ctx, suite.tenantID, suite.now).Return("INV-202610-000009", nil)
	suite.invoices.On("Create", suite.ctx, mock.AnythingOfType("*models.Invoice")).Return(nil).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*models.Invoice)
	})

	created, err := suite.service.Create(suite.ctx, suite.tenantID, req)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), stored)

	// Catalog price and tax rate change after the invoice was issued.
	widget.Price = 500
	widget.GSTRate = 28

	snapshot := &models.InvoiceDetail{Invoice: *stored, Customer: *customer}
	suite.invoices.On("GetByID", suite.ctx, suite.tenantID, created.ID).Return(snapshot, nil)
	suite.invoices.On("Update", suite.ctx, mock.AnythingOfType("*models.Invoice")).Return(nil)

	fetched, err := suite.service.Get(suite.ctx, suite.tenantID, created.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), created.GrandTotal, fetched.GrandTotal)
	assert.Equal(suite.T(), 100.0, fetched.Items[0].Price)

	updated, err := suite.service.Update(suite.ctx, suite.tenantID, created.ID, &UpdateInvoiceRequest{Notes: strPtr("delivered")})
	require.NoError(suite.T(), err)
	assert.InDelta(suite.T(), 191.16, updated.GrandTotal, delta)
	assert.InDelta(suite.T(), 29.16, updated.TaxAmount, delta)
	assert.Equal(suite.T(), 100.0, updated.Items[0].Price)
	assert.Equal(suite.T(), 18.0, updated.Items[0].GSTRate)

	suite.items.AssertNumberOfCalls(suite.T(), "Lookup", 1)
}
