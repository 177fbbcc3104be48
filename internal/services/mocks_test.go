package services

import (
	"context"
	"io"
	"time"

	"gstbill/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
)

func testLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }

type MockBusinessRepository struct {
	mock.Mock
}

func (m *MockBusinessRepository) Create(ctx context.Context, business *models.Business) error {
	args := m.Called(ctx, business)
	return args.Error(0)
}

func (m *MockBusinessRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Business), args.Error(1)
}

func (m *MockBusinessRepository) GetByEmail(ctx context.Context, email string) (*models.Business, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Business), args.Error(1)
}

func (m *MockBusinessRepository) Update(ctx context.Context, business *models.Business) error {
	args := m.Called(ctx, business)
	return args.Error(0)
}

func (m *MockBusinessRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockBusinessRepository) List(ctx context.Context, search string, limit, offset int) ([]*models.Business, error) {
	args := m.Called(ctx, search, limit, offset)
	return args.Get(0).([]*models.Business), args.Error(1)
}

func (m *MockBusinessRepository) ExtendSubscription(ctx context.Context, id uuid.UUID, days int, now time.Time) (time.Time, error) {
	args := m.Called(ctx, id, days, now)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockBusinessRepository) ExpireSubscriptions(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) UpsertByPhone(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Customer, error) {
	args := m.Called(ctx, tenantID, search, limit, offset)
	return args.Get(0).([]*models.Customer), args.Error(1)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) InsertIfAbsent(ctx context.Context, item *models.Item) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

func (m *MockItemRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Item, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockItemRepository) List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Item, error) {
	args := m.Called(ctx, tenantID, search, limit, offset)
	return args.Get(0).([]*models.Item), args.Error(1)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID, at time.Time) (string, error) {
	args := m.Called(ctx, tenantID, at)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InvoiceDetail, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvoiceDetail), args.Error(1)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.InvoiceFilter) ([]*models.InvoiceDetail, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.InvoiceDetail), args.Int(1), args.Error(2)
}

func (m *MockInvoiceRepository) SalesSummary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*models.SalesSummary, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SalesSummary), args.Error(1)
}

func (m *MockInvoiceRepository) DailySales(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]models.DailySales, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailySales), args.Error(1)
}

func (m *MockInvoiceRepository) GSTBreakdown(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]models.GSTRateBreakdown, error) {
	args := m.Called(ctx, tenantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GSTRateBreakdown), args.Error(1)
}

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *models.SubscriptionPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SubscriptionPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionPlan), args.Error(1)
}

func (m *MockPlanRepository) Update(ctx context.Context, plan *models.SubscriptionPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPlanRepository) List(ctx context.Context, activeOnly bool) ([]*models.SubscriptionPlan, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]*models.SubscriptionPlan), args.Error(1)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) MarkPaid(ctx context.Context, orderID, paymentID string) (bool, error) {
	args := m.Called(ctx, orderID, paymentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) MarkFailed(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockTransactionRepository) List(ctx context.Context, tenantID *uuid.UUID, status string, limit, offset int) ([]*models.Transaction, error) {
	args := m.Called(ctx, tenantID, status, limit, offset)
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListForTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockQueryRepository struct {
	mock.Mock
}

func (m *MockQueryRepository) Create(ctx context.Context, q *models.Query) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQueryRepository) ListForTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Query, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Query), args.Error(1)
}

func (m *MockQueryRepository) ListAll(ctx context.Context, status string, limit, offset int) ([]*models.Query, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]*models.Query), args.Error(1)
}

func (m *MockQueryRepository) Reply(ctx context.Context, id uuid.UUID, reply string, status string) (*models.Query, error) {
	args := m.Called(ctx, id, reply, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Query), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetItem(ctx context.Context, tenantID uuid.UUID, name string) (*models.Item, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockCacheService) SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error {
	args := m.Called(ctx, item, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteItem(ctx context.Context, tenantID uuid.UUID, name string) error {
	args := m.Called(ctx, tenantID, name)
	return args.Error(0)
}

func (m *MockCacheService) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	args := m.Called(ctx, key, dst)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) ResetRateLimit(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) Publish(ctx context.Context, channel string, payload any) error {
	args := m.Called(ctx, channel, payload)
	return args.Error(0)
}

func (m *MockCacheService) Subscribe(ctx context.Context, channel string) (<-chan []byte, func() error) {
	args := m.Called(ctx, channel)
	return args.Get(0).(<-chan []byte), args.Get(1).(func() error)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) Lookup(ctx context.Context, tenantID uuid.UUID, name string) (*models.Item, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemService) Create(ctx context.Context, tenantID uuid.UUID, req *ItemRequest) (*models.Item, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemService) Update(ctx context.Context, tenantID, id uuid.UUID, req *ItemRequest) (*models.Item, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockItemService) List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Item, error) {
	args := m.Called(ctx, tenantID, search, limit, offset)
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemService) AddIfAbsent(ctx context.Context, items []*models.Item) {
	m.Called(ctx, items)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateOrder(ctx context.Context, amount float64, currency, receipt string, notes map[string]string) (*GatewayOrder, error) {
	args := m.Called(ctx, amount, currency, receipt, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GatewayOrder), args.Error(1)
}

func (m *MockPaymentGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	args := m.Called(orderID, paymentID, signature)
	return args.Bool(0)
}

func (m *MockPaymentGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	args := m.Called(body, signature)
	return args.Bool(0)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Send(ctx context.Context, req *NotificationRequest) (*models.Notification, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationService) ListForTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationService) ListAll(ctx context.Context, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockNotificationService) Subscribe(ctx context.Context) (<-chan []byte, func() error) {
	args := m.Called(ctx)
	return args.Get(0).(<-chan []byte), args.Get(1).(func() error)
}

type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, objectName, reader, size, contentType)
	return args.Error(0)
}

func (m *MockStorageService) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) Delete(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

func (m *MockStorageService) EnsureBucket(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req *CreateInvoiceRequest) (*models.InvoiceDetail, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvoiceDetail), args.Error(1)
}

func (m *MockInvoiceService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.InvoiceDetail, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvoiceDetail), args.Error(1)
}

func (m *MockInvoiceService) Update(ctx context.Context, tenantID, id uuid.UUID, req *UpdateInvoiceRequest) (*models.InvoiceDetail, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvoiceDetail), args.Error(1)
}

func (m *MockInvoiceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockInvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter models.InvoiceFilter) ([]*models.InvoiceDetail, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.InvoiceDetail), args.Int(1), args.Error(2)
}

func (m *MockInvoiceService) Preview(ctx context.Context, tenantID uuid.UUID, req *ComputeInvoiceRequest) (*ComputeInvoiceResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ComputeInvoiceResponse), args.Error(1)
}

type MockBusinessService struct {
	mock.Mock
}

func (m *MockBusinessService) Get(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Business), args.Error(1)
}

func (m *MockBusinessService) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*models.Business, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Business), args.Error(1)
}

func (m *MockBusinessService) List(ctx context.Context, search string, limit, offset int) ([]*models.Business, error) {
	args := m.Called(ctx, search, limit, offset)
	return args.Get(0).([]*models.Business), args.Error(1)
}

func (m *MockBusinessService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}
