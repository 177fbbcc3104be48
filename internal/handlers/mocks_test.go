package handlers

import (
	"context"
	"io"

	"gstbill/internal/models"
	"gstbill/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req *services.CreateInvoiceRequest) (*models.InvoiceDetail, error) {
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

func (m *MockInvoiceService) Update(ctx context.Context, tenantID, id uuid.UUID, req *services.UpdateInvoiceRequest) (*models.InvoiceDetail, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvoiceDetail), args.Error(1)
}

func (m *MockInvoiceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockInvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter models.InvoiceFilter) ([]*models.InvoiceDetail, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.InvoiceDetail), args.Int(1), args.Error(2)
}

func (m *MockInvoiceService) Preview(ctx context.Context, tenantID uuid.UUID, req *services.ComputeInvoiceRequest) (*services.ComputeInvoiceResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ComputeInvoiceResponse), args.Error(1)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Export(ctx context.Context, tenantID uuid.UUID, format string, filter models.InvoiceFilter, w io.Writer) error {
	args := m.Called(ctx, tenantID, format, filter, w)
	if body := args.String(0); body != "" {
		_, _ = io.WriteString(w, body)
	}
	return args.Error(1)
}

type MockPDFService struct {
	mock.Mock
}

func (m *MockPDFService) Render(detail *models.InvoiceDetail, seller *models.Business) ([]byte, error) {
	args := m.Called(detail, seller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPDFService) Link(ctx context.Context, tenantID, invoiceID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	return args.String(0), args.Error(1)
}

type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) ListPlans(ctx context.Context, activeOnly bool) ([]*models.SubscriptionPlan, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionPlan), args.Error(1)
}

func (m *MockSubscriptionService) CreatePlan(ctx context.Context, req *services.PlanRequest) (*models.SubscriptionPlan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionPlan), args.Error(1)
}

func (m *MockSubscriptionService) UpdatePlan(ctx context.Context, id uuid.UUID, req *services.PlanRequest) (*models.SubscriptionPlan, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionPlan), args.Error(1)
}

func (m *MockSubscriptionService) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSubscriptionService) CreateOrder(ctx context.Context, tenantID uuid.UUID, req *services.CreateOrderRequest) (*services.OrderResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.OrderResponse), args.Error(1)
}

func (m *MockSubscriptionService) VerifyPayment(ctx context.Context, tenantID uuid.UUID, req *services.VerifyPaymentRequest) (*services.VerifyPaymentResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.VerifyPaymentResponse), args.Error(1)
}

func (m *MockSubscriptionService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	return m.Called(ctx, body, signature).Error(0)
}

func (m *MockSubscriptionService) ListTransactions(ctx context.Context, tenantID *uuid.UUID, status string, limit, offset int) ([]*models.Transaction, error) {
	args := m.Called(ctx, tenantID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockSubscriptionService) ExpireLapsed(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Send(ctx context.Context, req *services.NotificationRequest) (*models.Notification, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationService) ListForTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationService) ListAll(ctx context.Context, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockNotificationService) Subscribe(ctx context.Context) (<-chan []byte, func() error) {
	args := m.Called(ctx)
	return args.Get(0).(<-chan []byte), func() error { return nil }
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, req *services.SignupRequest) (*services.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *services.LoginRequest) (*services.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenResponse), args.Error(1)
}

func (m *MockAuthService) ValidateToken(token string) (*services.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Claims), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error { return p.err }
