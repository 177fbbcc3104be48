package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gstbill/internal/common"
	"gstbill/internal/models"
	"gstbill/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PlanRequest struct {
	Name         string   `json:"name"`
	Description  *string  `json:"description"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency"`
	DurationDays int      `json:"duration_days"`
	Features     []string `json:"features"`
	IsActive     *bool    `json:"is_active"`
}

type CreateOrderRequest struct {
	PlanID uuid.UUID `json:"plan_id"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type OrderResponse struct {
	Order       *GatewayOrder       `json:"order"`
	Transaction *models.Transaction `json:"transaction"`
}

type VerifyPaymentResponse struct {
	Transaction           *models.Transaction `json:"transaction"`
	SubscriptionExpiresAt time.Time           `json:"subscription_expires_at"`
}

// SubscriptionService sells plans through the payment gateway and keeps the
// business subscription window current.
type SubscriptionService interface {
	ListPlans(ctx context.Context, activeOnly bool) ([]*models.SubscriptionPlan, error)
	CreatePlan(ctx context.Context, req *PlanRequest) (*models.SubscriptionPlan, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, req *PlanRequest) (*models.SubscriptionPlan, error)
	DeletePlan(ctx context.Context, id uuid.UUID) error

	CreateOrder(ctx context.Context, tenantID uuid.UUID, req *CreateOrderRequest) (*OrderResponse, error)
	VerifyPayment(ctx context.Context, tenantID uuid.UUID, req *VerifyPaymentRequest) (*VerifyPaymentResponse, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
	ListTransactions(ctx context.Context, tenantID *uuid.UUID, status string, limit, offset int) ([]*models.Transaction, error)

	ExpireLapsed(ctx context.Context) (int, error)
}

type subscriptionService struct {
	plans         repositories.SubscriptionPlanRepository
	transactions  repositories.TransactionRepository
	businesses    repositories.BusinessRepository
	gateway       PaymentGateway
	notifications NotificationService
	logger        *logrus.Entry
	now           func() time.Time
}

func NewSubscriptionService(
	plans repositories.SubscriptionPlanRepository,
	transactions repositories.TransactionRepository,
	businesses repositories.BusinessRepository,
	gateway PaymentGateway,
	notifications NotificationService,
	logger *logrus.Logger,
) SubscriptionService {
	return &subscriptionService{
		plans:         plans,
		transactions:  transactions,
		businesses:    businesses,
		gateway:       gateway,
		notifications: notifications,
		logger:        logger.WithField("component", "subscription_service"),
		now:           time.Now,
	}
}

func (s *subscriptionService) ListPlans(ctx context.Context, activeOnly bool) ([]*models.SubscriptionPlan, error) {
	return s.plans.List(ctx, activeOnly)
}

func (req *PlanRequest) validate() error {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return err
	}
	if req.Price < 0 {
		return common.NewValidationError("price", "price cannot be negative")
	}
	if req.DurationDays <= 0 {
		return common.NewValidationError("duration_days", "duration must be at least one day")
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}
	req.Currency = strings.ToUpper(req.Currency)
	return nil
}

func (req *PlanRequest) apply(p *models.SubscriptionPlan) {
	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.Price = req.Price
	p.Currency = req.Currency
	p.DurationDays = req.DurationDays
	p.Features = req.Features
	if p.Features == nil {
		p.Features = []string{}
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
}

func (s *subscriptionService) CreatePlan(ctx context.Context, req *PlanRequest) (*models.SubscriptionPlan, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	plan := &models.SubscriptionPlan{ID: uuid.New(), IsActive: true}
	req.apply(plan)

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *subscriptionService) UpdatePlan(ctx context.Context, id uuid.UUID, req *PlanRequest) (*models.SubscriptionPlan, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.apply(plan)

	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *subscriptionService) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return s.plans.Delete(ctx, id)
}

func (s *subscriptionService) CreateOrder(ctx context.Context, tenantID uuid.UUID, req *CreateOrderRequest) (*OrderResponse, error) {
	if req.PlanID == uuid.Nil {
		return nil, common.NewValidationError("plan_id", "plan_id is required")
	}
	plan, err := s.plans.GetByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, common.NewValidationError("plan_id", "plan is not available")
	}

	txID := uuid.New()
	order, err := s.gateway.CreateOrder(ctx, plan.Price, plan.Currency, txID.String(), map[string]string{
		"tenant_id": tenantID.String(),
		"plan_id":   plan.ID.String(),
	})
	if err != nil {
		s.logger.WithError(err).WithField("tenant_id", tenantID).Error("gateway order creation failed")
		return nil, common.NewPaymentError("could not start payment", err)
	}

	tx := &models.Transaction{
		ID:             txID,
		TenantID:       tenantID,
		PlanID:         plan.ID,
		Amount:         plan.Price,
		Currency:       plan.Currency,
		GatewayOrderID: order.ID,
		Status:         models.TransactionPending,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"plan_id":   plan.ID,
		"order_id":  order.ID,
	}).Info("payment order created")

	return &OrderResponse{Order: order, Transaction: tx}, nil
}

func (s *subscriptionService) VerifyPayment(ctx context.Context, tenantID uuid.UUID, req *VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return nil, common.NewValidationError("razorpay_signature", "order id, payment id and signature are required")
	}

	tx, err := s.transactions.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if tx.TenantID != tenantID {
		return nil, common.NewNotFoundError("transaction")
	}

	if !s.gateway.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature) {
		if tx.Status == models.TransactionPending {
			if err := s.transactions.MarkFailed(ctx, req.OrderID); err != nil {
				s.logger.WithError(err).WithField("order_id", req.OrderID).Error("failed to mark transaction failed")
			}
		}
		return nil, common.NewPaymentError("payment signature mismatch", nil)
	}

	expiresAt, err := s.complete(ctx, tx, req.PaymentID)
	if err != nil {
		return nil, err
	}

	tx, err = s.transactions.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	return &VerifyPaymentResponse{Transaction: tx, SubscriptionExpiresAt: expiresAt}, nil
}

// complete marks tx paid and extends the subscription. Only the call that
// flips the status extends, so replays from the webhook are harmless.
func (s *subscriptionService) complete(ctx context.Context, tx *models.Transaction, paymentID string) (time.Time, error) {
	changed, err := s.transactions.MarkPaid(ctx, tx.GatewayOrderID, paymentID)
	if err != nil {
		return time.Time{}, err
	}
	if !changed {
		b, err := s.businesses.GetByID(ctx, tx.TenantID)
		if err != nil {
			return time.Time{}, err
		}
		if b.SubscriptionExpiresAt == nil {
			return time.Time{}, nil
		}
		return *b.SubscriptionExpiresAt, nil
	}

	plan, err := s.plans.GetByID(ctx, tx.PlanID)
	if err != nil {
		return time.Time{}, err
	}
	expiresAt, err := s.businesses.ExtendSubscription(ctx, tx.TenantID, plan.DurationDays, s.now().UTC())
	if err != nil {
		return time.Time{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tx.TenantID,
		"order_id":   tx.GatewayOrderID,
		"expires_at": expiresAt,
	}).Info("subscription extended")
	return expiresAt, nil
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook processes a gateway callback. Unknown events and orders we
// never issued are acknowledged and ignored.
func (s *subscriptionService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		return common.NewUnauthorizedError("invalid webhook signature")
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return common.NewValidationError("body", "invalid webhook payload")
	}

	entity := event.Payload.Payment.Entity
	log := s.logger.WithFields(logrus.Fields{"event": event.Event, "order_id": entity.OrderID})

	switch event.Event {
	case "payment.captured":
		tx, err := s.transactions.GetByOrderID(ctx, entity.OrderID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				log.Warn("webhook for unknown order")
				return nil
			}
			return err
		}
		if _, err := s.complete(ctx, tx, entity.ID); err != nil {
			return fmt.Errorf("completing order %s: %w", entity.OrderID, err)
		}
	case "payment.failed":
		if err := s.transactions.MarkFailed(ctx, entity.OrderID); err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
	default:
		log.Debug("ignoring webhook event")
	}
	return nil
}

func (s *subscriptionService) ListTransactions(ctx context.Context, tenantID *uuid.UUID, status string, limit, offset int) ([]*models.Transaction, error) {
	switch status {
	case "", models.TransactionPending, models.TransactionPaid, models.TransactionFailed:
	default:
		return nil, common.NewValidationError("status", "unknown transaction status")
	}
	return s.transactions.List(ctx, tenantID, status, limit, offset)
}

// ExpireLapsed moves every business past its expiry to expired and notifies it.
func (s *subscriptionService) ExpireLapsed(ctx context.Context) (int, error) {
	ids, err := s.businesses.ExpireSubscriptions(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		tenantID := id
		if _, err := s.notifications.Send(ctx, &NotificationRequest{
			Title:    "Subscription expired",
			Message:  "Your subscription has expired. Renew a plan to keep creating invoices.",
			TenantID: &tenantID,
		}); err != nil {
			s.logger.WithError(err).WithField("tenant_id", id).Warn("failed to notify expired business")
		}
	}

	if len(ids) > 0 {
		s.logger.WithField("count", len(ids)).Info("subscriptions expired")
	}
	return len(ids), nil
}
