package services

import (
	"context"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
	"github.com/shopspring/decimal"
)

// GatewayOrder is what the checkout widget needs to collect a payment.
type GatewayOrder struct {
	ID          string `json:"order_id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	KeyID       string `json:"key_id"`
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount float64, currency, receipt string, notes map[string]string) (*GatewayOrder, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
}

type razorpayService struct {
	client        *razorpay.Client
	keyID         string
	keySecret     string
	webhookSecret string
}

func NewRazorpayService(keyID, keySecret, webhookSecret string) PaymentGateway {
	return &razorpayService{
		client:        razorpay.NewClient(keyID, keySecret),
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}
}

// ToPaise converts a rupee amount to the gateway's integer minor unit.
func ToPaise(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (s *razorpayService) CreateOrder(ctx context.Context, amount float64, currency, receipt string, notes map[string]string) (*GatewayOrder, error) {
	paise := ToPaise(amount)
	currency = strings.ToUpper(currency)

	order, err := s.client.Order.Create(map[string]interface{}{
		"amount":   paise,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order creation failed: %w", err)
	}

	id, _ := order["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay returned an order without id")
	}
	return &GatewayOrder{ID: id, AmountPaise: paise, Currency: currency, KeyID: s.keyID}, nil
}

// VerifyPaymentSignature checks the checkout callback signature, an
// HMAC-SHA256 of "order_id|payment_id" keyed with the API secret.
func (s *razorpayService) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if signature == "" || orderID == "" || paymentID == "" {
		return false
	}
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, s.keySecret)
}

// VerifyWebhookSignature checks X-Razorpay-Signature against the raw body.
func (s *razorpayService) VerifyWebhookSignature(body []byte, signature string) bool {
	if s.webhookSecret == "" || signature == "" {
		return false
	}
	return utils.VerifyWebhookSignature(string(body), signature, s.webhookSecret)
}
