package handlers

import (
	"io"
	"net/http"

	"gstbill/internal/common"
	"gstbill/internal/services"

	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 1 << 20

// WebhookHandlers receives payment gateway callbacks.
type WebhookHandlers struct {
	subscriptionService services.SubscriptionService
}

func NewWebhookHandlers(subscriptionService services.SubscriptionService) *WebhookHandlers {
	return &WebhookHandlers{subscriptionService: subscriptionService}
}

// RazorpayWebhook handles POST /v1/webhooks/razorpay. The signature covers
// the raw body, so it is read before any decoding.
func (h *WebhookHandlers) RazorpayWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return common.SendClientError(c, "failed to read request body")
	}

	signature := c.Request().Header.Get("X-Razorpay-Signature")
	if signature == "" {
		return common.SendError(c, common.NewUnauthorizedError("missing webhook signature"))
	}

	if err := h.subscriptionService.HandleWebhook(c.Request().Context(), body, signature); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
