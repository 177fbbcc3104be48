package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gstbill/internal/common"
	"gstbill/internal/models"
	"gstbill/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const streamHeartbeat = 25 * time.Second

// NotificationHandlers serves notifications to businesses and lets
// super-admins send them.
type NotificationHandlers struct {
	notificationService services.NotificationService
	authService         services.AuthService
}

func NewNotificationHandlers(notificationService services.NotificationService, authService services.AuthService) *NotificationHandlers {
	return &NotificationHandlers{
		notificationService: notificationService,
		authService:         authService,
	}
}

// ListNotifications handles GET /v1/notifications
func (h *NotificationHandlers) ListNotifications(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return common.SendError(c, err)
	}

	items, err := h.notificationService.ListForTenant(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	if items == nil {
		items = []*models.Notification{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"notifications": items})
}

// MarkRead handles POST /v1/notifications/:id/read
func (h *NotificationHandlers) MarkRead(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.notificationService.MarkRead(c.Request().Context(), tenantID, id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SendNotification handles POST /v1/admin/notifications
func (h *NotificationHandlers) SendNotification(c echo.Context) error {
	var req services.NotificationRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}

	n, err := h.notificationService.Send(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, n)
}

// ListAllNotifications handles GET /v1/admin/notifications
func (h *NotificationHandlers) ListAllNotifications(c echo.Context) error {
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return common.SendError(c, err)
	}

	items, err := h.notificationService.ListAll(c.Request().Context(), limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	if items == nil {
		items = []*models.Notification{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"notifications": items})
}

// Stream handles GET /v1/notifications/stream?token=... as server-sent
// events. Only broadcasts and the caller's own notifications are forwarded.
func (h *NotificationHandlers) Stream(c echo.Context) error {
	claims, err := h.authService.ValidateToken(c.QueryParam("token"))
	if err != nil {
		return common.SendError(c, err)
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return common.SendError(c, common.NewUnauthorizedError("invalid tenant_id in token"))
	}

	ctx := c.Request().Context()
	messages, closeSub := h.notificationService.Subscribe(ctx)
	defer closeSub()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case payload, ok := <-messages:
			if !ok {
				return nil
			}
			if !visibleTo(payload, tenantID) {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: notification\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func visibleTo(payload []byte, tenantID uuid.UUID) bool {
	var n models.Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return false
	}
	return n.TenantID == nil || *n.TenantID == tenantID
}
