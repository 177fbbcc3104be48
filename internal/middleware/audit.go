package middleware

import (
	"net/http"
	"time"

	"gstbill/internal/common"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestLogger writes one structured line per request. Mutating requests
// from an authenticated caller also carry the tenant and user ids so writes
// can be traced back to a business.
func RequestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			fields := logrus.Fields{
				"method":     req.Method,
				"path":       c.Path(),
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}
			if req.Method != http.MethodGet {
				if tenantID, ok := common.GetTenantIDFromContext(req.Context()); ok {
					fields["tenant_id"] = tenantID
				}
				if userID, ok := common.GetUserIDFromContext(req.Context()); ok {
					fields["user_id"] = userID
				}
			}

			entry := logger.WithFields(fields)
			switch status := c.Response().Status; {
			case status >= 500:
				entry.Error("request failed")
			case status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request handled")
			}
			return nil
		}
	}
}
