package middleware

import (
	"gstbill/internal/common"

	"github.com/labstack/echo/v4"
)

// RequireRole rejects requests whose token does not carry one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return common.SendError(c, common.NewUnauthorizedError("user not authenticated"))
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return common.SendError(c, common.NewForbiddenError("insufficient permissions"))
		}
	}
}
