package middleware

import (
	"context"

	"gstbill/internal/common"
	"gstbill/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const tokenContextKey = "user"

// JWTMiddleware validates the bearer token and places the user id, tenant id
// and role on the request context.
func JWTMiddleware(jwtSecret string) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(jwtSecret),
		SigningMethod: "HS256",
		ContextKey:    tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(services.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.SendError(c, common.NewUnauthorizedError("missing or invalid token"))
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(withIdentity(next))
	}
}

func withIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get(tokenContextKey).(*jwt.Token)
		if !ok {
			return common.SendError(c, common.NewUnauthorizedError("missing token"))
		}
		claims, ok := token.Claims.(*services.Claims)
		if !ok {
			return common.SendError(c, common.NewUnauthorizedError("invalid claims"))
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return common.SendError(c, common.NewUnauthorizedError("invalid user_id in token"))
		}
		tenantID, err := uuid.Parse(claims.TenantID)
		if err != nil {
			return common.SendError(c, common.NewUnauthorizedError("invalid tenant_id in token"))
		}

		ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
		ctx = context.WithValue(ctx, common.TenantIDKey, tenantID)
		ctx = context.WithValue(ctx, common.RoleKey, claims.Role)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
