package handlers

import (
	"time"

	"gstbill/internal/common"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func tenantFrom(c echo.Context) (uuid.UUID, error) {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, common.NewUnauthorizedError("user not authenticated")
	}
	return tenantID, nil
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	return common.ValidateUUID(c.Param(name), name)
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return common.NewValidationError("body", "invalid request format")
	}
	return nil
}

// queryDate parses an optional YYYY-MM-DD or RFC3339 query parameter.
func queryDate(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, common.NewValidationError(name, "date must be YYYY-MM-DD")
}
