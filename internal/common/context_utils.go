package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	TenantIDKey contextKey = "tenant_id"
	RoleKey     contextKey = "role"
)

const (
	RoleBusiness   = "business"
	RoleSuperAdmin = "super_admin"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendError renders err using its kind. Errors without a kind are reported
// as a generic server error so internals never reach the client.
func SendError(c echo.Context, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		c.Logger().Errorf("unhandled error: %v", err)
		return SendServerError(c, "Operation could not be completed")
	}

	var details map[string]string
	if appErr.Field != "" {
		details = map[string]string{appErr.Field: appErr.Message}
	}
	return c.JSON(StatusFor(appErr.Kind), CreateErrorResponse(string(appErr.Kind), appErr.Message, details))
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse(string(KindValidation), "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// ValidateUUID validates UUID format
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, NewValidationError(fieldName, fmt.Sprintf("%s is required", fieldName))
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, NewValidationError(fieldName, fmt.Sprintf("%s is not a valid id", fieldName))
	}
	return id, nil
}

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)

// ValidateGSTIN validates GSTIN format
func ValidateGSTIN(gstin, fieldName string) error {
	if strings.TrimSpace(gstin) == "" {
		return nil // GSTIN is optional
	}
	if len(gstin) != 15 {
		return NewValidationError(fieldName, fmt.Sprintf("%s must be exactly 15 characters", fieldName))
	}
	if !gstinPattern.MatchString(gstin) {
		return NewValidationError(fieldName, fmt.Sprintf("%s has invalid GSTIN format", fieldName))
	}
	return nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fieldName, fmt.Sprintf("%s is required", fieldName))
	}
	return nil
}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// ValidatePhone validates customer phone numbers
func ValidatePhone(phone, fieldName string) error {
	if !phonePattern.MatchString(strings.TrimSpace(phone)) {
		return NewValidationError(fieldName, fmt.Sprintf("%s must be 7 to 15 digits", fieldName))
	}
	return nil
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetTenantIDFromContext extracts the tenant ID from the request context
func GetTenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	return tenantID, ok
}

// GetRoleFromContext extracts the caller role from the request context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

const maxSearchRunes = 100

// SanitizeSearchQuery strips LIKE wildcards from free-text search input
func SanitizeSearchQuery(query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}

	query = strings.ReplaceAll(query, "%", "")
	query = strings.ReplaceAll(query, "_", "")

	if utf8.RuneCountInString(query) > maxSearchRunes {
		query = string([]rune(query)[:maxSearchRunes])
	}

	return strings.TrimSpace(query)
}

// ValidatePaginationParams clamps pagination parameters
func ValidatePaginationParams(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}

	if offset < 0 {
		offset = 0
	}
	if offset > 1000000 {
		return 0, 0, NewValidationError("offset", "offset cannot exceed 1,000,000")
	}

	return limit, offset, nil
}

// PaginationFromQuery reads page/limit query parameters and returns limit and offset.
func PaginationFromQuery(c echo.Context) (int, int, error) {
	limit := 20
	page := 1

	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 {
			limit = l
		}
	}
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
			page = p
		}
	}

	if limit > 200 {
		limit = 200
	}
	return ValidatePaginationParams(limit, (page-1)*limit)
}

// ValidateDateRange validates date ranges to prevent abuse
func ValidateDateRange(startDate, endDate time.Time) error {
	if endDate.Before(startDate) {
		return NewValidationError("to", "end date cannot be before start date")
	}

	maxDuration := time.Hour * 24 * 365 * 10
	if endDate.Sub(startDate) > maxDuration {
		return NewValidationError("to", "date range cannot exceed 10 years")
	}

	return nil
}
