package handlers

import (
	"net/http"

	"gstbill/internal/common"
	"gstbill/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles signup, login and the caller's own profile.
type AuthHandlers struct {
	authService     services.AuthService
	businessService services.BusinessService
}

func NewAuthHandlers(authService services.AuthService, businessService services.BusinessService) *AuthHandlers {
	return &AuthHandlers{
		authService:     authService,
		businessService: businessService,
	}
}

// Signup handles POST /v1/auth/signup
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req services.SignupRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}

	resp, err := h.authService.Signup(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login handles POST /v1/auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req services.LoginRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}
	if req.Email == "" || req.Password == "" {
		return common.SendValidationError(c, "email", "email and password are required")
	}

	resp, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Me handles GET /v1/me
func (h *AuthHandlers) Me(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}

	business, err := h.businessService.Get(c.Request().Context(), tenantID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, business)
}

// UpdateMe handles PUT /v1/me
func (h *AuthHandlers) UpdateMe(c echo.Context) error {
	tenantID, err := tenantFrom(c)
	if err != nil {
		return common.SendError(c, err)
	}
	var req services.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return common.SendError(c, err)
	}

	business, err := h.businessService.UpdateProfile(c.Request().Context(), tenantID, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, business)
}
