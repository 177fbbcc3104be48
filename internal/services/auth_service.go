package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gstbill/internal/caching"
	"gstbill/internal/common"
	"gstbill/internal/models"
	"gstbill/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	trialPeriod      = 14 * 24 * time.Hour
	loginAttempts    = 5
	loginWindow      = time.Minute
	minPasswordChars = 8
	tokenIssuer      = "gstbill"
)

// Claims are carried in every access token.
type Claims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type SignupRequest struct {
	BusinessName string  `json:"business_name"`
	OwnerName    string  `json:"owner_name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	GSTIN        *string `json:"gstin"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresAt   time.Time        `json:"expires_at"`
	Business    *models.Business `json:"business"`
}

type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*TokenResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error)
	ValidateToken(token string) (*Claims, error)
}

type authService struct {
	businessRepo repositories.BusinessRepository
	cache        caching.CacheService
	jwtSecret    []byte
	tokenTTL     time.Duration
	logger       *logrus.Entry
	now          func() time.Time
}

func NewAuthService(businessRepo repositories.BusinessRepository, cache caching.CacheService, jwtSecret string, tokenTTL time.Duration, logger *logrus.Logger) AuthService {
	return &authService{
		businessRepo: businessRepo,
		cache:        cache,
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     tokenTTL,
		logger:       logger.WithField("component", "auth_service"),
		now:          time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := common.ValidateRequiredString(req.BusinessName, "business_name"); err != nil {
		return nil, err
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, common.NewValidationError("email", "email is invalid")
	}
	if len(req.Password) < minPasswordChars {
		return nil, common.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", minPasswordChars))
	}
	if req.Phone != nil {
		if err := common.ValidatePhone(*req.Phone, "phone"); err != nil {
			return nil, err
		}
	}
	if req.GSTIN != nil {
		if err := common.ValidateGSTIN(*req.GSTIN, "gstin"); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	trialEnds := s.now().Add(trialPeriod)
	business := &models.Business{
		ID:                    uuid.New(),
		Name:                  strings.TrimSpace(req.BusinessName),
		OwnerName:             strings.TrimSpace(req.OwnerName),
		Email:                 email,
		PasswordHash:          string(hash),
		Phone:                 req.Phone,
		Address:               req.Address,
		GSTIN:                 req.GSTIN,
		Role:                  common.RoleBusiness,
		Status:                models.BusinessStatusActive,
		SubscriptionStatus:    models.SubscriptionTrial,
		SubscriptionExpiresAt: &trialEnds,
	}
	if err := s.businessRepo.Create(ctx, business); err != nil {
		return nil, err
	}

	s.logger.WithField("tenant_id", business.ID).Info("business signed up")
	return s.issue(business)
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	limitKey := "login:" + email

	limited, err := s.cache.IsRateLimited(ctx, limitKey, loginAttempts, loginWindow)
	if err != nil {
		s.logger.WithError(err).Warn("login rate limit check failed")
	} else if limited {
		return nil, common.NewRateLimitedError("too many login attempts, try again in a minute")
	}

	business, err := s.businessRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(business.PasswordHash), []byte(req.Password)); err != nil {
		return nil, common.NewUnauthorizedError("invalid email or password")
	}
	if business.Status != models.BusinessStatusActive {
		return nil, common.NewForbiddenError("business account is inactive")
	}

	if err := s.cache.ResetRateLimit(ctx, limitKey); err != nil {
		s.logger.WithError(err).Warn("failed to reset login rate limit")
	}
	return s.issue(business)
}

func (s *authService) issue(business *models.Business) (*TokenResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)

	claims := Claims{
		UserID:   business.ID.String(),
		TenantID: business.ID.String(),
		Role:     business.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   business.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	return &TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Business:    business,
	}, nil
}

func (s *authService) ValidateToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, common.NewUnauthorizedError("invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, common.NewUnauthorizedError("invalid token claims")
	}
	return claims, nil
}
