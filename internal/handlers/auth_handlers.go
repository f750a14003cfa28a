package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"billcraft/internal/caching"
	"billcraft/internal/common"
	"billcraft/internal/models"
	"billcraft/internal/repositories"
	"billcraft/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
	userRepo    repositories.UserRepository
	cache       caching.CacheService
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService, userRepo repositories.UserRepository, cache caching.CacheService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		userRepo:    userRepo,
		cache:       cache,
	}
}

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse bundles the token with the authenticated user.
type AuthResponse struct {
	models.TokenResponse
	User *models.User `json:"user"`
}

// Register handles POST /auth/register
func (h *AuthHandlers) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	if req.Username == "" {
		return common.SendValidationError(c, "username", "username is required")
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return common.SendValidationError(c, "email", "a valid email is required")
	}
	if len(req.Password) < 8 {
		return common.SendValidationError(c, "password", "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return common.SendServerError(c, "Failed to process password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         "user",
		PlanType:     "free",
	}

	if err := h.userRepo.Create(ctx, user); err != nil {
		if repositories.IsUniqueViolation(err) {
			return common.SendConflictError(c, "An account with this email already exists")
		}
		return common.SendServerError(c, "Failed to create account")
	}

	tokenResponse, err := h.authService.GenerateToken(ctx, user.ID, user.Role)
	if err != nil {
		return common.SendServerError(c, "Failed to generate token")
	}

	return c.JSON(http.StatusCreated, AuthResponse{TokenResponse: *tokenResponse, User: user})
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login. Failed and successful attempts both count
// against the per-email rate limit.
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return common.SendValidationError(c, "credentials", "email and password are required")
	}

	rateKey := fmt.Sprintf("login:%s:%s", req.Email, c.RealIP())
	if h.cache != nil {
		limited, err := h.cache.IsRateLimited(ctx, rateKey, loginRateLimit, loginRateWindow)
		if err == nil && limited {
			return common.SendRateLimitError(c, "Too many login attempts, try again later")
		}
		_ = h.cache.IncrementRateLimit(ctx, rateKey, loginRateWindow)
	}

	// Absent account and wrong password produce the same response.
	user, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return common.SendUnauthorizedError(c)
	}

	tokenResponse, err := h.authService.GenerateToken(ctx, user.ID, user.Role)
	if err != nil {
		return common.SendServerError(c, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, AuthResponse{TokenResponse: *tokenResponse, User: user})
}

// Me handles GET /auth/me
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return common.SendUnauthorizedError(c)
		}
		return common.SendServerError(c, "Failed to load account")
	}

	return c.JSON(http.StatusOK, user)
}
