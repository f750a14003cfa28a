package handlers

import (
	"net/http"
	"strings"

	"billcraft/internal/common"
	"billcraft/internal/models"
	"billcraft/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// BusinessProfileHandlers handles the tenant's issuer profile
type BusinessProfileHandlers struct {
	profileRepo repositories.BusinessProfileRepository
}

func NewBusinessProfileHandlers(profileRepo repositories.BusinessProfileRepository) *BusinessProfileHandlers {
	return &BusinessProfileHandlers{profileRepo: profileRepo}
}

// GetProfile handles GET /business. A tenant that never saved a
// profile gets an empty object, not a 404.
func (h *BusinessProfileHandlers) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	profile, err := h.profileRepo.GetByUser(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return c.JSON(http.StatusOK, map[string]any{})
		}
		return common.SendServerError(c, "Failed to load business profile")
	}

	return c.JSON(http.StatusOK, profile)
}

// UpsertProfile handles POST /business
func (h *BusinessProfileHandlers) UpsertProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		BusinessName   string  `json:"business_name"`
		Email          string  `json:"email"`
		Phone          *string `json:"phone"`
		Address        *string `json:"address"`
		GSTNumber      *string `json:"gst_number"`
		LogoURL        *string `json:"logo_url"`
		Signature      *string `json:"signature"`
		Website        *string `json:"website"`
		DefaultTaxRate float64 `json:"default_tax_rate"`
		Currency       string  `json:"currency"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if strings.TrimSpace(req.BusinessName) == "" {
		return common.SendValidationError(c, "business_name", "business name is required")
	}
	if req.DefaultTaxRate < 0 || req.DefaultTaxRate > 100 {
		return common.SendValidationError(c, "default_tax_rate", "default tax rate must be between 0 and 100")
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}

	profile := &models.BusinessProfile{
		ID:             uuid.New(),
		UserID:         userID,
		BusinessName:   strings.TrimSpace(req.BusinessName),
		Email:          strings.TrimSpace(req.Email),
		Phone:          req.Phone,
		Address:        req.Address,
		GSTNumber:      req.GSTNumber,
		LogoURL:        req.LogoURL,
		Signature:      req.Signature,
		Website:        req.Website,
		DefaultTaxRate: req.DefaultTaxRate,
		Currency:       req.Currency,
	}

	if err := h.profileRepo.Upsert(ctx, profile); err != nil {
		return common.SendServerError(c, "Failed to save business profile")
	}

	return c.JSON(http.StatusOK, profile)
}
