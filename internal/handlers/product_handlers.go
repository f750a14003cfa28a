package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"billcraft/internal/common"
	"billcraft/internal/models"
	"billcraft/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ProductHandlers handles HTTP requests for products
type ProductHandlers struct {
	productRepo repositories.ProductRepository
}

func NewProductHandlers(productRepo repositories.ProductRepository) *ProductHandlers {
	return &ProductHandlers{productRepo: productRepo}
}

type productRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	SKU         *string `json:"sku"`
	Category    *string `json:"category"`
}

func (h *ProductHandlers) validateProduct(req *productRequest) (field, message string) {
	if strings.TrimSpace(req.Name) == "" {
		return "name", "Product name is required"
	}
	if req.Price < 0 {
		return "price", "Price cannot be negative"
	}
	return "", ""
}

// CreateProduct handles POST /products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if field, message := h.validateProduct(&req); field != "" {
		return common.SendValidationError(c, field, message)
	}

	product := &models.Product{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		SKU:         req.SKU,
		Category:    req.Category,
	}

	if err := h.productRepo.Create(ctx, product); err != nil {
		return common.SendServerError(c, "Failed to create product")
	}

	return c.JSON(http.StatusCreated, product)
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	product, err := h.productRepo.GetByID(ctx, userID, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return common.SendNotFoundError(c, "product")
		}
		return common.SendServerError(c, "Failed to retrieve product")
	}

	return c.JSON(http.StatusOK, product)
}

// ListProducts handles GET /products
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	products, err := h.productRepo.List(ctx, userID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list products")
	}
	if products == nil {
		products = []*models.Product{}
	}

	return c.JSON(http.StatusOK, products)
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if field, message := h.validateProduct(&req); field != "" {
		return common.SendValidationError(c, field, message)
	}

	product := &models.Product{
		ID:          id,
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		SKU:         req.SKU,
		Category:    req.Category,
	}

	if err := h.productRepo.Update(ctx, product); err != nil {
		if repositories.IsNotFound(err) {
			return common.SendNotFoundError(c, "product")
		}
		return common.SendServerError(c, "Failed to update product")
	}

	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.productRepo.Delete(ctx, userID, id); err != nil {
		if repositories.IsNotFound(err) {
			return common.SendNotFoundError(c, "product")
		}
		return common.SendServerError(c, "Failed to delete product")
	}

	return c.NoContent(http.StatusNoContent)
}
