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

// CustomerHandlers handles HTTP requests for customers
type CustomerHandlers struct {
	customerRepo repositories.CustomerRepository
}

func NewCustomerHandlers(customerRepo repositories.CustomerRepository) *CustomerHandlers {
	return &CustomerHandlers{customerRepo: customerRepo}
}

type customerRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (h *CustomerHandlers) validateCustomer(req *customerRequest) (field, message string) {
	if strings.TrimSpace(req.Name) == "" {
		return "name", "Customer name is required"
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		return "email", "Invalid email address"
	}
	return "", ""
}

// CreateCustomer handles POST /customers
func (h *CustomerHandlers) CreateCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if field, message := h.validateCustomer(&req); field != "" {
		return common.SendValidationError(c, field, message)
	}

	customer := &models.Customer{
		ID:      uuid.New(),
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   req.Phone,
		Address: req.Address,
	}

	if err := h.customerRepo.Create(ctx, customer); err != nil {
		return common.SendServerError(c, "Failed to create customer")
	}

	return c.JSON(http.StatusCreated, customer)
}

// GetCustomer handles GET /customers/:id
func (h *CustomerHandlers) GetCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	customer, err := h.customerRepo.GetByID(ctx, userID, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return common.SendNotFoundError(c, "customer")
		}
		return common.SendServerError(c, "Failed to retrieve customer")
	}

	return c.JSON(http.StatusOK, customer)
}

// ListCustomers handles GET /customers
func (h *CustomerHandlers) ListCustomers(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	customers, err := h.customerRepo.List(ctx, userID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list customers")
	}
	if customers == nil {
		customers = []*models.Customer{}
	}

	return c.JSON(http.StatusOK, customers)
}

// UpdateCustomer handles PUT /customers/:id
func (h *CustomerHandlers) UpdateCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if field, message := h.validateCustomer(&req); field != "" {
		return common.SendValidationError(c, field, message)
	}

	customer := &models.Customer{
		ID:      id,
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   req.Phone,
		Address: req.Address,
	}

	if err := h.customerRepo.Update(ctx, customer); err != nil {
		if repositories.IsNotFound(err) {
			return common.SendNotFoundError(c, "customer")
		}
		return common.SendServerError(c, "Failed to update customer")
	}

	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /customers/:id. Invoices that snapshot this
// customer keep their copy of the contact details.
func (h *CustomerHandlers) DeleteCustomer(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.customerRepo.Delete(ctx, userID, id); err != nil {
		if repositories.IsNotFound(err) {
			return common.SendNotFoundError(c, "customer")
		}
		return common.SendServerError(c, "Failed to delete customer")
	}

	return c.NoContent(http.StatusNoContent)
}
