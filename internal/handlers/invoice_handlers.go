package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"billcraft/internal/common"
	"billcraft/internal/models"
	"billcraft/internal/repositories"
	"billcraft/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	pdfBucket       = "invoices"
	presignedExpiry = 24 * time.Hour
)

// InvoiceHandlers handles HTTP requests for invoices
type InvoiceHandlers struct {
	invoiceService services.InvoiceService
	customerRepo   repositories.CustomerRepository
	paymentRepo    repositories.InvoicePaymentRepository
	profileRepo    repositories.BusinessProfileRepository
	pdfService     services.PDFService
	minioSvc       services.MinioService
}

func NewInvoiceHandlers(invoiceService services.InvoiceService, customerRepo repositories.CustomerRepository, paymentRepo repositories.InvoicePaymentRepository, profileRepo repositories.BusinessProfileRepository, pdfService services.PDFService, minioSvc services.MinioService) *InvoiceHandlers {
	return &InvoiceHandlers{
		invoiceService: invoiceService,
		customerRepo:   customerRepo,
		paymentRepo:    paymentRepo,
		profileRepo:    profileRepo,
		pdfService:     pdfService,
		minioSvc:       minioSvc,
	}
}

type invoiceItemRequest struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
	ProductID   *string `json:"product_id"`
}

type invoiceRequest struct {
	InvoiceNumber string  `json:"invoice_number"`
	CustomerID    *string `json:"customer_id"`
	Customer      struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Address string `json:"address"`
	} `json:"customer"`
	Items          []invoiceItemRequest `json:"items"`
	SubTotal       float64              `json:"sub_total"`
	TaxRate        float64              `json:"tax_rate"`
	TaxAmount      float64              `json:"tax_amount"`
	DiscountRate   float64              `json:"discount_rate"`
	DiscountAmount float64              `json:"discount_amount"`
	TotalAmount    float64              `json:"total_amount"`
	Status         string               `json:"status"`
	IssueDate      string               `json:"issue_date"`
	DueDate        *string              `json:"due_date"`
	Notes          *string              `json:"notes"`
}

// errCustomerLookup marks a storage failure while resolving customer_id,
// as opposed to a bad request.
var errCustomerLookup = errors.New("failed to resolve customer")

// buildInvoice maps the wire request into a model. When customer_id is set
// and the embedded snapshot is empty, the live customer record is copied in.
func (h *InvoiceHandlers) buildInvoice(ctx context.Context, userID uuid.UUID, req *invoiceRequest) (*models.Invoice, error) {
	invoice := &models.Invoice{
		InvoiceNumber:  strings.TrimSpace(req.InvoiceNumber),
		SubTotal:       req.SubTotal,
		TaxRate:        req.TaxRate,
		TaxAmount:      req.TaxAmount,
		DiscountRate:   req.DiscountRate,
		DiscountAmount: req.DiscountAmount,
		TotalAmount:    req.TotalAmount,
		Status:         req.Status,
		Notes:          req.Notes,
	}

	if req.Status != "" {
		if err := common.ValidateInvoiceStatus(req.Status); err != nil {
			return nil, err
		}
	}

	invoice.Customer = models.CustomerSnapshot{
		Name:    strings.TrimSpace(req.Customer.Name),
		Email:   strings.TrimSpace(req.Customer.Email),
		Address: strings.TrimSpace(req.Customer.Address),
	}

	if req.CustomerID != nil && *req.CustomerID != "" {
		customerID, err := common.ValidateUUID(*req.CustomerID, "customer_id")
		if err != nil {
			return nil, err
		}
		customer, err := h.customerRepo.GetByID(ctx, userID, customerID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return nil, err
			}
			return nil, errCustomerLookup
		}
		invoice.Customer.CustomerID = &customer.ID
		if invoice.Customer.Name == "" {
			invoice.Customer.Name = customer.Name
			invoice.Customer.Email = customer.Email
			invoice.Customer.Address = common.SafeString(customer.Address)
		}
	}

	for _, item := range req.Items {
		modelItem := models.InvoiceItem{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		}
		if modelItem.Description == "" {
			return nil, errors.New("item description is required")
		}
		if item.ProductID != nil && *item.ProductID != "" {
			productID, err := common.ValidateUUID(*item.ProductID, "product_id")
			if err != nil {
				return nil, err
			}
			modelItem.ProductID = &productID
		}
		invoice.Items = append(invoice.Items, modelItem)
	}

	if req.IssueDate != "" {
		issueDate, err := time.Parse("2006-01-02", req.IssueDate)
		if err != nil {
			return nil, errors.New("issue_date must be in YYYY-MM-DD format")
		}
		invoice.IssueDate = issueDate
	}
	if req.DueDate != nil && *req.DueDate != "" {
		dueDate, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return nil, errors.New("due_date must be in YYYY-MM-DD format")
		}
		invoice.DueDate = &dueDate
	}

	return invoice, nil
}

// sendBuildError maps buildInvoice failures onto the shared error envelope.
func (h *InvoiceHandlers) sendBuildError(c echo.Context, err error) error {
	switch {
	case repositories.IsNotFound(err):
		return common.SendNotFoundError(c, "customer")
	case errors.Is(err, errCustomerLookup):
		return common.SendServerError(c, "Failed to resolve customer")
	default:
		return common.SendClientError(c, err.Error())
	}
}

// CreateInvoice handles POST /invoices
func (h *InvoiceHandlers) CreateInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	invoice, err := h.buildInvoice(ctx, userID, &req)
	if err != nil {
		return h.sendBuildError(c, err)
	}

	if err := h.invoiceService.Create(ctx, userID, invoice); err != nil {
		if repositories.IsUniqueViolation(err) {
			return common.SendConflictError(c, "An invoice with this number already exists")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, invoice)
}

// GetInvoice handles GET /invoices/:id
func (h *InvoiceHandlers) GetInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.GetByID(ctx, userID, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return common.SendNotFoundError(c, "invoice")
		}
		return common.SendServerError(c, "Failed to retrieve invoice")
	}

	return c.JSON(http.StatusOK, invoice)
}

// ListInvoices handles GET /invoices with optional ?status= filter
func (h *InvoiceHandlers) ListInvoices(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	status := c.QueryParam("status")
	if status != "" {
		if err := common.ValidateInvoiceStatus(status); err != nil {
			return common.SendClientError(c, err.Error())
		}
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	invoices, err := h.invoiceService.List(ctx, userID, status, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list invoices")
	}
	if invoices == nil {
		invoices = []*models.Invoice{}
	}

	return c.JSON(http.StatusOK, invoices)
}

// UpdateInvoice handles PUT /invoices/:id
func (h *InvoiceHandlers) UpdateInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	invoice, err := h.buildInvoice(ctx, userID, &req)
	if err != nil {
		return h.sendBuildError(c, err)
	}
	invoice.ID = id

	if err := h.invoiceService.Update(ctx, userID, invoice); err != nil {
		if repositories.IsNotFound(err) {
			return common.SendNotFoundError(c, "invoice")
		}
		if repositories.IsUniqueViolation(err) {
			return common.SendConflictError(c, "An invoice with this number already exists")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice handles DELETE /invoices/:id
func (h *InvoiceHandlers) DeleteInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.invoiceService.Delete(ctx, userID, id); err != nil {
		if repositories.IsNotFound(err) {
			return common.SendNotFoundError(c, "invoice")
		}
		return common.SendServerError(c, "Failed to delete invoice")
	}

	// Recorded payments go with the invoice.
	if err := h.paymentRepo.DeleteByInvoice(ctx, userID, id); err != nil {
		return common.SendServerError(c, "Failed to delete invoice payments")
	}

	return c.NoContent(http.StatusNoContent)
}

// UpdateInvoiceStatus handles PUT /invoices/:id/status
func (h *InvoiceHandlers) UpdateInvoiceStatus(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateInvoiceStatus(req.Status); err != nil {
		return common.SendValidationError(c, "status", err.Error())
	}

	invoice, err := h.invoiceService.UpdateStatus(ctx, userID, id, req.Status)
	if err != nil {
		if repositories.IsNotFound(err) {
			return common.SendNotFoundError(c, "invoice")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, invoice)
}

// RenderInvoicePDF handles GET /invoices/:id/pdf and streams the document as
// an attachment.
func (h *InvoiceHandlers) RenderInvoicePDF(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.GetByID(ctx, userID, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return common.SendNotFoundError(c, "invoice")
		}
		return common.SendServerError(c, "Failed to retrieve invoice")
	}

	// A missing profile renders with a blank issuer block.
	profile, err := h.profileRepo.GetByUser(ctx, userID)
	if err != nil && !repositories.IsNotFound(err) {
		return common.SendServerError(c, "Failed to load business profile")
	}

	pdfBytes, err := h.pdfService.RenderInvoice(invoice, profile)
	if err != nil {
		return common.SendServerError(c, "Failed to render PDF")
	}

	filename := fmt.Sprintf("%s.pdf", invoice.InvoiceNumber)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}

// ArchiveInvoicePDF handles POST /invoices/:id/pdf/archive. It renders the
// invoice, stores it in object storage and returns a presigned download URL.
func (h *InvoiceHandlers) ArchiveInvoicePDF(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if h.minioSvc == nil {
		return common.SendServerError(c, "Object storage is not configured")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.GetByID(ctx, userID, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return common.SendNotFoundError(c, "invoice")
		}
		return common.SendServerError(c, "Failed to retrieve invoice")
	}

	profile, err := h.profileRepo.GetByUser(ctx, userID)
	if err != nil && !repositories.IsNotFound(err) {
		return common.SendServerError(c, "Failed to load business profile")
	}

	pdfBytes, err := h.pdfService.RenderInvoice(invoice, profile)
	if err != nil {
		return common.SendServerError(c, "Failed to render PDF")
	}

	objectName := fmt.Sprintf("%s/%s.pdf", userID, invoice.InvoiceNumber)
	if err := h.minioSvc.UploadPDF(ctx, pdfBucket, objectName, bytes.NewReader(pdfBytes), int64(len(pdfBytes))); err != nil {
		return common.SendUpstreamError(c, "Failed to archive PDF")
	}

	url, err := h.minioSvc.GetPresignedURL(ctx, pdfBucket, objectName, presignedExpiry)
	if err != nil {
		return common.SendUpstreamError(c, "Failed to generate download URL")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"object":     objectName,
		"url":        url,
		"expires_in": int(presignedExpiry.Seconds()),
	})
}

// RecordPayment handles POST /invoices/:id/payments
func (h *InvoiceHandlers) RecordPayment(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Amount float64 `json:"amount"`
		Method string  `json:"method"`
		PaidAt string  `json:"paid_at"`
		Note   *string `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Amount <= 0 {
		return common.SendValidationError(c, "amount", "amount must be positive")
	}
	if strings.TrimSpace(req.Method) == "" {
		req.Method = "other"
	}

	invoice, err := h.invoiceService.GetByID(ctx, userID, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return common.SendNotFoundError(c, "invoice")
		}
		return common.SendServerError(c, "Failed to retrieve invoice")
	}

	paidAt := time.Now()
	if req.PaidAt != "" {
		paidAt, err = time.Parse("2006-01-02", req.PaidAt)
		if err != nil {
			return common.SendValidationError(c, "paid_at", "paid_at must be in YYYY-MM-DD format")
		}
	}

	payment := &models.InvoicePayment{
		ID:        uuid.New(),
		UserID:    userID,
		InvoiceID: invoice.ID,
		Amount:    req.Amount,
		Method:    req.Method,
		PaidAt:    paidAt,
		Note:      req.Note,
	}

	if err := h.paymentRepo.Create(ctx, payment); err != nil {
		return common.SendServerError(c, "Failed to record payment")
	}

	return c.JSON(http.StatusCreated, payment)
}

// ListPayments handles GET /invoices/:id/payments
func (h *InvoiceHandlers) ListPayments(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if _, err := h.invoiceService.GetByID(ctx, userID, id); err != nil {
		if repositories.IsNotFound(err) {
			return common.SendNotFoundError(c, "invoice")
		}
		return common.SendServerError(c, "Failed to retrieve invoice")
	}

	payments, err := h.paymentRepo.ListByInvoice(ctx, userID, id)
	if err != nil {
		return common.SendServerError(c, "Failed to list payments")
	}
	if payments == nil {
		payments = []*models.InvoicePayment{}
	}

	return c.JSON(http.StatusOK, payments)
}
