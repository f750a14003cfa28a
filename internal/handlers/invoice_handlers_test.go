package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"billcraft/internal/common"
	"billcraft/internal/models"
	"billcraft/internal/repositories"
	"billcraft/internal/services"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Create(ctx context.Context, userID uuid.UUID, invoice *models.Invoice) error {
	args := m.Called(ctx, userID, invoice)
	return args.Error(0)
}

func (m *MockInvoiceService) GetByID(ctx context.Context, userID, invoiceID uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, userID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Update(ctx context.Context, userID uuid.UUID, invoice *models.Invoice) error {
	args := m.Called(ctx, userID, invoice)
	return args.Error(0)
}

func (m *MockInvoiceService) Delete(ctx context.Context, userID, invoiceID uuid.UUID) error {
	args := m.Called(ctx, userID, invoiceID)
	return args.Error(0)
}

func (m *MockInvoiceService) List(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, userID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) UpdateStatus(ctx context.Context, userID, invoiceID uuid.UUID, newStatus string) (*models.Invoice, error) {
	args := m.Called(ctx, userID, invoiceID, newStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

type MockBusinessProfileRepository struct {
	mock.Mock
}

func (m *MockBusinessProfileRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*models.BusinessProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BusinessProfile), args.Error(1)
}

func (m *MockBusinessProfileRepository) Upsert(ctx context.Context, profile *models.BusinessProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

type MockInvoicePaymentRepository struct {
	mock.Mock
}

func (m *MockInvoicePaymentRepository) Create(ctx context.Context, payment *models.InvoicePayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockInvoicePaymentRepository) ListByInvoice(ctx context.Context, userID, invoiceID uuid.UUID) ([]*models.InvoicePayment, error) {
	args := m.Called(ctx, userID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InvoicePayment), args.Error(1)
}

func (m *MockInvoicePaymentRepository) DeleteByInvoice(ctx context.Context, userID, invoiceID uuid.UUID) error {
	args := m.Called(ctx, userID, invoiceID)
	return args.Error(0)
}

// newInvoiceTestContext builds an echo context with an authenticated user.
func newInvoiceTestContext(method, path, body string, userID uuid.UUID, paramNames []string, paramValues []string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	ctx := context.WithValue(req.Context(), common.UserIDKey, userID)
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames(paramNames...)
	c.SetParamValues(paramValues...)
	return c, rec
}

func sampleInvoice(userID uuid.UUID) *models.Invoice {
	return &models.Invoice{
		ID:            uuid.New(),
		UserID:        userID,
		InvoiceNumber: "INV-2026-0001",
		Customer:      models.CustomerSnapshot{Name: "Acme Traders", Email: "billing@acme.test"},
		Items: []models.InvoiceItem{
			{Description: "Consulting", Quantity: 2, UnitPrice: 500, Total: 1000},
		},
		SubTotal:    1000,
		TotalAmount: 1000,
		Status:      models.InvoiceStatusPending,
		IssueDate:   time.Now(),
	}
}

func TestCreateInvoice_DuplicateNumberGets409(t *testing.T) {
	userID := uuid.New()

	invoiceSvc := &MockInvoiceService{}
	invoiceSvc.On("Create", mock.Anything, userID, mock.Anything).
		Return(&pgconn.PgError{Code: "23505", ConstraintName: "invoices_user_id_invoice_number_key"})

	h := NewInvoiceHandlers(invoiceSvc, nil, nil, nil, nil, nil)

	body := `{"invoice_number":"INV-2026-0001","customer":{"name":"Acme Traders"},` +
		`"items":[{"description":"Consulting","quantity":1,"unit_price":100}]}`
	c, rec := newInvoiceTestContext(http.MethodPost, "/api/invoices", body, userID, nil, nil)

	require.NoError(t, h.CreateInvoice(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"CONFLICT"`)
	assert.Contains(t, rec.Body.String(), "An invoice with this number already exists")
	// The driver error text stays out of the response.
	assert.NotContains(t, rec.Body.String(), "SQLSTATE")
}

func TestUpdateInvoice_DuplicateNumberGets409(t *testing.T) {
	userID := uuid.New()
	invoiceID := uuid.New()

	invoiceSvc := &MockInvoiceService{}
	invoiceSvc.On("Update", mock.Anything, userID, mock.Anything).
		Return(&pgconn.PgError{Code: "23505", ConstraintName: "invoices_user_id_invoice_number_key"})

	h := NewInvoiceHandlers(invoiceSvc, nil, nil, nil, nil, nil)

	body := `{"invoice_number":"INV-2026-0002","customer":{"name":"Acme Traders"},` +
		`"items":[{"description":"Consulting","quantity":1,"unit_price":100}]}`
	c, rec := newInvoiceTestContext(http.MethodPut, "/api/invoices/"+invoiceID.String(), body, userID,
		[]string{"id"}, []string{invoiceID.String()})

	require.NoError(t, h.UpdateInvoice(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"CONFLICT"`)
}

func TestCreateInvoice_BadIssueDateUsesErrorEnvelope(t *testing.T) {
	userID := uuid.New()

	h := NewInvoiceHandlers(&MockInvoiceService{}, nil, nil, nil, nil, nil)

	body := `{"customer":{"name":"Acme Traders"},` +
		`"items":[{"description":"Consulting","quantity":1,"unit_price":100}],"issue_date":"15-08-2026"}`
	c, rec := newInvoiceTestContext(http.MethodPost, "/api/invoices", body, userID, nil, nil)

	require.NoError(t, h.CreateInvoice(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"CLIENT_ERROR"`)
	assert.Contains(t, rec.Body.String(), "issue_date must be in YYYY-MM-DD format")
}

func TestGetInvoice_ForeignTenantGets404(t *testing.T) {
	userID := uuid.New()
	invoiceID := uuid.New()

	invoiceSvc := &MockInvoiceService{}
	// The row exists but belongs to another tenant, so the lookup misses.
	invoiceSvc.On("GetByID", mock.Anything, userID, invoiceID).Return(nil, repositories.ErrNotFound)

	h := NewInvoiceHandlers(invoiceSvc, nil, nil, nil, nil, nil)

	c, rec := newInvoiceTestContext(http.MethodGet, "/api/invoices/"+invoiceID.String(), "", userID,
		[]string{"id"}, []string{invoiceID.String()})

	require.NoError(t, h.GetInvoice(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetInvoice_MissingAuthGets401(t *testing.T) {
	h := NewInvoiceHandlers(&MockInvoiceService{}, nil, nil, nil, nil, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/invoices/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.GetInvoice(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateInvoiceStatus_InvalidStatusRejected(t *testing.T) {
	userID := uuid.New()
	invoiceID := uuid.New()

	h := NewInvoiceHandlers(&MockInvoiceService{}, nil, nil, nil, nil, nil)

	c, rec := newInvoiceTestContext(http.MethodPut, "/api/invoices/"+invoiceID.String()+"/status",
		`{"status":"cancelled"}`, userID, []string{"id"}, []string{invoiceID.String()})

	require.NoError(t, h.UpdateInvoiceStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateInvoiceStatus_Success(t *testing.T) {
	userID := uuid.New()
	invoice := sampleInvoice(userID)
	invoice.Status = models.InvoiceStatusPaid

	invoiceSvc := &MockInvoiceService{}
	invoiceSvc.On("UpdateStatus", mock.Anything, userID, invoice.ID, models.InvoiceStatusPaid).Return(invoice, nil)

	h := NewInvoiceHandlers(invoiceSvc, nil, nil, nil, nil, nil)

	c, rec := newInvoiceTestContext(http.MethodPut, "/api/invoices/"+invoice.ID.String()+"/status",
		`{"status":"paid"}`, userID, []string{"id"}, []string{invoice.ID.String()})

	require.NoError(t, h.UpdateInvoiceStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"paid"`)
}

func TestRenderInvoicePDF_StreamsAttachment(t *testing.T) {
	userID := uuid.New()
	invoice := sampleInvoice(userID)

	invoiceSvc := &MockInvoiceService{}
	invoiceSvc.On("GetByID", mock.Anything, userID, invoice.ID).Return(invoice, nil)

	profileRepo := &MockBusinessProfileRepository{}
	profileRepo.On("GetByUser", mock.Anything, userID).Return(nil, pgx.ErrNoRows)

	h := NewInvoiceHandlers(invoiceSvc, nil, nil, profileRepo, services.NewPDFService(), nil)

	c, rec := newInvoiceTestContext(http.MethodGet, "/api/invoices/"+invoice.ID.String()+"/pdf", "", userID,
		[]string{"id"}, []string{invoice.ID.String()})

	require.NoError(t, h.RenderInvoicePDF(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "INV-2026-0001.pdf")
	// PDF files start with the %PDF magic bytes.
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestRecordPayment_NonPositiveAmountRejected(t *testing.T) {
	userID := uuid.New()
	invoiceID := uuid.New()

	h := NewInvoiceHandlers(&MockInvoiceService{}, nil, &MockInvoicePaymentRepository{}, nil, nil, nil)

	c, rec := newInvoiceTestContext(http.MethodPost, "/api/invoices/"+invoiceID.String()+"/payments",
		`{"amount":0,"method":"upi"}`, userID, []string{"id"}, []string{invoiceID.String()})

	require.NoError(t, h.RecordPayment(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordPayment_Success(t *testing.T) {
	userID := uuid.New()
	invoice := sampleInvoice(userID)

	invoiceSvc := &MockInvoiceService{}
	invoiceSvc.On("GetByID", mock.Anything, userID, invoice.ID).Return(invoice, nil)

	paymentRepo := &MockInvoicePaymentRepository{}
	paymentRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.InvoicePayment) bool {
		return p.UserID == userID && p.InvoiceID == invoice.ID && p.Amount == 500 && p.Method == "upi"
	})).Return(nil)

	h := NewInvoiceHandlers(invoiceSvc, nil, paymentRepo, nil, nil, nil)

	c, rec := newInvoiceTestContext(http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/payments",
		`{"amount":500,"method":"upi","paid_at":"2026-08-15"}`, userID, []string{"id"}, []string{invoice.ID.String()})

	require.NoError(t, h.RecordPayment(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	paymentRepo.AssertExpectations(t)
}
