package services

import (
	"context"
	"testing"
	"time"

	"billcraft/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) List(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, userID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status string) error {
	args := m.Called(ctx, userID, id, status)
	return args.Error(0)
}

func (m *MockInvoiceRepository) MarkOverdue(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceRepository) RevenueByUser(ctx context.Context, userID uuid.UUID) (float64, float64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(float64), args.Get(1).(float64), args.Error(2)
}

func (m *MockInvoiceRepository) NextInvoiceNumber(ctx context.Context, userID uuid.UUID, year int) (string, error) {
	args := m.Called(ctx, userID, year)
	return args.String(0), args.Error(1)
}

type MockCacheProvider struct {
	mock.Mock
}

func (m *MockCacheProvider) InvalidateDashboardStats(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type InvoiceServiceTestSuite struct {
	suite.Suite
	mockRepo  *MockInvoiceRepository
	mockCache *MockCacheProvider
	service   InvoiceService
	userID    uuid.UUID
	ctx       context.Context
}

func (suite *InvoiceServiceTestSuite) SetupTest() {
	suite.mockRepo = &MockInvoiceRepository{}
	suite.mockCache = &MockCacheProvider{}
	suite.service = NewInvoiceService(suite.mockRepo, suite.mockCache)
	suite.userID = uuid.New()
	suite.ctx = context.Background()

	suite.mockRepo.Test(suite.T())
	suite.mockCache.Test(suite.T())
}

func (suite *InvoiceServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}

func (suite *InvoiceServiceTestSuite) newDraft() *models.Invoice {
	return &models.Invoice{
		Customer: models.CustomerSnapshot{Name: "Acme Traders", Email: "billing@acme.test"},
		Items: []models.InvoiceItem{
			{Description: "Consulting", Quantity: 2, UnitPrice: 500},
			{Description: "Hosting", Quantity: 1, UnitPrice: 250},
		},
		TaxRate:      18,
		DiscountRate: 10,
	}
}

func (suite *InvoiceServiceTestSuite) TestCreate_DerivesTotals() {
	invoice := suite.newDraft()

	suite.mockRepo.On("NextInvoiceNumber", suite.ctx, suite.userID, mock.AnythingOfType("int")).Return("INV-2026-0001", nil)
	suite.mockRepo.On("Create", suite.ctx, invoice).Return(nil)
	suite.mockCache.On("InvalidateDashboardStats", suite.ctx, suite.userID).Return(nil)

	err := suite.service.Create(suite.ctx, suite.userID, invoice)
	assert.NoError(suite.T(), err)

	assert.Equal(suite.T(), 1250.0, invoice.SubTotal)
	assert.Equal(suite.T(), 225.0, invoice.TaxAmount)
	assert.Equal(suite.T(), 125.0, invoice.DiscountAmount)
	assert.Equal(suite.T(), 1350.0, invoice.TotalAmount)
	assert.Equal(suite.T(), "INV-2026-0001", invoice.InvoiceNumber)
	assert.Equal(suite.T(), models.InvoiceStatusDraft, invoice.Status)
	assert.Equal(suite.T(), 1000.0, invoice.Items[0].Total)
	assert.Equal(suite.T(), 250.0, invoice.Items[1].Total)
}

func (suite *InvoiceServiceTestSuite) TestCreate_RejectsMismatchedItemTotal() {
	invoice := suite.newDraft()
	invoice.Items[0].Total = 999 // 2 x 500 = 1000

	err := suite.service.Create(suite.ctx, suite.userID, invoice)
	assert.ErrorContains(suite.T(), err, "does not match quantity x unit price")
}

func (suite *InvoiceServiceTestSuite) TestCreate_RejectsMismatchedGrandTotal() {
	invoice := suite.newDraft()
	invoice.TotalAmount = 9999

	err := suite.service.Create(suite.ctx, suite.userID, invoice)
	assert.ErrorContains(suite.T(), err, "total_amount")
}

func (suite *InvoiceServiceTestSuite) TestCreate_AcceptsMatchingClientFigures() {
	invoice := suite.newDraft()
	invoice.SubTotal = 1250
	invoice.TaxAmount = 225
	invoice.DiscountAmount = 125
	invoice.TotalAmount = 1350
	invoice.Items[0].Total = 1000
	invoice.Items[1].Total = 250

	suite.mockRepo.On("NextInvoiceNumber", suite.ctx, suite.userID, mock.AnythingOfType("int")).Return("INV-2026-0002", nil)
	suite.mockRepo.On("Create", suite.ctx, invoice).Return(nil)
	suite.mockCache.On("InvalidateDashboardStats", suite.ctx, suite.userID).Return(nil)

	err := suite.service.Create(suite.ctx, suite.userID, invoice)
	assert.NoError(suite.T(), err)
}

func (suite *InvoiceServiceTestSuite) TestCreate_RejectsEmptyItems() {
	invoice := suite.newDraft()
	invoice.Items = nil

	err := suite.service.Create(suite.ctx, suite.userID, invoice)
	assert.ErrorContains(suite.T(), err, "at least one item")
}

func (suite *InvoiceServiceTestSuite) TestCreate_RejectsNonPositiveQuantity() {
	invoice := suite.newDraft()
	invoice.Items[0].Quantity = 0

	err := suite.service.Create(suite.ctx, suite.userID, invoice)
	assert.ErrorContains(suite.T(), err, "quantity must be positive")
}

func (suite *InvoiceServiceTestSuite) TestCreate_KeepsClientInvoiceNumber() {
	invoice := suite.newDraft()
	invoice.InvoiceNumber = "CUSTOM-42"

	suite.mockRepo.On("Create", suite.ctx, invoice).Return(nil)
	suite.mockCache.On("InvalidateDashboardStats", suite.ctx, suite.userID).Return(nil)

	err := suite.service.Create(suite.ctx, suite.userID, invoice)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "CUSTOM-42", invoice.InvoiceNumber)
	suite.mockRepo.AssertNotCalled(suite.T(), "NextInvoiceNumber", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestUpdateStatus_AllowsDraftToPending() {
	invoiceID := uuid.New()
	existing := &models.Invoice{ID: invoiceID, UserID: suite.userID, Status: models.InvoiceStatusDraft}

	suite.mockRepo.On("GetByID", suite.ctx, suite.userID, invoiceID).Return(existing, nil)
	suite.mockRepo.On("UpdateStatus", suite.ctx, suite.userID, invoiceID, models.InvoiceStatusPending).Return(nil)
	suite.mockCache.On("InvalidateDashboardStats", suite.ctx, suite.userID).Return(nil)

	updated, err := suite.service.UpdateStatus(suite.ctx, suite.userID, invoiceID, models.InvoiceStatusPending)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.InvoiceStatusPending, updated.Status)
}

func (suite *InvoiceServiceTestSuite) TestUpdateStatus_PaidIsTerminal() {
	invoiceID := uuid.New()
	existing := &models.Invoice{ID: invoiceID, UserID: suite.userID, Status: models.InvoiceStatusPaid}

	suite.mockRepo.On("GetByID", suite.ctx, suite.userID, invoiceID).Return(existing, nil)

	_, err := suite.service.UpdateStatus(suite.ctx, suite.userID, invoiceID, models.InvoiceStatusPending)
	assert.ErrorContains(suite.T(), err, "cannot transition")
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestUpdateStatus_RejectsPendingToDraft() {
	invoiceID := uuid.New()
	existing := &models.Invoice{ID: invoiceID, UserID: suite.userID, Status: models.InvoiceStatusPending}

	suite.mockRepo.On("GetByID", suite.ctx, suite.userID, invoiceID).Return(existing, nil)

	_, err := suite.service.UpdateStatus(suite.ctx, suite.userID, invoiceID, models.InvoiceStatusDraft)
	assert.ErrorContains(suite.T(), err, "cannot transition")
}

func (suite *InvoiceServiceTestSuite) TestUpdateStatus_OverdueToPaid() {
	invoiceID := uuid.New()
	existing := &models.Invoice{ID: invoiceID, UserID: suite.userID, Status: models.InvoiceStatusOverdue}

	suite.mockRepo.On("GetByID", suite.ctx, suite.userID, invoiceID).Return(existing, nil)
	suite.mockRepo.On("UpdateStatus", suite.ctx, suite.userID, invoiceID, models.InvoiceStatusPaid).Return(nil)
	suite.mockCache.On("InvalidateDashboardStats", suite.ctx, suite.userID).Return(nil)

	updated, err := suite.service.UpdateStatus(suite.ctx, suite.userID, invoiceID, models.InvoiceStatusPaid)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.InvoiceStatusPaid, updated.Status)
}

func (suite *InvoiceServiceTestSuite) TestUpdate_RejectsPaidInvoice() {
	invoiceID := uuid.New()
	existing := &models.Invoice{ID: invoiceID, UserID: suite.userID, Status: models.InvoiceStatusPaid, InvoiceNumber: "INV-2026-0009"}

	suite.mockRepo.On("GetByID", suite.ctx, suite.userID, invoiceID).Return(existing, nil)

	edit := suite.newDraft()
	edit.ID = invoiceID
	err := suite.service.Update(suite.ctx, suite.userID, edit)
	assert.ErrorContains(suite.T(), err, "paid invoices cannot be modified")
}

func (suite *InvoiceServiceTestSuite) TestUpdate_PreservesNumberAndStatus() {
	invoiceID := uuid.New()
	existing := &models.Invoice{ID: invoiceID, UserID: suite.userID, Status: models.InvoiceStatusPending, InvoiceNumber: "INV-2026-0003", IssueDate: time.Now()}

	suite.mockRepo.On("GetByID", suite.ctx, suite.userID, invoiceID).Return(existing, nil)
	suite.mockRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Invoice")).Return(nil)
	suite.mockCache.On("InvalidateDashboardStats", suite.ctx, suite.userID).Return(nil)

	edit := suite.newDraft()
	edit.ID = invoiceID
	edit.InvoiceNumber = "SOMETHING-ELSE"
	edit.Status = models.InvoiceStatusDraft

	err := suite.service.Update(suite.ctx, suite.userID, edit)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "INV-2026-0003", edit.InvoiceNumber)
	assert.Equal(suite.T(), models.InvoiceStatusPending, edit.Status)
}
