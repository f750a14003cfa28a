package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"billcraft/internal/models"
	"billcraft/internal/repositories"

	"github.com/google/uuid"
)

// toleranceCents is the allowed drift between client-submitted figures and
// server-derived ones before the request is rejected.
const toleranceCents = 0.01

// InvoiceService owns invoice lifecycle rules: numbering, totals, and the
// status transition map.
type InvoiceService interface {
	Create(ctx context.Context, userID uuid.UUID, invoice *models.Invoice) error
	GetByID(ctx context.Context, userID, invoiceID uuid.UUID) (*models.Invoice, error)
	Update(ctx context.Context, userID uuid.UUID, invoice *models.Invoice) error
	Delete(ctx context.Context, userID, invoiceID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error)
	UpdateStatus(ctx context.Context, userID, invoiceID uuid.UUID, newStatus string) (*models.Invoice, error)
}

// validTransitions encodes the invoice status lifecycle. Paid is terminal.
var validTransitions = map[string][]string{
	models.InvoiceStatusDraft:   {models.InvoiceStatusPending, models.InvoiceStatusPaid},
	models.InvoiceStatusPending: {models.InvoiceStatusPaid, models.InvoiceStatusOverdue},
	models.InvoiceStatusOverdue: {models.InvoiceStatusPaid},
	models.InvoiceStatusPaid:    {},
}

type invoiceService struct {
	invoiceRepo repositories.InvoiceRepository
	cache       CacheProvider
}

// CacheProvider is the slice of the cache the invoice service needs; writes
// invalidate the tenant's dashboard snapshot.
type CacheProvider interface {
	InvalidateDashboardStats(ctx context.Context, userID uuid.UUID) error
}

func NewInvoiceService(invoiceRepo repositories.InvoiceRepository, cache CacheProvider) InvoiceService {
	return &invoiceService{invoiceRepo: invoiceRepo, cache: cache}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// deriveTotals recomputes every monetary figure from quantities, unit prices
// and rates. When the client sent its own figures they must agree with the
// derived ones to within a cent, otherwise the invoice is rejected.
func deriveTotals(inv *models.Invoice) error {
	var subTotal float64
	for i := range inv.Items {
		item := &inv.Items[i]
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive", i)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("item %d: unit price must not be negative", i)
		}
		derived := roundCents(item.Quantity * item.UnitPrice)
		if item.Total != 0 && math.Abs(item.Total-derived) > toleranceCents {
			return fmt.Errorf("item %d: total %.2f does not match quantity x unit price %.2f", i, item.Total, derived)
		}
		item.Total = derived
		subTotal += derived
	}
	subTotal = roundCents(subTotal)

	if inv.TaxRate < 0 || inv.DiscountRate < 0 {
		return fmt.Errorf("tax and discount rates must not be negative")
	}

	taxAmount := roundCents(subTotal * inv.TaxRate / 100)
	discountAmount := roundCents(subTotal * inv.DiscountRate / 100)
	totalAmount := roundCents(subTotal + taxAmount - discountAmount)

	if inv.SubTotal != 0 && math.Abs(inv.SubTotal-subTotal) > toleranceCents {
		return fmt.Errorf("sub_total %.2f does not match derived %.2f", inv.SubTotal, subTotal)
	}
	if inv.TaxAmount != 0 && math.Abs(inv.TaxAmount-taxAmount) > toleranceCents {
		return fmt.Errorf("tax_amount %.2f does not match derived %.2f", inv.TaxAmount, taxAmount)
	}
	if inv.DiscountAmount != 0 && math.Abs(inv.DiscountAmount-discountAmount) > toleranceCents {
		return fmt.Errorf("discount_amount %.2f does not match derived %.2f", inv.DiscountAmount, discountAmount)
	}
	if inv.TotalAmount != 0 && math.Abs(inv.TotalAmount-totalAmount) > toleranceCents {
		return fmt.Errorf("total_amount %.2f does not match derived %.2f", inv.TotalAmount, totalAmount)
	}

	inv.SubTotal = subTotal
	inv.TaxAmount = taxAmount
	inv.DiscountAmount = discountAmount
	inv.TotalAmount = totalAmount
	return nil
}

func (s *invoiceService) Create(ctx context.Context, userID uuid.UUID, invoice *models.Invoice) error {
	if len(invoice.Items) == 0 {
		return fmt.Errorf("invoice must have at least one item")
	}
	if invoice.Customer.Name == "" {
		return fmt.Errorf("customer name is required")
	}

	if err := deriveTotals(invoice); err != nil {
		return err
	}

	invoice.ID = uuid.New()
	invoice.UserID = userID
	if invoice.Status == "" {
		invoice.Status = models.InvoiceStatusDraft
	}
	if invoice.IssueDate.IsZero() {
		invoice.IssueDate = time.Now()
	}

	if invoice.InvoiceNumber == "" {
		number, err := s.invoiceRepo.NextInvoiceNumber(ctx, userID, invoice.IssueDate.Year())
		if err != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", err)
		}
		invoice.InvoiceNumber = number
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return err
	}

	s.invalidateCache(ctx, userID)
	return nil
}

func (s *invoiceService) GetByID(ctx context.Context, userID, invoiceID uuid.UUID) (*models.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, userID, invoiceID)
}

func (s *invoiceService) Update(ctx context.Context, userID uuid.UUID, invoice *models.Invoice) error {
	existing, err := s.invoiceRepo.GetByID(ctx, userID, invoice.ID)
	if err != nil {
		return err
	}
	if existing.Status == models.InvoiceStatusPaid {
		return fmt.Errorf("paid invoices cannot be modified")
	}
	if len(invoice.Items) == 0 {
		return fmt.Errorf("invoice must have at least one item")
	}

	if err := deriveTotals(invoice); err != nil {
		return err
	}

	// Number and status are not editable through Update.
	invoice.UserID = userID
	invoice.InvoiceNumber = existing.InvoiceNumber
	invoice.Status = existing.Status

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return err
	}

	s.invalidateCache(ctx, userID)
	return nil
}

func (s *invoiceService) Delete(ctx context.Context, userID, invoiceID uuid.UUID) error {
	if err := s.invoiceRepo.Delete(ctx, userID, invoiceID); err != nil {
		return err
	}
	s.invalidateCache(ctx, userID)
	return nil
}

func (s *invoiceService) List(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error) {
	return s.invoiceRepo.List(ctx, userID, status, limit, offset)
}

func (s *invoiceService) UpdateStatus(ctx context.Context, userID, invoiceID uuid.UUID, newStatus string) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range validTransitions[invoice.Status] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("cannot transition invoice from %s to %s", invoice.Status, newStatus)
	}

	if err := s.invoiceRepo.UpdateStatus(ctx, userID, invoiceID, newStatus); err != nil {
		return nil, err
	}
	invoice.Status = newStatus

	s.invalidateCache(ctx, userID)
	return invoice, nil
}

func (s *invoiceService) invalidateCache(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	// Cache invalidation failure must not fail the write.
	_ = s.cache.InvalidateDashboardStats(ctx, userID)
}
