package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"billcraft/internal/caching"
	"billcraft/internal/models"
	"billcraft/internal/repositories"

	"github.com/google/uuid"
)

const (
	dashboardCacheTTL  = 30 * time.Second
	recentInvoiceCount = 5
)

// DashboardService aggregates per-tenant counts, revenue and recent activity.
type DashboardService interface {
	GetStats(ctx context.Context, userID uuid.UUID) (*models.DashboardStats, error)
}

type dashboardService struct {
	invoiceRepo  repositories.InvoiceRepository
	customerRepo repositories.CustomerRepository
	productRepo  repositories.ProductRepository
	cache        caching.CacheService
}

func NewDashboardService(invoiceRepo repositories.InvoiceRepository, customerRepo repositories.CustomerRepository, productRepo repositories.ProductRepository, cache caching.CacheService) DashboardService {
	return &dashboardService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		cache:        cache,
	}
}

func (s *dashboardService) GetStats(ctx context.Context, userID uuid.UUID) (*models.DashboardStats, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetDashboardStats(ctx, userID); err == nil && cached != nil {
			return cached, nil
		}
	}

	stats := &models.DashboardStats{}

	invoiceCount, err := s.invoiceRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}
	stats.TotalInvoices = invoiceCount

	customerCount, err := s.customerRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	stats.TotalCustomers = customerCount

	productCount, err := s.productRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	stats.TotalProducts = productCount

	totalRevenue, pendingRevenue, err := s.invoiceRepo.RevenueByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	stats.TotalRevenue = totalRevenue
	stats.PendingRevenue = pendingRevenue

	recent, err := s.invoiceRepo.List(ctx, userID, "", recentInvoiceCount, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent invoices: %w", err)
	}
	stats.RecentInvoices = recent

	if s.cache != nil {
		if err := s.cache.SetDashboardStats(ctx, userID, stats, dashboardCacheTTL); err != nil {
			log.Printf("warning: failed to cache dashboard stats: %v", err)
		}
	}

	return stats, nil
}
