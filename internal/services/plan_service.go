package services

import (
	"context"
	"fmt"
	"time"

	"billcraft/internal/models"
	"billcraft/internal/repositories"

	"github.com/google/uuid"
)

// PlanService drives the subscription purchase flow: create a gateway order,
// verify the signed callback, extend the tenant's plan.
type PlanService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, planType string) (*CreateOrderResult, error)
	VerifyPayment(ctx context.Context, userID uuid.UUID, orderID, paymentID, signature string) error
	AvailablePlans() map[string]PlanConfig
}

// PlanConfig represents a subscription plan configuration
type PlanConfig struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Interval string  `json:"interval"`
}

// Fixed plan pricing
var availablePlans = map[string]PlanConfig{
	"monthly": {
		ID:       "monthly",
		Name:     "Monthly Plan",
		Amount:   399.0,
		Currency: "INR",
		Interval: "monthly",
	},
	"yearly": {
		ID:       "yearly",
		Name:     "Yearly Plan",
		Amount:   3999.0,
		Currency: "INR",
		Interval: "yearly",
	},
}

// CreateOrderResult is returned to the client so it can open the checkout.
type CreateOrderResult struct {
	Order *GatewayOrder `json:"order"`
	KeyID string        `json:"key_id"`
}

// ErrInvalidSignature marks a failed HMAC check; the payment record is left
// untouched when it is returned.
var ErrInvalidSignature = fmt.Errorf("invalid payment signature")

type planService struct {
	planPaymentRepo repositories.PlanPaymentRepository
	userRepo        repositories.UserRepository
	razorpaySvc     RazorpayService
}

func NewPlanService(planPaymentRepo repositories.PlanPaymentRepository, userRepo repositories.UserRepository, razorpaySvc RazorpayService) PlanService {
	return &planService{
		planPaymentRepo: planPaymentRepo,
		userRepo:        userRepo,
		razorpaySvc:     razorpaySvc,
	}
}

func (s *planService) AvailablePlans() map[string]PlanConfig {
	// Return a copy to prevent external modifications
	result := make(map[string]PlanConfig, len(availablePlans))
	for k, v := range availablePlans {
		result[k] = v
	}
	return result
}

func (s *planService) CreateOrder(ctx context.Context, userID uuid.UUID, planType string) (*CreateOrderResult, error) {
	plan, exists := availablePlans[planType]
	if !exists {
		return nil, fmt.Errorf("invalid plan type: %s", planType)
	}

	receipt := fmt.Sprintf("receipt_order_%d", time.Now().UnixNano())
	amountPaise := int64(plan.Amount * 100)

	order, err := s.razorpaySvc.CreateOrder(ctx, amountPaise, plan.Currency, receipt)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	payment := &models.PlanPayment{
		ID:              uuid.New(),
		UserID:          userID,
		RazorpayOrderID: order.ID,
		Amount:          plan.Amount,
		Currency:        plan.Currency,
		Status:          models.PlanPaymentStatusCreated,
		PlanType:        planType,
	}

	if err := s.planPaymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to persist payment record: %w", err)
	}

	return &CreateOrderResult{Order: order, KeyID: s.razorpaySvc.KeyID()}, nil
}

// VerifyPayment checks the gateway signature and, on success, marks the
// payment captured and extends the caller's plan from the verification
// instant: +1 month for monthly, +1 year for yearly.
func (s *planService) VerifyPayment(ctx context.Context, userID uuid.UUID, orderID, paymentID, signature string) error {
	if !s.razorpaySvc.VerifySignature(orderID, paymentID, signature) {
		return ErrInvalidSignature
	}

	payment, err := s.planPaymentRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("payment record not found: %w", err)
	}

	if payment.UserID != userID {
		return repositories.ErrNotFound
	}

	if err := s.planPaymentRepo.MarkCaptured(ctx, orderID, paymentID, signature); err != nil {
		return fmt.Errorf("failed to mark payment captured: %w", err)
	}

	startDate := time.Now()
	var endDate time.Time
	switch payment.PlanType {
	case "monthly":
		endDate = startDate.AddDate(0, 1, 0)
	case "yearly":
		endDate = startDate.AddDate(1, 0, 0)
	default:
		return fmt.Errorf("unknown plan type on payment record: %s", payment.PlanType)
	}

	if err := s.userRepo.UpdatePlan(ctx, userID, payment.PlanType, startDate, endDate); err != nil {
		return fmt.Errorf("failed to update user plan: %w", err)
	}

	return nil
}
