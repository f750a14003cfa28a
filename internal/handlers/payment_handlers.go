package handlers

import (
	"errors"
	"net/http"

	"billcraft/internal/common"
	"billcraft/internal/repositories"
	"billcraft/internal/services"

	"github.com/labstack/echo/v4"
)

// PaymentHandlers handles subscription checkout requests
type PaymentHandlers struct {
	planService services.PlanService
}

func NewPaymentHandlers(planService services.PlanService) *PaymentHandlers {
	return &PaymentHandlers{planService: planService}
}

// ListPlans handles GET /payments/plans
func (h *PaymentHandlers) ListPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, h.planService.AvailablePlans())
}

// CreateOrder handles POST /payments/create-order
func (h *PaymentHandlers) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		PlanType string `json:"plan_type"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidatePlanType(req.PlanType); err != nil {
		return common.SendValidationError(c, "plan_type", err.Error())
	}

	result, err := h.planService.CreateOrder(ctx, userID, req.PlanType)
	if err != nil {
		return common.SendUpstreamError(c, "Failed to create payment order")
	}

	return c.JSON(http.StatusCreated, result)
}

// VerifyPayment handles POST /payments/verify
func (h *PaymentHandlers) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		RazorpayOrderID   string `json:"razorpay_order_id"`
		RazorpayPaymentID string `json:"razorpay_payment_id"`
		RazorpaySignature string `json:"razorpay_signature"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return common.SendValidationError(c, "payment", "order id, payment id and signature are required")
	}

	if err := h.planService.VerifyPayment(ctx, userID, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			return common.SendClientError(c, "Payment signature verification failed")
		}
		if repositories.IsNotFound(err) {
			return common.SendNotFoundError(c, "payment order")
		}
		return common.SendServerError(c, "Failed to verify payment")
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "captured"})
}
