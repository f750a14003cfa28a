package repositories

import (
	"context"

	"billcraft/internal/models"
)

type PlanPaymentRepository interface {
	Create(ctx context.Context, payment *models.PlanPayment) error
	GetByOrderID(ctx context.Context, orderID string) (*models.PlanPayment, error)
	MarkCaptured(ctx context.Context, orderID, paymentID, signature string) error
}

type planPaymentRepo struct {
	db DB
}

func NewPlanPaymentRepo(db DB) PlanPaymentRepository {
	return &planPaymentRepo{db: db}
}

func (r *planPaymentRepo) Create(ctx context.Context, payment *models.PlanPayment) error {
	query := `
		INSERT INTO plan_payments (id, user_id, razorpay_order_id, razorpay_payment_id, razorpay_signature, amount, currency, status, plan_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, payment.ID, payment.UserID, payment.RazorpayOrderID, payment.RazorpayPaymentID, payment.RazorpaySignature, payment.Amount, payment.Currency, payment.Status, payment.PlanType)
	return err
}

// GetByOrderID looks up by the gateway order id, which is unique across
// tenants; the verify flow re-checks ownership against the caller.
func (r *planPaymentRepo) GetByOrderID(ctx context.Context, orderID string) (*models.PlanPayment, error) {
	payment := &models.PlanPayment{}
	query := `
		SELECT id, user_id, razorpay_order_id, razorpay_payment_id, razorpay_signature, amount, currency, status, plan_type, created_at, updated_at
		FROM plan_payments
		WHERE razorpay_order_id = $1
	`
	err := r.db.QueryRow(ctx, query, orderID).Scan(&payment.ID, &payment.UserID, &payment.RazorpayOrderID, &payment.RazorpayPaymentID, &payment.RazorpaySignature, &payment.Amount, &payment.Currency, &payment.Status, &payment.PlanType, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *planPaymentRepo) MarkCaptured(ctx context.Context, orderID, paymentID, signature string) error {
	query := `
		UPDATE plan_payments
		SET razorpay_payment_id = $1, razorpay_signature = $2, status = 'captured', updated_at = NOW()
		WHERE razorpay_order_id = $3
	`
	tag, err := r.db.Exec(ctx, query, paymentID, signature, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
