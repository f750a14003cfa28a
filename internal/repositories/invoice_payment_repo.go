package repositories

import (
	"context"

	"billcraft/internal/models"

	"github.com/google/uuid"
)

type InvoicePaymentRepository interface {
	Create(ctx context.Context, payment *models.InvoicePayment) error
	ListByInvoice(ctx context.Context, userID, invoiceID uuid.UUID) ([]*models.InvoicePayment, error)
	DeleteByInvoice(ctx context.Context, userID, invoiceID uuid.UUID) error
}

type invoicePaymentRepo struct {
	db DB
}

func NewInvoicePaymentRepo(db DB) InvoicePaymentRepository {
	return &invoicePaymentRepo{db: db}
}

func (r *invoicePaymentRepo) Create(ctx context.Context, payment *models.InvoicePayment) error {
	query := `
		INSERT INTO invoice_payments (id, user_id, invoice_id, amount, method, paid_at, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query, payment.ID, payment.UserID, payment.InvoiceID, payment.Amount, payment.Method, payment.PaidAt, payment.Note)
	return err
}

func (r *invoicePaymentRepo) ListByInvoice(ctx context.Context, userID, invoiceID uuid.UUID) ([]*models.InvoicePayment, error) {
	query := `
		SELECT id, user_id, invoice_id, amount, method, paid_at, note, created_at
		FROM invoice_payments
		WHERE user_id = $1 AND invoice_id = $2
		ORDER BY paid_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.InvoicePayment
	for rows.Next() {
		payment := &models.InvoicePayment{}
		if err := rows.Scan(&payment.ID, &payment.UserID, &payment.InvoiceID, &payment.Amount, &payment.Method, &payment.PaidAt, &payment.Note, &payment.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func (r *invoicePaymentRepo) DeleteByInvoice(ctx context.Context, userID, invoiceID uuid.UUID) error {
	query := `DELETE FROM invoice_payments WHERE user_id = $1 AND invoice_id = $2`
	_, err := r.db.Exec(ctx, query, userID, invoiceID)
	return err
}
