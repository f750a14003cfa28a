package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoicePayment records money received against a single invoice.
type InvoicePayment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	InvoiceID uuid.UUID `json:"invoice_id" db:"invoice_id"`
	Amount    float64   `json:"amount" db:"amount"`
	Method    string    `json:"method" db:"method"`
	PaidAt    time.Time `json:"paid_at" db:"paid_at"`
	Note      *string   `json:"note" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Plan payment statuses. A gateway order that is never verified stays
// "created" forever; there is no webhook reconciliation.
const (
	PlanPaymentStatusCreated  = "created"
	PlanPaymentStatusCaptured = "captured"
)

// PlanPayment records a subscription purchase through the payment gateway,
// keyed by the gateway's order ID.
type PlanPayment struct {
	ID                uuid.UUID `json:"id" db:"id"`
	UserID            uuid.UUID `json:"user_id" db:"user_id"`
	RazorpayOrderID   string    `json:"razorpay_order_id" db:"razorpay_order_id"`
	RazorpayPaymentID *string   `json:"razorpay_payment_id" db:"razorpay_payment_id"`
	RazorpaySignature *string   `json:"-" db:"razorpay_signature"`
	Amount            float64   `json:"amount" db:"amount"`
	Currency          string    `json:"currency" db:"currency"`
	Status            string    `json:"status" db:"status"`
	PlanType          string    `json:"plan_type" db:"plan_type"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}
