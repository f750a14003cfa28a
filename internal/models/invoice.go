package models

import (
	"time"

	"github.com/google/uuid"
)

// Invoice statuses.
const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// CustomerSnapshot is the point-in-time copy of customer details embedded in
// an invoice. CustomerID optionally points at the live Customer record; the
// snapshot survives later edits or deletion of that record.
type CustomerSnapshot struct {
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Address    string     `json:"address"`
}

// InvoiceItem is one line of an invoice, stored embedded in the invoice row.
type InvoiceItem struct {
	Description string     `json:"description"`
	Quantity    float64    `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
	Total       float64    `json:"total"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
}

type Invoice struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	UserID         uuid.UUID        `json:"user_id" db:"user_id"`
	InvoiceNumber  string           `json:"invoice_number" db:"invoice_number"`
	Customer       CustomerSnapshot `json:"customer" db:"-"`
	Items          []InvoiceItem    `json:"items" db:"items"`
	SubTotal       float64          `json:"sub_total" db:"sub_total"`
	TaxRate        float64          `json:"tax_rate" db:"tax_rate"`
	TaxAmount      float64          `json:"tax_amount" db:"tax_amount"`
	DiscountRate   float64          `json:"discount_rate" db:"discount_rate"`
	DiscountAmount float64          `json:"discount_amount" db:"discount_amount"`
	TotalAmount    float64          `json:"total_amount" db:"total_amount"`
	Status         string           `json:"status" db:"status"`
	IssueDate      time.Time        `json:"issue_date" db:"issue_date"`
	DueDate        *time.Time       `json:"due_date" db:"due_date"`
	Notes          *string          `json:"notes" db:"notes"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}
