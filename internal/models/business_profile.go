package models

import (
	"time"

	"github.com/google/uuid"
)

// BusinessProfile is the issuer block on rendered invoices. One per tenant.
type BusinessProfile struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	BusinessName   string    `json:"business_name" db:"business_name"`
	Email          string    `json:"email" db:"email"`
	Phone          *string   `json:"phone" db:"phone"`
	Address        *string   `json:"address" db:"address"`
	GSTNumber      *string   `json:"gst_number" db:"gst_number"`
	LogoURL        *string   `json:"logo_url" db:"logo_url"` // inline data URI
	Signature      *string   `json:"signature" db:"signature"`
	Website        *string   `json:"website" db:"website"`
	DefaultTaxRate float64   `json:"default_tax_rate" db:"default_tax_rate"`
	Currency       string    `json:"currency" db:"currency"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
