package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the tenant of record: every other entity hangs off its ID.
type User struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Username      string     `json:"username" db:"username"`
	Email         string     `json:"email" db:"email"`
	PasswordHash  string     `json:"-" db:"password_hash"` // Never serialize in JSON
	Role          string     `json:"role" db:"role"`
	PlanType      string     `json:"plan_type" db:"plan_type"`
	PlanStartDate time.Time  `json:"plan_start_date" db:"plan_start_date"`
	PlanEndDate   *time.Time `json:"plan_end_date" db:"plan_end_date"`
	IsActivePlan  bool       `json:"is_active_plan" db:"is_active_plan"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	UserID      string    `json:"user_id"`
	IssuedAt    time.Time `json:"issued_at"`
}
