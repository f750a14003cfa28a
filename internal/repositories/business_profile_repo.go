package repositories

import (
	"context"

	"billcraft/internal/models"

	"github.com/google/uuid"
)

type BusinessProfileRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.BusinessProfile, error)
	Upsert(ctx context.Context, profile *models.BusinessProfile) error
}

type businessProfileRepo struct {
	db DB
}

func NewBusinessProfileRepo(db DB) BusinessProfileRepository {
	return &businessProfileRepo{db: db}
}

func (r *businessProfileRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*models.BusinessProfile, error) {
	profile := &models.BusinessProfile{}
	query := `
		SELECT id, user_id, business_name, email, phone, address, gst_number, logo_url, signature, website, default_tax_rate, currency, created_at, updated_at
		FROM business_profiles
		WHERE user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(&profile.ID, &profile.UserID, &profile.BusinessName, &profile.Email, &profile.Phone, &profile.Address, &profile.GSTNumber, &profile.LogoURL, &profile.Signature, &profile.Website, &profile.DefaultTaxRate, &profile.Currency, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Upsert creates or replaces the tenant's single profile in one statement.
func (r *businessProfileRepo) Upsert(ctx context.Context, profile *models.BusinessProfile) error {
	query := `
		INSERT INTO business_profiles (id, user_id, business_name, email, phone, address, gst_number, logo_url, signature, website, default_tax_rate, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			business_name = EXCLUDED.business_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			gst_number = EXCLUDED.gst_number,
			logo_url = EXCLUDED.logo_url,
			signature = EXCLUDED.signature,
			website = EXCLUDED.website,
			default_tax_rate = EXCLUDED.default_tax_rate,
			currency = EXCLUDED.currency,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, profile.ID, profile.UserID, profile.BusinessName, profile.Email, profile.Phone, profile.Address, profile.GSTNumber, profile.LogoURL, profile.Signature, profile.Website, profile.DefaultTaxRate, profile.Currency)
	return err
}
