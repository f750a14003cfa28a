package repositories

import (
	"context"
	"time"

	"billcraft/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, planType string, startDate time.Time, endDate time.Time) error
}

type userRepo struct {
	db DB
}

func NewUserRepo(db DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, role, plan_type, plan_start_date, plan_end_date, is_active_plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.PlanType, user.PlanStartDate, user.PlanEndDate, user.IsActivePlan)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, role, plan_type, plan_start_date, plan_end_date, is_active_plan, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.PlanType, &user.PlanStartDate, &user.PlanEndDate, &user.IsActivePlan, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, role, plan_type, plan_start_date, plan_end_date, is_active_plan, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	err := r.db.QueryRow(ctx, query, email).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.PlanType, &user.PlanStartDate, &user.PlanEndDate, &user.IsActivePlan, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) UpdatePlan(ctx context.Context, id uuid.UUID, planType string, startDate time.Time, endDate time.Time) error {
	query := `
		UPDATE users
		SET plan_type = $1, plan_start_date = $2, plan_end_date = $3, is_active_plan = TRUE, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := r.db.Exec(ctx, query, planType, startDate, endDate, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
