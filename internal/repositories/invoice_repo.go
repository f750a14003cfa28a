package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"billcraft/internal/models"

	"github.com/google/uuid"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error)
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status string) error
	MarkOverdue(ctx context.Context) (int64, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	RevenueByUser(ctx context.Context, userID uuid.UUID) (total float64, pending float64, err error)
	NextInvoiceNumber(ctx context.Context, userID uuid.UUID, year int) (string, error)
}

type invoiceRepo struct {
	db DB
}

func NewInvoiceRepo(db DB) InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceColumns = `id, user_id, invoice_number, customer_id, customer_name, customer_email, customer_address, items, sub_total, tax_rate, tax_amount, discount_rate, discount_amount, total_amount, status, issue_date, due_date, notes, created_at, updated_at`

func (r *invoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	items, err := json.Marshal(invoice.Items)
	if err != nil {
		return fmt.Errorf("failed to encode invoice items: %w", err)
	}

	query := `
		INSERT INTO invoices (id, user_id, invoice_number, customer_id, customer_name, customer_email, customer_address, items, sub_total, tax_rate, tax_amount, discount_rate, discount_amount, total_amount, status, issue_date, due_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW(), NOW())
	`
	_, err = r.db.Exec(ctx, query, invoice.ID, invoice.UserID, invoice.InvoiceNumber, invoice.Customer.CustomerID, invoice.Customer.Name, invoice.Customer.Email, invoice.Customer.Address, items, invoice.SubTotal, invoice.TaxRate, invoice.TaxAmount, invoice.DiscountRate, invoice.DiscountAmount, invoice.TotalAmount, invoice.Status, invoice.IssueDate, invoice.DueDate, invoice.Notes)
	return err
}

func (r *invoiceRepo) scanInvoice(row interface{ Scan(dest ...any) error }) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	var items []byte
	err := row.Scan(&invoice.ID, &invoice.UserID, &invoice.InvoiceNumber, &invoice.Customer.CustomerID, &invoice.Customer.Name, &invoice.Customer.Email, &invoice.Customer.Address, &items, &invoice.SubTotal, &invoice.TaxRate, &invoice.TaxAmount, &invoice.DiscountRate, &invoice.DiscountAmount, &invoice.TotalAmount, &invoice.Status, &invoice.IssueDate, &invoice.DueDate, &invoice.Notes, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &invoice.Items); err != nil {
			return nil, fmt.Errorf("failed to decode invoice items: %w", err)
		}
	}
	return invoice, nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE user_id = $1 AND id = $2
	`
	return r.scanInvoice(r.db.QueryRow(ctx, query, userID, id))
}

func (r *invoiceRepo) Update(ctx context.Context, invoice *models.Invoice) error {
	items, err := json.Marshal(invoice.Items)
	if err != nil {
		return fmt.Errorf("failed to encode invoice items: %w", err)
	}

	query := `
		UPDATE invoices
		SET invoice_number = $1, customer_id = $2, customer_name = $3, customer_email = $4, customer_address = $5, items = $6, sub_total = $7, tax_rate = $8, tax_amount = $9, discount_rate = $10, discount_amount = $11, total_amount = $12, status = $13, issue_date = $14, due_date = $15, notes = $16, updated_at = NOW()
		WHERE user_id = $17 AND id = $18
	`
	tag, err := r.db.Exec(ctx, query, invoice.InvoiceNumber, invoice.Customer.CustomerID, invoice.Customer.Name, invoice.Customer.Email, invoice.Customer.Address, items, invoice.SubTotal, invoice.TaxRate, invoice.TaxAmount, invoice.DiscountRate, invoice.DiscountAmount, invoice.TotalAmount, invoice.Status, invoice.IssueDate, invoice.DueDate, invoice.Notes, invoice.UserID, invoice.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM invoices WHERE user_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the tenant's invoices newest first, optionally filtered by
// status when it is non-empty.
func (r *invoiceRepo) List(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, userID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice, err := r.scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status string) error {
	query := `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE user_id = $2 AND id = $3
	`
	tag, err := r.db.Exec(ctx, query, status, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkOverdue flips pending invoices past their due date to overdue, across
// all tenants. Run by the background sweep.
func (r *invoiceRepo) MarkOverdue(ctx context.Context) (int64, error) {
	query := `
		UPDATE invoices
		SET status = 'overdue', updated_at = NOW()
		WHERE status = 'pending' AND due_date IS NOT NULL AND due_date < NOW()
	`
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *invoiceRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM invoices WHERE user_id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	return count, err
}

func (r *invoiceRepo) RevenueByUser(ctx context.Context, userID uuid.UUID) (float64, float64, error) {
	var total, pending float64
	query := `
		SELECT COALESCE(SUM(total_amount), 0),
		       COALESCE(SUM(total_amount) FILTER (WHERE status = 'pending'), 0)
		FROM invoices
		WHERE user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(&total, &pending)
	return total, pending, err
}

// NextInvoiceNumber allocates the next sequential number for the tenant's
// year via a single atomic upsert on invoice_sequences. Concurrent calls for
// the same tenant serialize on the row, so no duplicate is ever handed out.
func (r *invoiceRepo) NextInvoiceNumber(ctx context.Context, userID uuid.UUID, year int) (string, error) {
	query := `
		WITH upsert AS (
			INSERT INTO invoice_sequences (user_id, year, last_number)
			VALUES ($1, $2, 1)
			ON CONFLICT (user_id, year)
			DO UPDATE SET
				last_number = invoice_sequences.last_number + 1,
				updated_at = NOW()
			RETURNING last_number
		)
		SELECT last_number FROM upsert;
	`

	var sequenceNum int
	if err := r.db.QueryRow(ctx, query, userID, year).Scan(&sequenceNum); err != nil {
		return "", fmt.Errorf("failed to generate invoice sequence: %w", err)
	}

	return fmt.Sprintf("INV-%d-%04d", year, sequenceNum), nil
}
