package inquiry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists inquiries and resolves customers.
type Repository interface {
	Create(ctx context.Context, in Inquiry) (int64, error)
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	LinkCustomer(ctx context.Context, inquiryID, customerID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Create inserts the inquiry and returns its id.
func (r *repository) Create(ctx context.Context, in Inquiry) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customer_inquiries (name, email, subject, message, customer_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`, in.Name, in.Email, in.Subject, in.Message, in.CustomerID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert inquiry: %w", err)
	}
	return id, nil
}

// FindCustomerByEmail matches the case-folded email against customers.
func (r *repository) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `
		SELECT c.id, COALESCE(e.email, '')
		FROM customers c
		LEFT JOIN employees e ON e.id = c.sales_rep_id
		WHERE lower(c.email) = $1
		ORDER BY c.id
		LIMIT 1`, email).Scan(&c.ID, &c.SalesRepEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return &c, nil
}

// LinkCustomer sets the inquiry's customer reference.
func (r *repository) LinkCustomer(ctx context.Context, inquiryID, customerID int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE customer_inquiries SET customer_id = $2 WHERE id = $1`, inquiryID, customerID)
	if err != nil {
		return fmt.Errorf("link customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("link customer: inquiry %d missing", inquiryID)
	}
	return nil
}
