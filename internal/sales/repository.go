package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository reads sales orders.
type Repository interface {
	ListOpen(ctx context.Context, statuses []string, limit int) ([]OrderSummary, error)
	Get(ctx context.Context, id string) (*OrderDetail, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const dateLayout = "2006-01-02"

// ListOpen returns the most recent orders in one of statuses with their line totals.
func (r *repository) ListOpen(ctx context.Context, statuses []string, limit int) ([]OrderSummary, error) {
	query := `
		SELECT so.id, so.doc_number, so.tran_date, COALESCE(SUM(l.quantity * l.rate), 0)::text
		FROM sales_orders so
		LEFT JOIN sales_order_lines l ON l.sales_order_id = so.id
		WHERE so.status = ANY($1)
		GROUP BY so.id, so.doc_number, so.tran_date
		ORDER BY so.tran_date DESC, so.id DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, statuses, limit)
	if err != nil {
		return nil, fmt.Errorf("list open sales orders: %w", err)
	}
	defer rows.Close()

	var out []OrderSummary
	for rows.Next() {
		var (
			id       int64
			tranDate time.Time
			total    string
			summary  OrderSummary
		)
		if err := rows.Scan(&id, &summary.DocumentNumber, &tranDate, &total); err != nil {
			return nil, fmt.Errorf("scan sales order: %w", err)
		}
		summary.InternalID = strconv.FormatInt(id, 10)
		summary.Date = tranDate.Format(dateLayout)
		if summary.TotalAmount, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse total: %w", err)
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

// Get returns the order and its lines, or ErrNotFound.
func (r *repository) Get(ctx context.Context, id string) (*OrderDetail, error) {
	key, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}

	var (
		detail   OrderDetail
		tranDate time.Time
	)
	err = r.pool.QueryRow(ctx, `
		SELECT doc_number, tran_date
		FROM sales_orders
		WHERE id = $1`, key).Scan(&detail.DocumentNumber, &tranDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	detail.InternalID = strconv.FormatInt(key, 10)
	detail.Date = tranDate.Format(dateLayout)

	rows, err := r.pool.Query(ctx, `
		SELECT item_name, quantity::text, rate::text
		FROM sales_order_lines
		WHERE sales_order_id = $1
		ORDER BY line_no`, key)
	if err != nil {
		return nil, fmt.Errorf("get sales order lines: %w", err)
	}
	defer rows.Close()

	detail.Items = []OrderItem{}
	for rows.Next() {
		var item OrderItem
		var qty, rate string
		if err := rows.Scan(&item.ItemName, &qty, &rate); err != nil {
			return nil, fmt.Errorf("scan sales order line: %w", err)
		}
		if item.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("parse quantity: %w", err)
		}
		if item.Rate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("parse rate: %w", err)
		}
		item.GrossAmount = item.Quantity.Mul(item.Rate)
		detail.TotalAmount = detail.TotalAmount.Add(item.GrossAmount)
		detail.Items = append(detail.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales order lines: %w", err)
	}
	return &detail, nil
}
