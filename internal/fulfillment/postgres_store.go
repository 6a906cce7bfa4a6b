package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-restlets/internal/platform/db"
)

// PostgresStore implements RecordStore on top of pgxpool.
type PostgresStore struct {
	pool conn
}

// conn is the slice of *pgxpool.Pool the store uses.
type conn interface {
	querier
	db.Beginner
}

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LoadOrder reads a sales order with its lines.
func (s *PostgresStore) LoadOrder(ctx context.Context, id string) (*Order, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, &NotFoundError{Type: "sales order", ID: id}
	}
	var order Order
	var orderID int64
	err := s.pool.QueryRow(ctx, `
		SELECT id, doc_number, tran_date, status
		FROM sales_orders
		WHERE id = $1`, key).Scan(&orderID, &order.DocumentNumber, &order.TranDate, &order.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Type: "sales order", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load sales order: %w", err)
	}
	order.ID = strconv.FormatInt(orderID, 10)

	rows, err := s.pool.Query(ctx, `
		SELECT item_id, item_name, quantity::text, rate::text, COALESCE(location, '')
		FROM sales_order_lines
		WHERE sales_order_id = $1
		ORDER BY line_no`, key)
	if err != nil {
		return nil, fmt.Errorf("load sales order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line OrderLine
		var qty, rate string
		if err := rows.Scan(&line.ItemID, &line.ItemName, &qty, &rate, &line.Location); err != nil {
			return nil, fmt.Errorf("scan sales order line: %w", err)
		}
		if line.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("parse quantity: %w", err)
		}
		if line.Rate, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("parse rate: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales order lines: %w", err)
	}
	return &order, nil
}

// LoadFulfillment reads a fulfillment or returns *NotFoundError.
func (s *PostgresStore) LoadFulfillment(ctx context.Context, id string) (*Fulfillment, error) {
	f, found, err := s.TryLoadFulfillment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &NotFoundError{Type: "item fulfillment", ID: id}
	}
	return f, nil
}

// TryLoadFulfillment reads a fulfillment, reporting absence through found.
func (s *PostgresStore) TryLoadFulfillment(ctx context.Context, id string) (*Fulfillment, bool, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, false, nil
	}
	return loadFulfillment(ctx, s.pool, key)
}

func loadFulfillment(ctx context.Context, q querier, key int64) (*Fulfillment, bool, error) {
	var f Fulfillment
	var fid, orderID int64
	err := q.QueryRow(ctx, `
		SELECT id, sales_order_id, tran_date, COALESCE(posting_period, ''), COALESCE(memo, '')
		FROM item_fulfillments
		WHERE id = $1`, key).Scan(&fid, &orderID, &f.TranDate, &f.PostingPeriod, &f.Memo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load item fulfillment: %w", err)
	}
	f.ID = strconv.FormatInt(fid, 10)
	f.SourceOrderID = strconv.FormatInt(orderID, 10)

	rows, err := q.Query(ctx, `
		SELECT item_id, quantity::text, COALESCE(location, ''), received
		FROM item_fulfillment_lines
		WHERE item_fulfillment_id = $1
		ORDER BY line_no`, key)
	if err != nil {
		return nil, false, fmt.Errorf("load item fulfillment lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line FulfillmentLine
		var qty string
		if err := rows.Scan(&line.ItemID, &qty, &line.Location, &line.Received); err != nil {
			return nil, false, fmt.Errorf("scan item fulfillment line: %w", err)
		}
		if line.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, false, fmt.Errorf("parse quantity: %w", err)
		}
		f.Lines = append(f.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate item fulfillment lines: %w", err)
	}
	return &f, true, nil
}

// TransformOrder loads the order and copies its lines into a draft.
func (s *PostgresStore) TransformOrder(ctx context.Context, orderID string) (*Fulfillment, error) {
	order, err := s.LoadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return draftFromOrder(order), nil
}

// SaveFulfillment inserts or updates the fulfillment and its lines in one transaction.
func (s *PostgresStore) SaveFulfillment(ctx context.Context, f *Fulfillment) (string, error) {
	orderKey, ok := parseID(f.SourceOrderID)
	if !ok {
		return "", &NotFoundError{Type: "sales order", ID: f.SourceOrderID}
	}
	var savedID int64
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if f.ID == "" {
			id, err := insertFulfillment(ctx, tx, orderKey, f)
			if err != nil {
				return err
			}
			savedID = id
			return nil
		}
		key, ok := parseID(f.ID)
		if !ok {
			return &NotFoundError{Type: "item fulfillment", ID: f.ID}
		}
		if err := updateFulfillment(ctx, tx, key, f); err != nil {
			return err
		}
		savedID = key
		return nil
	})
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(savedID, 10), nil
}

func insertFulfillment(ctx context.Context, tx pgx.Tx, orderKey int64, f *Fulfillment) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO item_fulfillments (sales_order_id, tran_date, posting_period, memo)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
		RETURNING id`, orderKey, f.TranDate, f.PostingPeriod, f.Memo).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert item fulfillment: %w", err)
	}
	batch := &pgx.Batch{}
	for i, line := range f.Lines {
		batch.Queue(`
			INSERT INTO item_fulfillment_lines (item_fulfillment_id, line_no, item_id, quantity, location, received)
			VALUES ($1, $2, $3, $4::numeric, NULLIF($5, ''), $6)`,
			id, i, line.ItemID, line.Quantity.String(), line.Location, line.Received)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("insert item fulfillment lines: %w", err)
	}
	return id, nil
}

func updateFulfillment(ctx context.Context, tx pgx.Tx, key int64, f *Fulfillment) error {
	tag, err := tx.Exec(ctx, `
		UPDATE item_fulfillments
		SET tran_date = $2, posting_period = NULLIF($3, ''), memo = NULLIF($4, ''), updated_at = NOW()
		WHERE id = $1`, key, f.TranDate, f.PostingPeriod, f.Memo)
	if err != nil {
		return fmt.Errorf("update item fulfillment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Type: "item fulfillment", ID: f.ID}
	}
	// item_id is immutable once inserted.
	batch := &pgx.Batch{}
	for i, line := range f.Lines {
		batch.Queue(`
			UPDATE item_fulfillment_lines
			SET quantity = $3::numeric, location = NULLIF($4, ''), received = $5
			WHERE item_fulfillment_id = $1 AND line_no = $2`,
			key, i, line.Quantity.String(), line.Location, line.Received)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("update item fulfillment lines: %w", err)
	}
	return nil
}

// DeleteFulfillment removes the fulfillment and its lines.
func (s *PostgresStore) DeleteFulfillment(ctx context.Context, id string) error {
	key, ok := parseID(id)
	if !ok {
		return &NotFoundError{Type: "item fulfillment", ID: id}
	}
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM item_fulfillment_lines WHERE item_fulfillment_id = $1`, key); err != nil {
			return fmt.Errorf("delete item fulfillment lines: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM item_fulfillments WHERE id = $1`, key)
		if err != nil {
			return fmt.Errorf("delete item fulfillment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return &NotFoundError{Type: "item fulfillment", ID: id}
		}
		return nil
	})
}

func parseID(id string) (int64, bool) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

var _ RecordStore = (*PostgresStore)(nil)
