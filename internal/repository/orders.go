package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
	"github.com/lib/pq"
)

const orderColumns = `id, user_id, status, idempotency_key, created_at, updated_at`

// CreateOrder inserts the order header and every line in one transaction.
// On success order.ID, the timestamps and each line's ID are filled in.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO orders (user_id, status, idempotency_key)
		          VALUES ($1, $2, $3)
		          RETURNING id, created_at, updated_at`

		err := tx.QueryRowContext(ctx, query, order.UserID, order.Status, nullString(order.IdempotencyKey)).
			Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err, "orders_idempotency_key_key") {
				return ErrDuplicateOrder
			}
			return fmt.Errorf("insert order: %w", err)
		}

		lineQuery := `INSERT INTO order_lines (order_id, product_id, quantity, price)
		              VALUES ($1, $2, $3, $4)
		              RETURNING id`

		for i := range order.Lines {
			line := &order.Lines[i]
			line.OrderID = order.ID
			if err := tx.QueryRowContext(ctx, lineQuery, order.ID, line.ProductID, line.Quantity, line.Price).
				Scan(&line.ID); err != nil {
				return fmt.Errorf("insert order line %d: %w", i, err)
			}
		}
		return nil
	})
}

func (r *Repository) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	if err := r.attachLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *Repository) GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE idempotency_key = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by idempotency key: %w", err)
	}

	if err := r.attachLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrdersByUserID returns the user's orders newest first, lines included.
func (r *Repository) ListOrdersByUserID(ctx context.Context, userID int64) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	byID := make(map[int64]*domain.Order)
	ids := make([]int64, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
		byID[order.ID] = order
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if len(ids) == 0 {
		return orders, nil
	}

	lineQuery := `SELECT id, order_id, product_id, quantity, price
	              FROM order_lines WHERE order_id = ANY($1) ORDER BY order_id, id`

	lineRows, err := r.db.QueryContext(ctx, lineQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var line domain.OrderLine
		if err := lineRows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.Price); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if order, ok := byID[line.OrderID]; ok {
			order.Lines = append(order.Lines, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

// UpdateOrderStatus moves the order from one status to another only if it is still in from.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	query := `UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	res, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check order exists: %w", err)
	}
	if !exists {
		return ErrOrderNotFound
	}
	return ErrStatusConflict
}

func (r *Repository) attachLines(ctx context.Context, order *domain.Order) error {
	query := `SELECT id, order_id, product_id, quantity, price
	          FROM order_lines WHERE order_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	order.Lines = order.Lines[:0]
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.Price); err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	return rows.Err()
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var key sql.NullString
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&key,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	order.IdempotencyKey = key.String
	return &order, nil
}
