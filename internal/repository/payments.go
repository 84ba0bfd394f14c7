package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
)

const paymentColumns = `id, order_id, transaction_id, amount, currency, status, failure_reason, created_at, updated_at`

func (r *Repository) CreatePaymentTransaction(ctx context.Context, pt *domain.PaymentTransaction) error {
	if pt.Status == "" {
		pt.Status = domain.PaymentStatusPending
	}

	query := `INSERT INTO payment_transactions (order_id, transaction_id, amount, currency, status)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, pt.OrderID, pt.TransactionID, pt.Amount, pt.Currency, pt.Status).
		Scan(&pt.ID, &pt.CreatedAt, &pt.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "payment_transactions_transaction_id_key") {
			return ErrDuplicateTransaction
		}
		return fmt.Errorf("insert payment transaction: %w", err)
	}
	return nil
}

// GetLatestPaymentTransaction returns the most recent attempt for the order.
func (r *Repository) GetLatestPaymentTransaction(ctx context.Context, orderID int64) (*domain.PaymentTransaction, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_transactions
	          WHERE order_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`

	pt, err := scanPayment(r.db.QueryRowContext(ctx, query, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest payment transaction: %w", err)
	}
	return pt, nil
}

func (r *Repository) GetPaymentTransactionByExternalID(ctx context.Context, transactionID string) (*domain.PaymentTransaction, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_transactions WHERE transaction_id = $1`

	pt, err := scanPayment(r.db.QueryRowContext(ctx, query, transactionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query payment transaction: %w", err)
	}
	return pt, nil
}

// ApplyPaymentOutcome locks the transaction row, applies next when allowed, confirms the
// order on success and records an outbox event, all in one database transaction.
func (r *Repository) ApplyPaymentOutcome(ctx context.Context, transactionID string, next domain.PaymentStatus, reason string) (*domain.PaymentTransaction, bool, error) {
	var (
		pt      *domain.PaymentTransaction
		applied bool
	)

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query := `SELECT ` + paymentColumns + ` FROM payment_transactions WHERE transaction_id = $1 FOR UPDATE`

		current, err := scanPayment(tx.QueryRowContext(ctx, query, transactionID))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTransactionNotFound
		}
		if err != nil {
			return fmt.Errorf("lock payment transaction: %w", err)
		}
		pt = current

		if !current.Status.CanTransitionTo(next) {
			return nil
		}

		update := `UPDATE payment_transactions
		           SET status = $2, failure_reason = $3, updated_at = NOW()
		           WHERE id = $1 AND status = $4
		           RETURNING updated_at`
		if err := tx.QueryRowContext(ctx, update, current.ID, next, reason, domain.PaymentStatusPending).
			Scan(&current.UpdatedAt); err != nil {
			return fmt.Errorf("update payment transaction: %w", err)
		}
		current.Status = next
		current.FailureReason = reason

		if next == domain.PaymentStatusCompleted {
			confirm := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`
			if _, err := tx.ExecContext(ctx, confirm, current.OrderID, domain.OrderStatusConfirmed, domain.OrderStatusPending); err != nil {
				return fmt.Errorf("confirm order: %w", err)
			}
		}

		if err := insertPaymentEvent(ctx, tx, current); err != nil {
			return err
		}

		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return pt, applied, nil
}

func insertPaymentEvent(ctx context.Context, tx *sql.Tx, pt *domain.PaymentTransaction) error {
	var userID int64
	if err := tx.QueryRowContext(ctx, `SELECT user_id FROM orders WHERE id = $1`, pt.OrderID).Scan(&userID); err != nil {
		return fmt.Errorf("load order owner: %w", err)
	}

	eventType := domain.EventPaymentFailed
	if pt.Status == domain.PaymentStatusCompleted {
		eventType = domain.EventPaymentCompleted
	}

	payload, err := json.Marshal(domain.PaymentEvent{
		OrderID:         pt.OrderID,
		UserID:          userID,
		PaymentIntentID: pt.TransactionID,
		Amount:          pt.Amount.StringFixed(2),
		Currency:        pt.Currency,
		Status:          pt.Status,
		FailureReason:   pt.FailureReason,
		OccurredAt:      pt.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal payment event: %w", err)
	}

	query := `INSERT INTO outbox_events (aggregate_id, event_type, payload) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, query, strconv.FormatInt(pt.OrderID, 10), eventType, payload); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func scanPayment(row rowScanner) (*domain.PaymentTransaction, error) {
	var pt domain.PaymentTransaction
	if err := row.Scan(
		&pt.ID,
		&pt.OrderID,
		&pt.TransactionID,
		&pt.Amount,
		&pt.Currency,
		&pt.Status,
		&pt.FailureReason,
		&pt.CreatedAt,
		&pt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &pt, nil
}
