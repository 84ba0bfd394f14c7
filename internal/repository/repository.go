package repository

import (
	"context"
	"errors"
	"time"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateOrder       = errors.New("order with this idempotency key already exists")
	ErrStatusConflict       = errors.New("order status changed concurrently")
	ErrTransactionNotFound  = errors.New("payment transaction not found")
	ErrDuplicateTransaction = errors.New("payment transaction already recorded")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OutboxEvent is a pending integration event. Payload is already JSON.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id int64) (*domain.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID int64) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error
}

type PaymentRepository interface {
	CreatePaymentTransaction(ctx context.Context, tx *domain.PaymentTransaction) error
	GetLatestPaymentTransaction(ctx context.Context, orderID int64) (*domain.PaymentTransaction, error)
	GetPaymentTransactionByExternalID(ctx context.Context, transactionID string) (*domain.PaymentTransaction, error)
	// ApplyPaymentOutcome moves the transaction to next if it is still PENDING.
	// applied is false when the row was already terminal; the stored row is returned either way.
	ApplyPaymentOutcome(ctx context.Context, transactionID string, next domain.PaymentStatus, reason string) (tx *domain.PaymentTransaction, applied bool, err error)
}

type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

type RepoInterface interface {
	OrderRepository
	PaymentRepository
	OutboxRepository
	Ping(ctx context.Context) error
	RunMigrations(*Credentials) error
	Close() error
}
