package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/payment"
	r "github.com/adam-benyekkou/greenroots-ecom-sub000/internal/repository"
	"github.com/shopspring/decimal"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// MockCatalog implements CatalogSource for testing
type MockCatalog struct {
	mu       sync.Mutex
	Products map[int64]*domain.Product
	Err      error
	Delay    time.Duration
	Calls    int
	LastIDs  []int64
}

func (m *MockCatalog) GetProductsByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	m.mu.Lock()
	m.Calls++
	m.LastIDs = append([]int64(nil), ids...)
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}

	var out []*domain.Product
	for _, id := range ids {
		if p, ok := m.Products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func tree(id int64, price string, available bool) *domain.Product {
	return &domain.Product{ID: id, Name: "Tree", Price: dec(price), Available: available}
}

// MockOrderRepository is an in-memory r.OrderRepository
type MockOrderRepository struct {
	mu        sync.Mutex
	nextID    int64
	Orders    map[int64]*domain.Order
	CreateErr error
	GetErr    error
	UpdateErr error
	// RacingOrder is stored just before CreateOrder reports a duplicate key,
	// simulating a concurrent request with the same idempotency key.
	RacingOrder *domain.Order
	CreateCalls int
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{Orders: make(map[int64]*domain.Order)}
}

func (m *MockOrderRepository) Add(order *domain.Order) *domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	order.ID = m.nextID
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	m.Orders[order.ID] = order
	return order
}

func (m *MockOrderRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	m.CreateCalls++
	createErr, racing := m.CreateErr, m.RacingOrder
	m.RacingOrder = nil
	m.mu.Unlock()

	if createErr != nil {
		return createErr
	}
	if racing != nil {
		m.Add(racing)
		return r.ErrDuplicateOrder
	}
	m.Add(order)
	for i := range order.Lines {
		order.Lines[i].ID = int64(i + 1)
		order.Lines[i].OrderID = order.ID
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	return nil
}

func (m *MockOrderRepository) GetOrderByID(_ context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	o, ok := m.Orders[id]
	if !ok {
		return nil, r.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderRepository) GetOrderByIdempotencyKey(_ context.Context, key string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, o := range m.Orders {
		if o.IdempotencyKey == key {
			cp := *o
			return &cp, nil
		}
	}
	return nil, r.ErrOrderNotFound
}

func (m *MockOrderRepository) ListOrdersByUserID(_ context.Context, userID int64) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	var out []*domain.Order
	for id := m.nextID; id > 0; id-- {
		if o, ok := m.Orders[id]; ok && o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MockOrderRepository) UpdateOrderStatus(_ context.Context, id int64, from, to domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	o, ok := m.Orders[id]
	if !ok {
		return r.ErrOrderNotFound
	}
	if o.Status != from {
		return r.ErrStatusConflict
	}
	o.Status = to
	return nil
}

// MockPaymentRepository is an in-memory r.PaymentRepository with the same
// only-from-PENDING semantics as the Postgres implementation.
type MockPaymentRepository struct {
	mu           sync.Mutex
	nextID       int64
	Transactions map[string]*domain.PaymentTransaction
	CreateErr    error
	ApplyErr     error
	ApplyCalls   int
	AppliedCount int
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{Transactions: make(map[string]*domain.PaymentTransaction)}
}

func (m *MockPaymentRepository) CreatePaymentTransaction(_ context.Context, tx *domain.PaymentTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, ok := m.Transactions[tx.TransactionID]; ok {
		return r.ErrDuplicateTransaction
	}
	m.nextID++
	tx.ID = m.nextID
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = tx.CreatedAt
	cp := *tx
	m.Transactions[tx.TransactionID] = &cp
	return nil
}

func (m *MockPaymentRepository) GetLatestPaymentTransaction(_ context.Context, orderID int64) (*domain.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.PaymentTransaction
	for _, tx := range m.Transactions {
		if tx.OrderID == orderID && (latest == nil || tx.ID > latest.ID) {
			latest = tx
		}
	}
	if latest == nil {
		return nil, r.ErrTransactionNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *MockPaymentRepository) GetPaymentTransactionByExternalID(_ context.Context, id string) (*domain.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.Transactions[id]
	if !ok {
		return nil, r.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (m *MockPaymentRepository) ApplyPaymentOutcome(_ context.Context, id string, next domain.PaymentStatus, reason string) (*domain.PaymentTransaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyCalls++
	if m.ApplyErr != nil {
		return nil, false, m.ApplyErr
	}
	tx, ok := m.Transactions[id]
	if !ok {
		return nil, false, r.ErrTransactionNotFound
	}
	if !tx.Status.CanTransitionTo(next) {
		cp := *tx
		return &cp, false, nil
	}
	tx.Status = next
	tx.FailureReason = reason
	tx.UpdatedAt = time.Now()
	m.AppliedCount++
	cp := *tx
	return &cp, true, nil
}

func (m *MockPaymentRepository) status(id string) domain.PaymentStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Transactions[id].Status
}

type intentCall struct {
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

// MockProcessor opens fake intents and verifies webhooks with the real Stripe signature scheme.
type MockProcessor struct {
	mu     sync.Mutex
	Intent *payment.Intent
	Err    error
	Delay  time.Duration
	Calls  []intentCall
	// OnCreate runs before the intent is returned, e.g. to observe persistence ordering.
	OnCreate func()
}

func (m *MockProcessor) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, intentCall{AmountMinor: amountMinor, Currency: currency, Metadata: metadata})
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.OnCreate != nil {
		m.OnCreate()
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Intent != nil {
		return m.Intent, nil
	}
	return &payment.Intent{ID: "pi_test_1", ClientSecret: "pi_test_1_secret_x"}, nil
}

func (m *MockProcessor) ParseWebhook(payload []byte, signature, secret string) (payment.Event, error) {
	return payment.ParseStripeEvent(payload, signature, secret)
}

// MockEventCache implements cache.EventCache for testing
type MockEventCache struct {
	mu      sync.Mutex
	Events  map[string]bool
	SeenErr error
	MarkErr error
}

func NewMockEventCache() *MockEventCache {
	return &MockEventCache{Events: make(map[string]bool)}
}

func (m *MockEventCache) Seen(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SeenErr != nil {
		return false, m.SeenErr
	}
	return m.Events[id], nil
}

func (m *MockEventCache) Mark(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.Events[id] = true
	return nil
}

var errDatabase = errors.New("database connection error")
