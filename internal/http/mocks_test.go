package http

import (
	"context"
	"io"
	"log/slog"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/catalog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type CartValidatorMock struct {
	result *domain.CartValidation
	err    error
	lines  []domain.CartLine
}

func (m *CartValidatorMock) Validate(_ context.Context, lines []domain.CartLine) (*domain.CartValidation, error) {
	m.lines = lines
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type OrderServiceMock struct {
	order     *domain.Order
	orders    []*domain.Order
	created   bool
	err       error
	principal domain.Principal
	userID    int64
	items     []domain.OrderItem
	key       string
	status    domain.OrderStatus
}

func (m *OrderServiceMock) CreateOrder(_ context.Context, userID int64, items []domain.OrderItem, key string) (*domain.Order, bool, error) {
	m.userID, m.items, m.key = userID, items, key
	if m.err != nil {
		return nil, false, m.err
	}
	return m.order, m.created, nil
}

func (m *OrderServiceMock) GetOrder(_ context.Context, p domain.Principal, _ int64) (*domain.Order, error) {
	m.principal = p
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

func (m *OrderServiceMock) ListOrders(_ context.Context, p domain.Principal) ([]*domain.Order, error) {
	m.principal = p
	if m.err != nil {
		return nil, m.err
	}
	return m.orders, nil
}

func (m *OrderServiceMock) UpdateOrderStatus(_ context.Context, p domain.Principal, _ int64, next domain.OrderStatus) (*domain.Order, error) {
	m.principal, m.status = p, next
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

type PaymentServiceMock struct {
	intent    *domain.PaymentIntent
	tx        *domain.PaymentTransaction
	err       error
	principal domain.Principal
	orderID   int64
	currency  string
}

func (m *PaymentServiceMock) CreatePaymentIntent(_ context.Context, p domain.Principal, orderID int64, currency string) (*domain.PaymentIntent, error) {
	m.principal, m.orderID, m.currency = p, orderID, currency
	if m.err != nil {
		return nil, m.err
	}
	return m.intent, nil
}

func (m *PaymentServiceMock) GetPaymentStatus(_ context.Context, p domain.Principal, orderID int64) (*domain.PaymentTransaction, error) {
	m.principal, m.orderID = p, orderID
	if m.err != nil {
		return nil, m.err
	}
	return m.tx, nil
}

type WebhookMock struct {
	err       error
	payload   []byte
	signature string
	calls     int
}

func (m *WebhookMock) HandleEvent(_ context.Context, payload []byte, signature string) error {
	m.calls++
	m.payload, m.signature = payload, signature
	return m.err
}

type ProductReaderMock struct {
	products []*domain.Product
	err      error
}

func (m *ProductReaderMock) GetAllProducts(context.Context) ([]*domain.Product, error) {
	return m.products, m.err
}

func (m *ProductReaderMock) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

type PingerMock struct {
	err error
}

func (m PingerMock) Ping(context.Context) error {
	return m.err
}
