package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(catalog *MockCatalog) *CartValidator {
	return NewCartValidator(NewCatalogHandler(catalog, time.Second), discardLogger())
}

func line(productID int64, qty int, price string) domain.CartLine {
	return domain.CartLine{ProductID: productID, Quantity: qty, CartPrice: dec(price)}
}

func TestValidate_PriceUnchanged(t *testing.T) {
	catalog := &MockCatalog{Products: map[int64]*domain.Product{1: tree(1, "15.50", true)}}

	res, err := newValidator(catalog).Validate(context.Background(), []domain.CartLine{line(1, 2, "15.50")})
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	item := res.Items[0]
	assert.True(t, item.Valid)
	assert.False(t, item.PriceChanged)
	assert.True(t, item.Available)
	assert.Empty(t, item.Error)
	assert.Equal(t, "31.00", item.LineTotal.StringFixed(2))
	assert.True(t, res.Summary.CartValid)
	assert.Equal(t, "31.00", res.Summary.TotalAmount.StringFixed(2))
}

func TestValidate_PriceChanged(t *testing.T) {
	catalog := &MockCatalog{Products: map[int64]*domain.Product{1: tree(1, "18.00", true)}}

	res, err := newValidator(catalog).Validate(context.Background(), []domain.CartLine{line(1, 2, "15.50")})
	require.NoError(t, err)

	item := res.Items[0]
	assert.False(t, item.Valid)
	assert.True(t, item.PriceChanged)
	assert.Equal(t, "Price has changed since item was added to cart", item.Error)
	// computed from the current price, never the remembered one
	assert.Equal(t, "36.00", item.LineTotal.StringFixed(2))
	assert.False(t, res.Summary.CartValid)
	assert.Equal(t, "0.00", res.Summary.TotalAmount.StringFixed(2))
}

func TestValidate_DriftTolerance(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		cartPrice string
		changed   bool
	}{
		{name: "equal", current: "15.50", cartPrice: "15.50", changed: false},
		{name: "one_cent_up", current: "15.51", cartPrice: "15.50", changed: false},
		{name: "one_cent_down", current: "15.49", cartPrice: "15.50", changed: false},
		{name: "sub_cent", current: "15.505", cartPrice: "15.50", changed: false},
		{name: "two_cents", current: "15.52", cartPrice: "15.50", changed: true},
		{name: "just_over", current: "15.5101", cartPrice: "15.50", changed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &MockCatalog{Products: map[int64]*domain.Product{1: tree(1, tt.current, true)}}

			res, err := newValidator(catalog).Validate(context.Background(), []domain.CartLine{line(1, 1, tt.cartPrice)})
			require.NoError(t, err)
			assert.Equal(t, tt.changed, res.Items[0].PriceChanged)
			assert.Equal(t, !tt.changed, res.Items[0].Valid)
		})
	}
}

func TestValidate_NotFoundAndUnavailable(t *testing.T) {
	catalog := &MockCatalog{Products: map[int64]*domain.Product{
		2: tree(2, "18.00", false),
	}}

	res, err := newValidator(catalog).Validate(context.Background(), []domain.CartLine{
		line(99, 1, "10.00"),
		line(2, 1, "12.00"), // unavailable and drifted: availability wins
	})
	require.NoError(t, err)

	missing := res.Items[0]
	assert.False(t, missing.Valid)
	assert.Equal(t, "Product not found", missing.Error)
	assert.False(t, missing.PriceChanged)
	assert.True(t, missing.LineTotal.IsZero())

	unavailable := res.Items[1]
	assert.False(t, unavailable.Valid)
	assert.False(t, unavailable.Available)
	assert.True(t, unavailable.PriceChanged)
	assert.Equal(t, "Product is no longer available", unavailable.Error)

	assert.Equal(t, 0, res.Summary.ValidItems)
	assert.Equal(t, 2, res.Summary.InvalidItems)
	assert.False(t, res.Summary.CartValid)
}

func TestValidate_PreservesOrderWithOneBatchedLookup(t *testing.T) {
	catalog := &MockCatalog{Products: map[int64]*domain.Product{
		1: tree(1, "15.50", true),
		3: tree(3, "12.00", true),
		5: tree(5, "29.99", true),
	}}

	lines := []domain.CartLine{line(5, 1, "29.99"), line(1, 2, "15.50"), line(404, 1, "1.00"), line(3, 3, "12.00"), line(1, 1, "15.50")}
	res, err := newValidator(catalog).Validate(context.Background(), lines)
	require.NoError(t, err)

	require.Len(t, res.Items, len(lines))
	for i, l := range lines {
		assert.Equal(t, l.ProductID, res.Items[i].ProductID)
		assert.Equal(t, l.Quantity, res.Items[i].Quantity)
	}
	assert.Equal(t, 1, catalog.Calls)

	assert.Equal(t, 4, res.Summary.ValidItems)
	assert.Equal(t, 1, res.Summary.InvalidItems)
	assert.Equal(t, 5, res.Summary.TotalItems)
	// 29.99 + 31.00 + 36.00 + 15.50
	assert.Equal(t, "112.49", res.Summary.TotalAmount.StringFixed(2))
	assert.False(t, res.Summary.CartValid)
}

func TestValidate_EmptyCart(t *testing.T) {
	catalog := &MockCatalog{}

	res, err := newValidator(catalog).Validate(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, res.Items)
	assert.False(t, res.Summary.CartValid)
	assert.Equal(t, 0, catalog.Calls)
}

func TestValidate_MalformedLines(t *testing.T) {
	tests := []struct {
		name string
		line domain.CartLine
	}{
		{name: "zero_product", line: line(0, 1, "1.00")},
		{name: "zero_quantity", line: line(1, 0, "1.00")},
		{name: "negative_quantity", line: line(1, -2, "1.00")},
		{name: "negative_price", line: line(1, 1, "-1.00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &MockCatalog{}

			_, err := newValidator(catalog).Validate(context.Background(), []domain.CartLine{tt.line})
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
			assert.Equal(t, 0, catalog.Calls)
		})
	}
}

func TestValidate_CatalogFailure(t *testing.T) {
	catalog := &MockCatalog{Err: errors.New("sqlite: database is locked")}

	_, err := newValidator(catalog).Validate(context.Background(), []domain.CartLine{line(1, 1, "15.50")})
	assert.True(t, apperr.Is(err, apperr.KindUpstream), "got %v", err)
}

func TestValidate_CatalogTimeout(t *testing.T) {
	catalog := &MockCatalog{Delay: time.Second}
	v := NewCartValidator(NewCatalogHandler(catalog, 10*time.Millisecond), discardLogger())

	_, err := v.Validate(context.Background(), []domain.CartLine{line(1, 1, "15.50")})
	assert.True(t, apperr.Is(err, apperr.KindUpstream), "got %v", err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
