package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentStatus_Transitions(t *testing.T) {
	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusCompleted))
	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusFailed))
	assert.False(t, PaymentStatusPending.CanTransitionTo(PaymentStatusPending))

	for _, terminal := range []PaymentStatus{PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded} {
		assert.True(t, terminal.IsTerminal())
		assert.False(t, terminal.CanTransitionTo(PaymentStatusCompleted), terminal)
		assert.False(t, terminal.CanTransitionTo(PaymentStatusFailed), terminal)
	}
}

func TestOrderStatus_Transitions(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusConfirmed))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusConfirmed.CanTransitionTo(OrderStatusShipped))
	assert.True(t, OrderStatusShipped.CanTransitionTo(OrderStatusDelivered))

	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusDelivered))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusPending))
	assert.False(t, OrderStatusDelivered.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatus("LOST").IsValid())
}

func TestOrderTotal(t *testing.T) {
	order := &Order{Lines: []OrderLine{
		{Quantity: 2, Price: decimal.RequireFromString("15.50")},
		{Quantity: 3, Price: decimal.RequireFromString("0.10")},
	}}
	assert.True(t, order.Total().Equal(decimal.RequireFromString("31.30")))
	assert.True(t, (&Order{}).Total().IsZero())
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(3100), ToMinorUnits(decimal.RequireFromString("31.00")))
	assert.Equal(t, int64(1999), ToMinorUnits(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(1001), ToMinorUnits(decimal.RequireFromString("10.005")))
}

func TestSummarize(t *testing.T) {
	items := []ValidationResult{
		{Valid: true, LineTotal: decimal.RequireFromString("31.00")},
		{Valid: true, LineTotal: decimal.RequireFromString("12.333")},
		{Valid: false, LineTotal: decimal.RequireFromString("18.00")},
	}
	summary := Summarize(items)

	assert.Equal(t, 2, summary.ValidItems)
	assert.Equal(t, 1, summary.InvalidItems)
	assert.Equal(t, 3, summary.TotalItems)
	assert.Equal(t, "43.33", summary.TotalAmount.StringFixed(2))
	assert.False(t, summary.CartValid)
}

func TestSummarize_EmptyCartIsNotValid(t *testing.T) {
	summary := Summarize(nil)
	assert.False(t, summary.CartValid)
	assert.Equal(t, 0, summary.TotalItems)
}

func TestPrincipal_CanAccess(t *testing.T) {
	owner := Principal{UserID: 7}
	admin := Principal{UserID: 1, Role: RoleAdmin}
	stranger := Principal{UserID: 8}

	assert.True(t, owner.CanAccess(7))
	assert.True(t, admin.CanAccess(7))
	assert.False(t, stranger.CanAccess(7))
	assert.False(t, Principal{}.CanAccess(0))
}
