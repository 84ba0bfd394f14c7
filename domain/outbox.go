package domain

import "time"

const (
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
)

// PaymentEvent is the payload written to the outbox when a transaction reaches a terminal state.
type PaymentEvent struct {
	OrderID         int64         `json:"order_id"`
	UserID          int64         `json:"user_id"`
	PaymentIntentID string        `json:"payment_intent_id"`
	Amount          string        `json:"amount"`
	Currency        string        `json:"currency"`
	Status          PaymentStatus `json:"status"`
	FailureReason   string        `json:"failure_reason,omitempty"`
	OccurredAt      time.Time     `json:"occurred_at"`
}
