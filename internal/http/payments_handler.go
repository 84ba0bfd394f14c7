package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
)

// MaxWebhookBodySize bounds webhook payloads before signature verification.
const MaxWebhookBodySize = 65536

type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, principal domain.Principal, orderID int64, currency string) (*domain.PaymentIntent, error)
	GetPaymentStatus(ctx context.Context, principal domain.Principal, orderID int64) (*domain.PaymentTransaction, error)
}

type WebhookHandler interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) error
}

type PaymentsHandler struct {
	payments PaymentService
	webhooks WebhookHandler
	log      *slog.Logger
}

func NewPaymentsHandler(payments PaymentService, webhooks WebhookHandler, log *slog.Logger) *PaymentsHandler {
	return &PaymentsHandler{
		payments: payments,
		webhooks: webhooks,
		log:      log,
	}
}

// POST /api/v1/payments/create-intent
func (h *PaymentsHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req CreateIntentRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	if req.OrderID <= 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "order_id must be a positive integer")
		return
	}

	intent, err := h.payments.CreatePaymentIntent(r.Context(), principalFromContext(r.Context()), req.OrderID, req.Currency)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, CreateIntentResponseDTO{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.PaymentIntentID,
	})
}

// POST /api/v1/payments/webhook
func (h *PaymentsHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxWebhookBodySize)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "validation_error", "payload too large")
			return
		}
		respondError(w, http.StatusBadRequest, "validation_error", "unable to read body")
		return
	}

	if err := h.webhooks.HandleEvent(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// GET /api/v1/payments/status/{order_id}
func (h *PaymentsHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := idParam(r, "order_id")
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	tx, err := h.payments.GetPaymentStatus(r.Context(), principalFromContext(r.Context()), orderID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, convertTransaction(tx))
}
