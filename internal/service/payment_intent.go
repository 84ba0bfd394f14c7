package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/apperr"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/payment"
	r "github.com/adam-benyekkou/greenroots-ecom-sub000/internal/repository"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type PaymentService struct {
	orders          r.OrderRepository
	payments        r.PaymentRepository
	processor       *ProcessorHandler
	defaultCurrency string
	log             *slog.Logger
}

func NewPaymentService(orders r.OrderRepository, payments r.PaymentRepository, processor *ProcessorHandler, defaultCurrency string, log *slog.Logger) *PaymentService {
	return &PaymentService{
		orders:          orders,
		payments:        payments,
		processor:       processor,
		defaultCurrency: strings.ToLower(defaultCurrency),
		log:             log.With(slog.String("component", "payment_service")),
	}
}

// CreatePaymentIntent opens a processor intent for the order total computed from its
// persisted lines and records a PENDING transaction before returning.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, principal domain.Principal, orderID int64, currency string) (*domain.PaymentIntent, error) {
	ctx, span := tracer.Start(ctx, "PaymentService.CreatePaymentIntent")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", orderID))

	if principal.UserID <= 0 {
		return nil, ErrUnauthenticated
	}
	currency, err := s.normalizeCurrency(currency)
	if err != nil {
		return nil, err
	}

	order, err := loadAccessibleOrder(ctx, s.orders, principal, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusPending {
		return nil, apperr.InvalidState("order %d is %s, only PENDING orders can be paid", orderID, order.Status)
	}

	amount := order.Total()
	if !amount.IsPositive() {
		return nil, apperr.InvalidState("order %d has nothing to pay", orderID)
	}
	amountMinor := domain.ToMinorUnits(amount)

	intent, err := s.processor.createIntent(ctx, amountMinor, currency, payment.MetadataFor(order.ID, order.UserID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "processor call failed")
		s.log.ErrorContext(ctx, "failed to open payment intent",
			slog.Int64(logger.KeyOrderID, orderID), slog.Int64("amount_minor", amountMinor), logger.Err(err))
		return nil, apperr.Upstream(err, "payment processor unavailable")
	}

	tx := &domain.PaymentTransaction{
		OrderID:       order.ID,
		TransactionID: intent.ID,
		Amount:        amount,
		Currency:      currency,
		Status:        domain.PaymentStatusPending,
	}
	if err := s.payments.CreatePaymentTransaction(ctx, tx); err != nil {
		// the intent exists at the processor but not here; webhooks for it will be retried
		s.log.ErrorContext(ctx, "failed to record payment transaction",
			slog.Int64(logger.KeyOrderID, orderID), slog.String(logger.KeyPaymentIntentID, intent.ID), logger.Err(err))
		if errors.Is(err, r.ErrDuplicateTransaction) {
			return nil, apperr.Conflict("payment intent %s already recorded", intent.ID)
		}
		return nil, apperr.Internal(err, "record payment transaction")
	}

	s.log.InfoContext(ctx, "payment intent created",
		slog.Int64(logger.KeyOrderID, orderID),
		slog.String(logger.KeyPaymentIntentID, intent.ID),
		slog.Int64("amount_minor", amountMinor),
		slog.String("currency", currency))

	return &domain.PaymentIntent{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID}, nil
}

// GetPaymentStatus returns the latest payment attempt for the order.
func (s *PaymentService) GetPaymentStatus(ctx context.Context, principal domain.Principal, orderID int64) (*domain.PaymentTransaction, error) {
	if principal.UserID <= 0 {
		return nil, ErrUnauthenticated
	}

	if _, err := loadAccessibleOrder(ctx, s.orders, principal, orderID); err != nil {
		return nil, err
	}

	tx, err := s.payments.GetLatestPaymentTransaction(ctx, orderID)
	if errors.Is(err, r.ErrTransactionNotFound) {
		return nil, apperr.NotFound("no payment found for order %d", orderID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "load payment transaction")
	}
	return tx, nil
}

func (s *PaymentService) normalizeCurrency(currency string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(currency))
	if c == "" {
		c = s.defaultCurrency
	}
	if len(c) != 3 {
		return "", apperr.Validation("currency must be a three-letter ISO 4217 code")
	}
	for _, ch := range c {
		if ch < 'a' || ch > 'z' {
			return "", apperr.Validation("currency must be a three-letter ISO 4217 code")
		}
	}
	return c, nil
}
