package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/domain"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/apperr"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/cache"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/payment"
	r "github.com/adam-benyekkou/greenroots-ecom-sub000/internal/repository"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

// WebhookReconciler applies verified processor events to payment transactions.
// The database is authoritative; the event cache only short-circuits re-deliveries.
type WebhookReconciler struct {
	payments  r.PaymentRepository
	processor payment.Processor
	secret    string
	events    cache.EventCache
	group     singleflight.Group
	log       *slog.Logger
}

// NewWebhookReconciler builds a reconciler. events may be nil.
func NewWebhookReconciler(payments r.PaymentRepository, processor payment.Processor, secret string, events cache.EventCache, log *slog.Logger) *WebhookReconciler {
	return &WebhookReconciler{
		payments:  payments,
		processor: processor,
		secret:    secret,
		events:    events,
		log:       log.With(slog.String("component", "webhook_reconciler")),
	}
}

// HandleEvent verifies payload against signature and applies it. A nil error means the
// event may be acknowledged, including unknown types and re-deliveries.
func (w *WebhookReconciler) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	ctx, span := tracer.Start(ctx, "WebhookReconciler.HandleEvent")
	defer span.End()

	if w.secret == "" {
		return ErrSecretMissing
	}

	event, err := w.processor.ParseWebhook(payload, signature, w.secret)
	if err != nil {
		w.log.WarnContext(ctx, "rejected webhook", logger.Err(err))
		if errors.Is(err, payment.ErrMalformedEvent) {
			return apperr.Validation("malformed webhook event")
		}
		return apperr.Authentication(err, "invalid webhook signature")
	}

	log := w.log.With(slog.String(logger.KeyEventID, event.EventID()), slog.String(logger.KeyEventType, event.EventType()))
	span.SetAttributes(attribute.String("event.id", event.EventID()), attribute.String("event.type", event.EventType()))

	if w.seen(ctx, log, event.EventID()) {
		log.InfoContext(ctx, "webhook event already processed")
		return nil
	}

	switch ev := event.(type) {
	case payment.IntentSucceeded:
		pt, err := w.apply(ctx, log, ev.IntentID, domain.PaymentStatusCompleted, "")
		if err != nil {
			return err
		}
		if ev.Amount != 0 && ev.Amount != domain.ToMinorUnits(pt.Amount) {
			log.WarnContext(ctx, "processor amount differs from recorded amount",
				slog.String(logger.KeyPaymentIntentID, ev.IntentID),
				slog.Int64("processor_amount", ev.Amount),
				slog.Int64("recorded_amount", domain.ToMinorUnits(pt.Amount)))
		}
	case payment.IntentFailed:
		if _, err := w.apply(ctx, log, ev.IntentID, domain.PaymentStatusFailed, ev.Reason); err != nil {
			return err
		}
	case payment.IntentRequiresAction:
		log.InfoContext(ctx, "payment requires customer action, leaving transaction pending",
			slog.String(logger.KeyPaymentIntentID, ev.IntentID))
	default:
		log.InfoContext(ctx, "ignoring unhandled webhook event type")
	}

	w.mark(ctx, log, event.EventID())
	return nil
}

// apply collapses concurrent in-process deliveries of the same outcome for one intent.
func (w *WebhookReconciler) apply(ctx context.Context, log *slog.Logger, intentID string, next domain.PaymentStatus, reason string) (*domain.PaymentTransaction, error) {
	log = log.With(slog.String(logger.KeyPaymentIntentID, intentID))

	v, err, _ := w.group.Do(intentID+"|"+next.String(), func() (any, error) {
		pt, applied, err := w.payments.ApplyPaymentOutcome(ctx, intentID, next, reason)
		if err != nil {
			return nil, err
		}
		if applied {
			log.InfoContext(ctx, "payment transaction updated",
				slog.Int64(logger.KeyOrderID, pt.OrderID), slog.String("status", pt.Status.String()))
		} else {
			log.InfoContext(ctx, "payment transaction already terminal, ignoring event",
				slog.Int64(logger.KeyOrderID, pt.OrderID), slog.String("status", pt.Status.String()))
		}
		return pt, nil
	})
	if errors.Is(err, r.ErrTransactionNotFound) {
		log.ErrorContext(ctx, "no payment transaction for intent, processor will retry", logger.Err(err))
		return nil, apperr.Internal(err, "payment transaction for intent %s not found", intentID)
	}
	if err != nil {
		log.ErrorContext(ctx, "failed to apply payment outcome", logger.Err(err))
		return nil, apperr.Internal(err, "apply payment outcome")
	}
	return v.(*domain.PaymentTransaction), nil
}

func (w *WebhookReconciler) seen(ctx context.Context, log *slog.Logger, eventID string) bool {
	if w.events == nil || eventID == "" {
		return false
	}
	seen, err := w.events.Seen(ctx, eventID)
	if err != nil {
		log.WarnContext(ctx, "event cache lookup failed", logger.Err(err))
		return false
	}
	return seen
}

func (w *WebhookReconciler) mark(ctx context.Context, log *slog.Logger, eventID string) {
	if w.events == nil || eventID == "" {
		return
	}
	if err := w.events.Mark(ctx, eventID); err != nil {
		log.WarnContext(ctx, "event cache update failed", logger.Err(err))
	}
}
