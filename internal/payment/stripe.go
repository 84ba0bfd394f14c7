package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/pkg/circuitbreaker"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

type Processor interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error)
	ParseWebhook(payload []byte, signature, secret string) (Event, error)
}

type StripeConfig struct {
	SecretKey string
	// APIURL overrides the Stripe API base URL, e.g. for stripe-mock.
	APIURL  string
	Breaker circuitbreaker.Config
}

type StripeProcessor struct {
	intents *paymentintent.Client
	breaker *circuitbreaker.Breaker[*stripe.PaymentIntent]
}

func NewStripeProcessor(cfg StripeConfig, logger *slog.Logger) *StripeProcessor {
	backend := stripe.GetBackend(stripe.APIBackend)
	if cfg.APIURL != "" {
		backend = stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(cfg.APIURL),
			MaxNetworkRetries: stripe.Int64(0),
		})
	}

	bc := cfg.Breaker
	if bc.Name == "" {
		bc = circuitbreaker.DefaultConfig("stripe")
	}
	bc.Logger = logger
	bc.IsSuccessful = isClientError

	return &StripeProcessor{
		intents: &paymentintent.Client{B: backend, Key: cfg.SecretKey},
		breaker: circuitbreaker.New[*stripe.PaymentIntent](bc),
	}
}

// CreateIntent opens a PaymentIntent for amountMinor in currency with automatic payment methods.
func (p *StripeProcessor) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.breaker.Execute(func() (*stripe.PaymentIntent, error) {
		return p.intents.New(params)
	})
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// ParseWebhook verifies the Stripe-Signature header against secret and decodes the event.
func (p *StripeProcessor) ParseWebhook(payload []byte, signature, secret string) (Event, error) {
	return ParseStripeEvent(payload, signature, secret)
}

func ParseStripeEvent(payload []byte, signature, secret string) (Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	env := envelope{ID: event.ID, Type: string(event.Type)}

	switch env.Type {
	case TypeIntentSucceeded, TypeIntentFailed, TypeIntentRequiresAction:
	default:
		return Unknown{envelope: env}, nil
	}

	if event.Data == nil {
		return nil, fmt.Errorf("%w: event %s has no data", ErrMalformedEvent, event.ID)
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if pi.ID == "" {
		return nil, fmt.Errorf("%w: event %s has no payment intent id", ErrMalformedEvent, event.ID)
	}

	switch env.Type {
	case TypeIntentSucceeded:
		return IntentSucceeded{
			envelope: env,
			IntentID: pi.ID,
			Amount:   pi.Amount,
			Currency: string(pi.Currency),
			Metadata: pi.Metadata,
		}, nil
	case TypeIntentFailed:
		return IntentFailed{
			envelope: env,
			IntentID: pi.ID,
			Reason:   failureReason(&pi),
			Metadata: pi.Metadata,
		}, nil
	default:
		return IntentRequiresAction{envelope: env, IntentID: pi.ID}, nil
	}
}

func failureReason(pi *stripe.PaymentIntent) string {
	if pi.LastPaymentError == nil {
		return "payment_failed"
	}
	if pi.LastPaymentError.DeclineCode != "" {
		return string(pi.LastPaymentError.DeclineCode)
	}
	if pi.LastPaymentError.Code != "" {
		return string(pi.LastPaymentError.Code)
	}
	if pi.LastPaymentError.Msg != "" {
		return pi.LastPaymentError.Msg
	}
	return "payment_failed"
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrTooOld)
}

// isClientError keeps 4xx responses (other than rate limiting) from tripping the breaker.
func isClientError(err error) bool {
	if err == nil {
		return true
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		return se.HTTPStatusCode >= 400 && se.HTTPStatusCode < 500 && se.HTTPStatusCode != http.StatusTooManyRequests
	}
	return false
}

// MetadataFor builds the intent metadata that links it back to an order.
func MetadataFor(orderID, userID int64) map[string]string {
	return map[string]string{
		"order_id": strconv.FormatInt(orderID, 10),
		"user_id":  strconv.FormatInt(userID, 10),
	}
}
