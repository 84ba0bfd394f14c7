package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	JWTSecret      string
	RequestTimeout time.Duration
}

type Handlers struct {
	Products *ProductHandler
	Cart     *CartHandler
	Orders   *OrdersHandler
	Payments *PaymentsHandler
	DB       Pinger
}

// NewRouter mounts every route under /api/v1 plus /health, wrapped in otelhttp.
func NewRouter(cfg RouterConfig, h Handlers, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", health(h.DB, log))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", h.Products.ListProducts)
		r.Get("/products/{product_id}", h.Products.GetProduct)
		r.Post("/cart/validate", h.Cart.ValidateCart)

		// the signature is the authentication
		r.Post("/payments/webhook", h.Payments.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.JWTSecret, log))

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.Orders.CreateOrder)
				r.Get("/", h.Orders.ListOrders)
				r.Get("/{order_id}", h.Orders.GetOrder)
				r.Patch("/{order_id}/status", h.Orders.UpdateStatus)
			})

			r.Post("/payments/create-intent", h.Payments.CreateIntent)
			r.Get("/payments/status/{order_id}", h.Payments.GetStatus)
		})
	})

	return otelhttp.NewHandler(r, "greenroots-api")
}

func health(db Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.WarnContext(ctx, "health check failed", logger.Err(err))
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
