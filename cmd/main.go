package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/cache"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/catalog"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/config"
	h "github.com/adam-benyekkou/greenroots-ecom-sub000/internal/http"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/payment"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/publisher"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/repository"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/internal/service"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/pkg/circuitbreaker"
	"github.com/adam-benyekkou/greenroots-ecom-sub000/pkg/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog := logger.New("greenroots-api", logger.ParseLevel(cfg.LogLevel), os.Stdout)
	slog.SetDefault(appLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Orders database
	repo, err := repository.NewRepository(&cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(&cfg.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	appLog.Info("database migrations completed")

	// Tree catalog
	products, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer products.Close()

	if err := products.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}

	// Webhook event de-duplication
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	var events cache.EventCache
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Postgres stays authoritative; only the fast path is lost
		appLog.Warn("redis unavailable, webhook de-duplication cache disabled", logger.Err(err))
	} else {
		events = cache.NewRedisCache(redisClient)
	}

	if cfg.StripeWebhookSecret == "" {
		appLog.Warn("STRIPE_WEBHOOK_SECRET is not set, webhooks will be rejected")
	}

	processor := payment.NewStripeProcessor(payment.StripeConfig{
		SecretKey: cfg.StripeSecretKey,
		APIURL:    cfg.StripeAPIURL,
		Breaker:   circuitbreaker.DefaultConfig("stripe"),
	}, appLog)

	// Services
	cartValidator := service.NewCartValidator(service.NewCatalogHandler(products, cfg.CatalogTimeout), appLog)
	orderService := service.NewOrderService(repo, appLog)
	paymentService := service.NewPaymentService(repo, repo, service.NewProcessorHandler(processor, cfg.ProcessorTimeout), cfg.DefaultCurrency, appLog)
	reconciler := service.NewWebhookReconciler(repo, processor, cfg.StripeWebhookSecret, events, appLog)

	router := h.NewRouter(h.RouterConfig{
		JWTSecret:      cfg.JWTSecret,
		RequestTimeout: cfg.RequestTimeout,
	}, h.Handlers{
		Products: h.NewProductHandler(products, appLog),
		Cart:     h.NewCartHandler(cartValidator, appLog),
		Orders:   h.NewOrdersHandler(orderService, appLog),
		Payments: h.NewPaymentsHandler(paymentService, reconciler, appLog),
		DB:       repo,
	}, appLog)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Outbox -> Kafka
	poller := publisher.NewOutboxPoller(repo, publisher.NewKafkaWriter(cfg.KafkaTopic, cfg.KafkaBrokers...), appLog)
	defer poller.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLog.Info("http server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return poller.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		appLog.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLog.Error("service stopped with error", logger.Err(err))
		os.Exit(1)
	}
	appLog.Info("server exited")
}
