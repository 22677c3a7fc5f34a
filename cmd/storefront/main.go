package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fjod/storefront/internal/backend"
	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/config"
	"github.com/fjod/storefront/internal/domain"
	h "github.com/fjod/storefront/internal/http"
	"github.com/fjod/storefront/internal/pricing"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/fjod/storefront/internal/repository"
	"github.com/fjod/storefront/internal/service"
	"github.com/fjod/storefront/internal/trace"
	"github.com/fjod/storefront/internal/validation"
	"github.com/fjod/storefront/pkg/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEnabled {
		tp, err := trace.InitTracer(ctx)
		if err != nil {
			log.Fatal("failed to init tracer", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	// Redis holds wizard and customizer state
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	log.Info("redis ping succeeded", zap.String("addr", cfg.Redis.Addr))
	store := cache.NewRedisStore(redisClient, cfg.Redis.WizardTTL)

	// Postgres holds saved designs and the outbox
	creds := &repository.Credentials{
		Host:              cfg.DB.Host,
		Port:              cfg.DB.Port,
		User:              cfg.DB.User,
		Password:          cfg.DB.Password,
		DBName:            cfg.DB.Name,
		MigrationsDirPath: cfg.DB.MigrationsPath,
	}
	repo, err := repository.NewRepository(ctx, creds)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer repo.Close()
	if err := repo.RunMigrations(creds); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	poller := publisher.NewOutboxPoller(repo, log, cfg.Kafka.Topic, cfg.Kafka.Brokers...)
	defer poller.Close()
	go poller.Run(ctx)

	shop := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)

	validator := validation.New()
	calc := pricing.NewCalculator(domain.PricingPolicy{
		FlatShippingFee:       cfg.Pricing.FlatShippingFee,
		FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
		TaxRate:               cfg.Pricing.TaxRate,
	})

	checkoutService := service.NewCheckoutService(service.NewCartLoader(shop), shop, store, validator, calc, log)
	ordersService := service.NewOrdersService(shop)
	customizerService := service.NewCustomizerService(store, repo, validator, log)
	exchangeService := service.NewExchangeService(shop)
	contactService := service.NewContactService(shop, repo, validator, log)

	router := h.NewRouter(h.Handlers{
		Checkout: h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout, log),
		Orders:   h.NewOrdersHandler(ordersService, cfg.RequestTimeout, cfg.TrackInterval, cfg.AllowedOrigins, log),
		Designs:  h.NewDesignsHandler(customizerService, cfg.RequestTimeout, log),
		Exchange: h.NewExchangeHandler(exchangeService, contactService, cfg.RequestTimeout, log),
	}, h.RouterConfig{
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		HealthChecks: map[string]h.HealthCheck{
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			"postgres": repo.Ping,
		},
	}, log)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", zap.String("port", cfg.HTTPPort), zap.String("backend", cfg.Backend.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
