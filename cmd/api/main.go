package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pasofino/tienda-backend/api/routes"
	authsvc "github.com/pasofino/tienda-backend/internal/auth"
	cartsvc "github.com/pasofino/tienda-backend/internal/cart"
	catalogsvc "github.com/pasofino/tienda-backend/internal/catalog"
	checkoutsvc "github.com/pasofino/tienda-backend/internal/checkout"
	customersvc "github.com/pasofino/tienda-backend/internal/customers"
	"github.com/pasofino/tienda-backend/internal/notifications"
	ordersvc "github.com/pasofino/tienda-backend/internal/orders"
	paymentsvc "github.com/pasofino/tienda-backend/internal/payments"
	"github.com/pasofino/tienda-backend/pkg/config"
	"github.com/pasofino/tienda-backend/pkg/db"
	"github.com/pasofino/tienda-backend/pkg/env"
	"github.com/pasofino/tienda-backend/pkg/logger"
	"github.com/pasofino/tienda-backend/pkg/metrics"
	pkgredis "github.com/pasofino/tienda-backend/pkg/redis"
	pkgstripe "github.com/pasofino/tienda-backend/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := pkgredis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics := metrics.NewStoreMetrics(registry)

	svcs, err := buildServices(cfg, logg, dbClient, stripeClient, storeMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, svcs),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	stripeClient *pkgstripe.Client,
	storeMetrics *metrics.StoreMetrics,
) (routes.Services, error) {
	catalogService, err := catalogsvc.NewService(catalogsvc.NewRepository(dbClient.DB()))
	if err != nil {
		return routes.Services{}, err
	}

	cartService, err := cartsvc.NewService(cartsvc.NewRepository(dbClient.DB()), dbClient, storeMetrics)
	if err != nil {
		return routes.Services{}, err
	}

	notifier, err := notifications.NewService(notifications.NewLogMailer(cfg.Mail.FromAddress, logg), logg)
	if err != nil {
		return routes.Services{}, err
	}

	checkoutService, err := checkoutsvc.NewService(dbClient, cfg.Checkout, notifier, storeMetrics, logg)
	if err != nil {
		return routes.Services{}, err
	}

	ordersRepo := ordersvc.NewRepository(dbClient.DB())
	paymentsService, err := paymentsvc.NewService(ordersRepo, paymentsvc.NewStripeGateway(stripeClient), cfg.Checkout, storeMetrics, logg)
	if err != nil {
		return routes.Services{}, err
	}

	ordersService, err := ordersvc.NewService(ordersRepo)
	if err != nil {
		return routes.Services{}, err
	}

	customersRepo := customersvc.NewRepository(dbClient.DB())
	authService, err := authsvc.NewService(customersRepo, dbClient, cfg.JWT, cfg.Password, logg)
	if err != nil {
		return routes.Services{}, err
	}

	customersService, err := customersvc.NewService(customersRepo)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Catalog:   catalogService,
		Cart:      cartService,
		Checkout:  checkoutService,
		Payments:  paymentsService,
		Orders:    ordersService,
		Auth:      authService,
		Customers: customersService,
	}, nil
}
