package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nazmulhossain/shopdesk-backend/api/routes"
	"github.com/nazmulhossain/shopdesk-backend/internal/audit"
	"github.com/nazmulhossain/shopdesk-backend/internal/courier"
	"github.com/nazmulhossain/shopdesk-backend/internal/customers"
	internalledger "github.com/nazmulhossain/shopdesk-backend/internal/ledger"
	"github.com/nazmulhossain/shopdesk-backend/internal/orders"
	"github.com/nazmulhossain/shopdesk-backend/internal/products"
	"github.com/nazmulhossain/shopdesk-backend/internal/stock"
	"github.com/nazmulhossain/shopdesk-backend/pkg/brands"
	"github.com/nazmulhossain/shopdesk-backend/pkg/config"
	"github.com/nazmulhossain/shopdesk-backend/pkg/db"
	"github.com/nazmulhossain/shopdesk-backend/pkg/logger"
	"github.com/nazmulhossain/shopdesk-backend/pkg/metrics"
	"github.com/nazmulhossain/shopdesk-backend/pkg/migrate"
	"github.com/nazmulhossain/shopdesk-backend/pkg/outbox"
	"github.com/nazmulhossain/shopdesk-backend/pkg/pathao"
	"github.com/nazmulhossain/shopdesk-backend/pkg/redis"
)

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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry, err := brands.NewRegistry(cfg.App.Brands)
	if err != nil {
		logg.Error(context.Background(), "failed to build brand registry", err)
		os.Exit(1)
	}

	auditor := audit.NewRecorder(dbClient.DB(), logg)
	events := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	stockLedger := stock.NewLedger(dbClient.DB(), logg)

	productsRepo := products.NewRepository(dbClient.DB())
	productsSvc, err := products.NewService(productsRepo, registry, auditor)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	customersSvc, err := customers.NewService(customers.NewRepository(dbClient.DB()), registry)
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

	ledgerSvc, err := internalledger.NewService(internalledger.NewRepository(dbClient.DB()), registry)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersSvc, err := orders.NewService(dbClient, ordersRepo, productsRepo, customersSvc, stockLedger, events, auditor, registry, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	pathaoClient, err := pathao.NewClient(cfg.Pathao)
	if err != nil {
		logg.Error(context.Background(), "failed to create pathao client", err)
		os.Exit(1)
	}

	courierMetrics := metrics.NewCourierMetrics(prometheus.DefaultRegisterer)
	bridge, err := courier.NewBridge(dbClient, ordersRepo, pathaoClient, events, auditor, courierMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create courier bridge", err)
		os.Exit(1)
	}
	reconciler, err := courier.NewReconciler(dbClient, ordersRepo, pathaoClient, events, auditor, courierMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create courier reconciler", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			DB:        dbClient,
			Redis:     redisClient,
			Products:  productsSvc,
			Customers: customersSvc,
			Orders:    ordersSvc,
			Ledger:    ledgerSvc,
			Courier:   bridge,
			Sync:      reconciler,
		}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
