package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/konstantin-nikolovski/perq/api/routes"
	"github.com/konstantin-nikolovski/perq/internal/config"
	"github.com/konstantin-nikolovski/perq/internal/handlers"
	"github.com/konstantin-nikolovski/perq/internal/repositories"
	mongorepo "github.com/konstantin-nikolovski/perq/internal/repositories/mongodb"
	shopifyrepo "github.com/konstantin-nikolovski/perq/internal/repositories/shopify"
	"github.com/konstantin-nikolovski/perq/internal/services"
	"github.com/konstantin-nikolovski/perq/pkg/mongodb"
	"github.com/konstantin-nikolovski/perq/pkg/shopify"
	"golang.org/x/exp/slog"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		slog.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("error disconnecting from MongoDB", "error", err)
		}
	}()
	db := mongoClient.Database(cfg.MongoDB.Database)

	adminClient := shopify.NewClient(cfg.Shopify.ShopDomain, cfg.Shopify.AccessToken, cfg.Shopify.APIVersion)

	var ledgerRepo repositories.LedgerRepository = shopifyrepo.NewLedgerRepository(adminClient)
	var orderStateRepo repositories.OrderStateRepository = shopifyrepo.NewOrderStateRepository(adminClient)
	var settingsRepo repositories.SettingsRepository = shopifyrepo.NewSettingsRepository(adminClient)
	var txnRepo repositories.PointTransactionRepository = mongorepo.NewPointTransactionRepository(db)

	redemptionService := services.NewRedemptionService(ledgerRepo, orderStateRepo, txnRepo)
	refundService := services.NewRefundService(ledgerRepo, orderStateRepo, txnRepo)
	discountService := services.NewDiscountService()
	settingsService := services.NewSettingsService(settingsRepo)
	pointsService := services.NewPointsService(ledgerRepo, txnRepo)

	deps := routes.HandlerDependencies{
		WebhookHandler:  handlers.NewWebhookHandler(redemptionService, refundService),
		DiscountHandler: handlers.NewDiscountHandler(discountService),
		PointsHandler:   handlers.NewPointsHandler(pointsService),
		SettingsHandler: handlers.NewSettingsHandler(settingsService),
	}

	router := routes.SetupRouter(cfg, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exiting")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}
