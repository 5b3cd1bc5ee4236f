package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/auth"
	"github.com/vladislavdragonenkov/storefront/internal/client"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/httpapi"
	"github.com/vladislavdragonenkov/storefront/internal/service/idempotency"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// OrderConfig описывает настройки сервиса заказов.
type OrderConfig struct {
	HTTPAddr    string
	MetricsAddr string
	// PostgresDSN пустой — ledger и idempotency-ключи живут в памяти.
	PostgresDSN    string
	CartBaseURL    string
	CatalogBaseURL string
	JWTSecret      string
}

// DefaultOrderConfig возвращает адреса и зависимости по умолчанию.
func DefaultOrderConfig() OrderConfig {
	return OrderConfig{
		HTTPAddr:       ":8003",
		MetricsAddr:    ":9093",
		CartBaseURL:    "http://localhost:8002",
		CatalogBaseURL: "http://localhost:8001",
		JWTSecret:      "dev-secret",
	}
}

// RunOrder запускает сервис заказов: оркестратор оформления плюс ledger.
func RunOrder(ctx context.Context, cfg OrderConfig) error {
	logger := log.WithField("component", "order-service")

	var (
		ledger domain.OrderRepository
		idem   domain.IdempotencyRepository
	)

	healthHandler := healthcheck.NewHandler(version.GetVersion())

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		if err := store.MigrateUp(ctx, 0); err != nil {
			return err
		}
		ledger = postgres.NewOrderRepository(store)
		idem = postgres.NewIdempotencyRepository(store)
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			return store.Ping(context.Background())
		}))
		logger.Info("ledger хранится в postgres")
	} else {
		ledger = memory.NewOrderRepository()
		idem = memory.NewIdempotencyRepository()
		logger.Warn("ledger хранится в памяти, данные не переживут рестарт")
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret)
	cartGateway := client.NewCartClient(cfg.CartBaseURL, logger.WithField("client", "cart"))
	catalogGateway := client.NewCatalogClient(cfg.CatalogBaseURL, logger.WithField("client", "catalog"))

	orchestrator := checkout.NewOrchestrator(ledger, cartGateway, catalogGateway, issuer, logger.WithField("layer", "checkout"))

	cleanupWorker := idempotency.NewCleanupWorker(idem, logger.WithField("component", "idempotency-cleanup-worker"), 0, 0)
	go cleanupWorker.Run(ctx)

	handler := httpapi.NewOrderHandler(orchestrator, ledger, idem, logger.WithField("layer", "http"))
	router := httpapi.NewOrderRouter(handler, issuer)

	startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	return serveHTTP(ctx, cfg.HTTPAddr, router, logger)
}
