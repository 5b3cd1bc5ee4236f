package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/auth"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/service/httpapi"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// CatalogConfig описывает настройки сервиса каталога.
type CatalogConfig struct {
	HTTPAddr    string
	MetricsAddr string
	PostgresDSN string
	JWTSecret   string
}

// DefaultCatalogConfig возвращает настройки по умолчанию.
func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		HTTPAddr:    ":8001",
		MetricsAddr: ":9091",
		JWTSecret:   "dev-secret",
	}
}

// RunCatalog запускает сервис каталога.
func RunCatalog(ctx context.Context, cfg CatalogConfig) error {
	logger := log.WithField("component", "catalog-service")

	var products domain.ProductRepository

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
		products = postgres.NewProductRepository(store)
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			return store.Ping(context.Background())
		}))
		logger.Info("каталог хранится в postgres")
	} else {
		products = memory.NewProductRepository()
		logger.Warn("каталог хранится в памяти, данные не переживут рестарт")
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret)
	handler := httpapi.NewCatalogHandler(products, logger.WithField("layer", "http"))
	router := httpapi.NewCatalogRouter(handler, issuer)

	startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	return serveHTTP(ctx, cfg.HTTPAddr, router, logger)
}
