package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/auth"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/service/httpapi"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	redisstore "github.com/vladislavdragonenkov/storefront/internal/storage/redis"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// CartConfig описывает настройки сервиса корзины.
type CartConfig struct {
	HTTPAddr    string
	MetricsAddr string
	// RedisAddr пустой — корзины живут в памяти.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecret     string
}

// DefaultCartConfig возвращает настройки по умолчанию.
func DefaultCartConfig() CartConfig {
	return CartConfig{
		HTTPAddr:    ":8002",
		MetricsAddr: ":9092",
		JWTSecret:   "dev-secret",
	}
}

// RunCart запускает сервис корзины.
func RunCart(ctx context.Context, cfg CartConfig) error {
	logger := log.WithField("component", "cart-service")

	var carts domain.CartRepository

	healthHandler := healthcheck.NewHandler(version.GetVersion())

	if cfg.RedisAddr != "" {
		client, err := redisstore.Open(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		carts = redisstore.NewCartRepository(client)
		healthHandler.RegisterChecker("redis", healthcheck.NewSimpleChecker("redis", func() error {
			return client.Ping(context.Background()).Err()
		}))
		logger.Info("корзины хранятся в redis")
	} else {
		carts = memory.NewCartRepository()
		logger.Warn("корзины хранятся в памяти, данные не переживут рестарт")
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret)
	handler := httpapi.NewCartHandler(carts, logger.WithField("layer", "http"))
	router := httpapi.NewCartRouter(handler, issuer)

	startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	return serveHTTP(ctx, cfg.HTTPAddr, router, logger)
}
