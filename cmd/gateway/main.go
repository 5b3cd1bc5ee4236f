package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/app"
)

func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

func readConfig() app.GatewayConfig {
	cfg := app.DefaultGatewayConfig()
	if v := os.Getenv("STOREFRONT_GATEWAY_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("STOREFRONT_GATEWAY_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("STOREFRONT_AUTH_URL"); v != "" {
		cfg.AuthURL = v
	}
	if v := os.Getenv("STOREFRONT_CATALOG_URL"); v != "" {
		cfg.CatalogURL = v
	}
	if v := os.Getenv("STOREFRONT_CART_URL"); v != "" {
		cfg.CartURL = v
	}
	if v := os.Getenv("STOREFRONT_ORDER_URL"); v != "" {
		cfg.OrderURL = v
	}
	return cfg
}

func main() {
	_ = godotenv.Load()
	setupLogger()
	cfg := readConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":    cfg.HTTPAddr,
		"metrics_addr": cfg.MetricsAddr,
	}).Info("запускаем edge-шлюз")

	if err := app.RunGateway(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("edge-шлюз остановлен")
}
