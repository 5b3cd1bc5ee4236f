package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/auth"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/service/httpapi"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// AuthConfig описывает настройки сервиса аутентификации.
type AuthConfig struct {
	HTTPAddr    string
	MetricsAddr string
	PostgresDSN string
	JWTSecret   string
	// AdminEmail/AdminPassword непустые — при старте создаётся
	// административная учётка (существующая не трогается).
	AdminEmail    string
	AdminPassword string
}

// DefaultAuthConfig возвращает настройки по умолчанию.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		HTTPAddr:    ":8000",
		MetricsAddr: ":9090",
		JWTSecret:   "dev-secret",
	}
}

// RunAuth запускает сервис аутентификации.
func RunAuth(ctx context.Context, cfg AuthConfig) error {
	logger := log.WithField("component", "auth-service")

	var users domain.UserRepository

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
		users = postgres.NewUserRepository(store)
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			return store.Ping(context.Background())
		}))
		logger.Info("учётные записи хранятся в postgres")
	} else {
		users = memory.NewUserRepository()
		logger.Warn("учётные записи хранятся в памяти, данные не переживут рестарт")
	}

	if err := seedAdmin(users, cfg.AdminEmail, cfg.AdminPassword, logger); err != nil {
		return err
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret)
	handler := httpapi.NewAuthHandler(users, issuer, logger.WithField("layer", "http"))
	router := httpapi.NewAuthRouter(handler, issuer)

	startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	return serveHTTP(ctx, cfg.HTTPAddr, router, logger)
}

// seedAdmin создаёт административную учётку при первом старте.
func seedAdmin(users domain.UserRepository, email, password string, logger *log.Entry) error {
	if email == "" || password == "" {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	err = users.Create(domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil
		}
		return err
	}

	logger.WithField("email", email).Info("создана административная учётка")
	return nil
}
