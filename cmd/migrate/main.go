package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

const migrateTimeout = 30 * time.Second

// Утилита управления схемой общей базы. Сервисы мигрируют её сами на
// старте, команда нужна для ручного отката и проверки версии:
//
//	migrate [-dsn ...] up [-steps N]
//	migrate [-dsn ...] down [-steps N]
//	migrate [-dsn ...] status
func main() {
	_ = godotenv.Load()
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	dsn := flag.String("dsn", "", "PostgreSQL DSN (по умолчанию STOREFRONT_POSTGRES_DSN)")
	steps := flag.Int("steps", 0, "сколько миграций применить или откатить (0 — все для up, одна для down)")
	flag.Parse()

	command := strings.ToLower(flag.Arg(0))
	if command == "" {
		command = "status"
	}

	target := strings.TrimSpace(*dsn)
	if target == "" {
		target = strings.TrimSpace(os.Getenv("STOREFRONT_POSTGRES_DSN"))
	}
	if target == "" {
		log.Fatal("не задан DSN: укажите -dsn или STOREFRONT_POSTGRES_DSN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, target)
	if err != nil {
		log.WithError(err).Fatal("не удалось подключиться к базе")
	}
	defer store.Close()

	switch command {
	case "up":
		if err := store.MigrateUp(ctx, *steps); err != nil {
			log.WithError(err).Fatal("миграция вверх не прошла")
		}
	case "down":
		if err := store.MigrateDown(ctx, *steps); err != nil {
			log.WithError(err).Fatal("откат миграции не прошёл")
		}
	case "status":
		// Версию печатаем ниже, общий для всех команд код.
	default:
		log.Fatalf("неизвестная команда %q: ожидается up, down или status", command)
	}

	version, applied, err := store.MigrationStatus(ctx)
	if err != nil {
		log.WithError(err).Fatal("не удалось прочитать версию схемы")
	}
	log.WithFields(log.Fields{
		"command": command,
		"version": version,
		"applied": applied,
	}).Info("состояние схемы")
}
