package main

import (
	"log"

	"go.uber.org/zap"

	"smm-wallet/internal/config"
	"smm-wallet/internal/database"
	"smm-wallet/internal/logger"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Server.GinMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.Connect(cfg.Database, zl)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}

	zl.Info("Running database migrations...")
	if err := database.Migrate(db); err != nil {
		zl.Fatal("Migration failed", zap.Error(err))
	}
	zl.Info("Migrations completed successfully")
}
