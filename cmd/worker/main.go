package main

import (
	"log"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"smm-wallet/internal/config"
	"smm-wallet/internal/database"
	"smm-wallet/internal/logger"
	"smm-wallet/internal/services"
	"smm-wallet/internal/worker"
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

	// The worker process publishes no live events; websocket clients live in the API.
	ledger := services.NewLedgerService(db, zl, nil)
	audit := services.NewAuditService(db, zl)
	refunds := services.NewRefundService(db, ledger, audit, zl, cfg.Refunds)
	mailer := services.NewNotifier(cfg.Mail, zl)
	orders := services.NewOrderService(db, ledger, refunds, audit, mailer, nil, zl, cfg.Orders, cfg.Mail.AdminEmail)

	w := worker.NewWorker(orders, mailer, zl)
	if err := worker.StartWorker(asynq.RedisClientOpt{Addr: cfg.Redis.Addr}, w); err != nil {
		zl.Fatal("could not run worker", zap.Error(err))
	}
}
