package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"smm-wallet/internal/config"
	"smm-wallet/internal/database"
	"smm-wallet/internal/events"
	"smm-wallet/internal/handlers"
	"smm-wallet/internal/logger"
	"smm-wallet/internal/services"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	zl, err := logger.New(cfg.Server.GinMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	// Initialize Database
	db, err := database.Connect(cfg.Database, zl)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zl.Fatal("Migration failed", zap.Error(err))
	}

	// Redis/Asynq Client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr})
	defer asynqClient.Close()

	// Init Services
	bus := events.NewBus()
	ledger := services.NewLedgerService(db, zl, bus)
	audit := services.NewAuditService(db, zl)
	refunds := services.NewRefundService(db, ledger, audit, zl, cfg.Refunds)
	notifier := services.NewQueueNotifier(asynqClient)
	orders := services.NewOrderService(db, ledger, refunds, audit, notifier, asynqClient, zl, cfg.Orders, cfg.Mail.AdminEmail)
	wallets := services.NewWalletService(db, ledger, audit, zl)
	confirmation := services.NewConfirmationService(db, orders, zl)

	// Start Cron Schedulers
	sweep, err := confirmation.StartScheduler(cfg.Orders.SweepSchedule)
	if err != nil {
		zl.Fatal("Failed to schedule confirmation sweep", zap.Error(err))
	}
	defer sweep.Stop()

	r := handlers.Setup(cfg.JWT, handlers.Services{
		Wallets: wallets,
		Orders:  orders,
		Refunds: refunds,
		Bus:     bus,
	}, zl)

	zl.Info("HTTP Server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		zl.Fatal("Failed to start server", zap.Error(err))
	}
}
