package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"smm-wallet/internal/config"
	"smm-wallet/internal/events"
	"smm-wallet/internal/middleware"
	"smm-wallet/internal/models"
	"smm-wallet/internal/services"
)

type Services struct {
	Wallets *services.WalletService
	Orders  *services.OrderService
	Refunds *services.RefundService
	Bus     *events.Bus
}

func Setup(cfg config.JWTConfig, svc Services, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics())

	walletHandler := NewWalletHandler(svc.Wallets, svc.Orders, log)
	orderHandler := NewOrderHandler(svc.Orders, log)
	adminHandler := NewAdminHandler(svc.Orders, svc.Refunds, svc.Wallets, log)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome To SMM Wallet service"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws/wallet", WalletSocket(cfg, svc.Bus, log))

	api := r.Group("/api/v1", middleware.AuthRequired(cfg))
	{
		api.GET("/wallet/balance", walletHandler.GetBalance)
		api.GET("/wallet/transactions", walletHandler.GetTransactions)
		api.POST("/wallet/deduct", walletHandler.Deduct)
		api.POST("/wallet/fund", walletHandler.Fund)
		api.GET("/bank-accounts", walletHandler.ListBankAccounts)

		api.POST("/orders", orderHandler.PlaceOrder)
		api.GET("/orders", orderHandler.ListOrders)
		api.POST("/orders/confirm-payment", orderHandler.ConfirmPayment)
		api.POST("/orders/:id/auto-update", orderHandler.AutoUpdate)
		api.GET("/orders/:id/status", orderHandler.GetStatus)
	}

	admin := api.Group("/admin", middleware.RequireRole(models.RoleSubAdmin, models.RoleSuperAdmin))
	{
		admin.GET("/orders", adminHandler.ListOrders)
		admin.PATCH("/orders/:id", adminHandler.UpdateOrder)
		admin.POST("/orders/:id/refund", adminHandler.RefundOrder)
		admin.GET("/wallets/:userId/reconcile", adminHandler.Reconcile)
		admin.POST("/wallets/:userId/adjust", middleware.RequireRole(models.RoleSuperAdmin), adminHandler.AdjustBalance)
	}

	return r
}
