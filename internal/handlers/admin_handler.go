package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smm-wallet/internal/middleware"
	"smm-wallet/internal/models"
	"smm-wallet/internal/services"
	"smm-wallet/pkg/common"
)

type AdminHandler struct {
	Orders  *services.OrderService
	Refunds *services.RefundService
	Wallets *services.WalletService
	Logger  *zap.Logger
}

func NewAdminHandler(orders *services.OrderService, refunds *services.RefundService, wallets *services.WalletService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{Orders: orders, Refunds: refunds, Wallets: wallets, Logger: logger}
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		badRequest(c, "invalid status")
		return
	}
	page, limit := common.ParsePage(c.Query("page"), c.Query("limit"), 50, 200)
	res, err := h.Orders.ListOrders(c.Request.Context(), services.ListOrdersDTO{
		Status: status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type UpdateOrderRequest struct {
	Status     models.OrderStatus `json:"status"`
	AdminNotes *string            `json:"admin_notes"`
}

func (h *AdminHandler) UpdateOrder(c *gin.Context) {
	orderID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Status == "" && req.AdminNotes == nil {
		badRequest(c, "status or admin_notes is required")
		return
	}

	res, err := h.Orders.AdminUpdateStatus(c.Request.Context(), services.AdminUpdateDTO{
		OrderID:    orderID,
		AdminID:    middleware.GetUserID(c),
		Status:     req.Status,
		AdminNotes: req.AdminNotes,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(res, "Order updated"))
}

func (h *AdminHandler) RefundOrder(c *gin.Context) {
	orderID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	res, err := h.Refunds.ProcessRefund(c.Request.Context(), orderID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	msg := "Refund applied"
	if !res.Refunded {
		msg = "Refund skipped: " + res.SkipReason
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(res, msg))
}

func (h *AdminHandler) Reconcile(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	res, err := h.Wallets.Reconcile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(res, "Reconciliation complete"))
}

type AdjustBalanceRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason" binding:"required"`
}

func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	trx, err := h.Wallets.AdjustBalance(c.Request.Context(), services.AdjustBalanceDTO{
		UserID:  userID,
		AdminID: middleware.GetUserID(c),
		Amount:  req.Amount,
		Reason:  req.Reason,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(trx, "Balance adjusted"))
}
