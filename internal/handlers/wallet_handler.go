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

type WalletHandler struct {
	Wallets *services.WalletService
	Orders  *services.OrderService
	Logger  *zap.Logger
}

func NewWalletHandler(wallets *services.WalletService, orders *services.OrderService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{Wallets: wallets, Orders: orders, Logger: logger}
}

func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	balance, err := h.Wallets.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"balance":  balance,
		"currency": "NGN",
	}, "Balance retrieved"))
}

func (h *WalletHandler) GetTransactions(c *gin.Context) {
	page, limit := common.ParsePage(c.Query("page"), c.Query("limit"), 20, 100)
	txType := models.TransactionType(c.Query("type"))
	if txType != "" && !txType.Valid() {
		badRequest(c, "invalid transaction type")
		return
	}

	res, err := h.Wallets.GetUserTransactions(c.Request.Context(), services.UserTransactionDTO{
		UserID:    middleware.GetUserID(c),
		Type:      txType,
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type DeductRequest struct {
	OrderID     uint            `json:"order_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (h *WalletHandler) Deduct(c *gin.Context) {
	var req DeductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	order, trx, err := h.Orders.DeductForOrder(c.Request.Context(), services.DeductDTO{
		UserID:      middleware.GetUserID(c),
		OrderID:     req.OrderID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"order":       order,
		"transaction": trx,
		"balance":     trx.BalanceAfter,
	}, "Wallet debited"))
}

type FundWalletRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	BankAccountID *uint           `json:"bank_account_id"`
}

func (h *WalletHandler) Fund(c *gin.Context) {
	var req FundWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	order, err := h.Orders.FundWallet(c.Request.Context(), services.FundWalletDTO{
		UserID:        middleware.GetUserID(c),
		Amount:        req.Amount,
		BankAccountID: req.BankAccountID,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	res := common.NewSuccessResponse(order, "Funding order created, transfer using the order code as narration")
	res.Status = http.StatusCreated
	c.JSON(http.StatusCreated, res)
}

func (h *WalletHandler) ListBankAccounts(c *gin.Context) {
	accounts, err := h.Wallets.ListBankAccounts(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(accounts, "Bank accounts retrieved"))
}
