package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"smm-wallet/internal/middleware"
	"smm-wallet/internal/models"
	"smm-wallet/internal/services"
	"smm-wallet/pkg/common"
)

type OrderHandler struct {
	Orders *services.OrderService
	Logger *zap.Logger
}

func NewOrderHandler(orders *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{Orders: orders, Logger: logger}
}

func actorFrom(c *gin.Context) services.Actor {
	role, _ := middleware.GetRole(c)
	return services.Actor{ID: middleware.GetUserID(c), Role: role}
}

type PlaceOrderRequest struct {
	ServiceID     uint                 `json:"service_id" binding:"required"`
	Quantity      int                  `json:"quantity" binding:"required"`
	Link          string               `json:"link" binding:"required"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required"`
	BankAccountID *uint                `json:"bank_account_id"`
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	order, err := h.Orders.PlaceOrder(c.Request.Context(), services.PlaceOrderDTO{
		UserID:        middleware.GetUserID(c),
		ServiceID:     req.ServiceID,
		Quantity:      req.Quantity,
		Link:          req.Link,
		PaymentMethod: req.PaymentMethod,
		BankAccountID: req.BankAccountID,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	res := common.NewSuccessResponse(order, "Order placed")
	res.Status = http.StatusCreated
	c.JSON(http.StatusCreated, res)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, limit := common.ParsePage(c.Query("page"), c.Query("limit"), 20, 100)
	res, err := h.Orders.ListOrders(c.Request.Context(), services.ListOrdersDTO{
		UserID: middleware.GetUserID(c),
		Status: models.OrderStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type ConfirmPaymentRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

func (h *OrderHandler) ConfirmPayment(c *gin.Context) {
	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.Orders.ConfirmPayment(c.Request.Context(), actorFrom(c), req.OrderID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	msg := "Payment confirmation received"
	if res.AlreadyConfirmed {
		msg = "Payment already confirmed, awaiting verification"
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"order_id":              res.Order.ID,
		"status":                res.Order.Status,
		"confirmation_deadline": res.Order.ConfirmationDeadline,
		"already_confirmed":     res.AlreadyConfirmed,
	}, msg))
}

type AutoUpdateRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Reason string             `json:"reason"`
}

func (h *OrderHandler) AutoUpdate(c *gin.Context) {
	orderID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req AutoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.Orders.AutoUpdate(c.Request.Context(), services.AutoUpdateDTO{
		Actor:   actorFrom(c),
		OrderID: orderID,
		Status:  req.Status,
		Reason:  req.Reason,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(res, "Order status checked"))
}

func (h *OrderHandler) GetStatus(c *gin.Context) {
	orderID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	view, err := h.Orders.GetStatus(c.Request.Context(), actorFrom(c), orderID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(view, "Order status"))
}
