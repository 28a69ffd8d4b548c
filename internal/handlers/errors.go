package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"smm-wallet/internal/services"
	"smm-wallet/pkg/common"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{services.ErrInsufficientBalance, http.StatusBadRequest, "insufficient_balance"},
	{services.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{services.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{services.ErrInvalidPayment, http.StatusBadRequest, "invalid_payment_method"},
	{services.ErrBankAccountRequired, http.StatusBadRequest, "bank_account_required"},
	{services.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{services.ErrAmountMismatch, http.StatusBadRequest, "amount_mismatch"},
	{services.ErrForbidden, http.StatusForbidden, "forbidden"},
	{services.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{services.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{services.ErrServiceUnavailable, http.StatusNotFound, "service_unavailable"},
	{services.ErrDuplicateRefund, http.StatusConflict, "duplicate_refund"},
	{services.ErrDuplicateEntry, http.StatusConflict, "duplicate_entry"},
	{services.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{services.ErrConfirmationPending, http.StatusConflict, "confirmation_pending"},
}

// respondError writes the error envelope for err. Unknown errors become a
// generic 500; the cause is logged only.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		var data interface{}
		var ibe *services.InsufficientBalanceError
		if errors.As(err, &ibe) {
			data = gin.H{"requested": ibe.Requested, "available": ibe.Available}
		}
		c.JSON(m.status, common.NewErrorResponse(m.err.Error(), data, m.status).WithCode(m.code))
		return
	}

	log.Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError,
		common.NewErrorResponse("internal server error", nil, http.StatusInternalServerError).WithCode("internal_error"))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, common.NewErrorResponse(message, nil, http.StatusBadRequest).WithCode("validation_error"))
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
