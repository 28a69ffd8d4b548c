package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrDuplicateEntry      = errors.New("ledger entry already recorded")
	ErrDuplicateRefund     = errors.New("order has already been refunded")
	ErrUserNotFound        = errors.New("user not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrServiceUnavailable  = errors.New("service not found or inactive")
	ErrInvalidQuantity     = errors.New("quantity outside the service limits")
	ErrBankAccountRequired = errors.New("an active bank account is required for bank transfer")
	ErrInvalidPayment      = errors.New("invalid payment method")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrInvalidTransition   = errors.New("order status transition not allowed")
	ErrConfirmationPending = errors.New("confirmation window has not elapsed")
	ErrAmountMismatch      = errors.New("amount does not match order total")
	ErrForbidden           = errors.New("order does not belong to user")
	ErrOrderCodeExhausted  = errors.New("could not allocate a unique order code")
)

// InsufficientBalanceError carries the figures behind a rejected debit.
type InsufficientBalanceError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient wallet balance: requested %s, available %s", e.Requested.String(), e.Available.String())
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// isDuplicateKey covers drivers with and without gorm error translation.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
