package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
	TransactionRefund TransactionType = "refund"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionCredit, TransactionDebit, TransactionRefund:
		return true
	}
	return false
}

// Signed returns amount with the sign the entry applies to the balance.
func (t TransactionType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t == TransactionDebit {
		return amount.Neg()
	}
	return amount
}

// WalletTransaction is an append-only ledger row. Reference is unique so every
// order-level effect (debit, refund, funding credit) lands at most once.
type WalletTransaction struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint            `gorm:"column:user_id;not null;index:idx_wtx_user_created" json:"user_id"`
	TransactionType TransactionType `gorm:"column:transaction_type;size:20;not null" json:"transaction_type"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	BalanceBefore   decimal.Decimal `gorm:"column:balance_before;type:decimal(20,2);not null" json:"balance_before"`
	BalanceAfter    decimal.Decimal `gorm:"column:balance_after;type:decimal(20,2);not null" json:"balance_after"`
	Description     string          `gorm:"column:description;type:text" json:"description"`
	Reference       *string         `gorm:"column:reference;size:120;uniqueIndex" json:"reference,omitempty"`
	OrderID         *uint           `gorm:"column:order_id;index" json:"order_id,omitempty"`
	CreatedBy       *uint           `gorm:"column:created_by" json:"created_by,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime;index:idx_wtx_user_created" json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

func DebitReference(orderID uint) string {
	return fmt.Sprintf("order_debit_%d", orderID)
}

func RefundReference(orderID uint) string {
	return fmt.Sprintf("refund_%d", orderID)
}

func FundingReference(orderID uint) string {
	return fmt.Sprintf("funding_%d", orderID)
}
