package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusAwaitingPayment      OrderStatus = "awaiting_payment"
	StatusAwaitingConfirmation OrderStatus = "awaiting_confirmation"
	StatusPending              OrderStatus = "pending"
	StatusCompleted            OrderStatus = "completed"
	StatusFailed               OrderStatus = "failed"
	StatusAwaitingRefund       OrderStatus = "awaiting_refund"
	StatusRefunded             OrderStatus = "refunded"
	StatusCancelled            OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentWallet       PaymentMethod = "wallet"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentWallet || m == PaymentBankTransfer
}

var transitions = map[OrderStatus][]OrderStatus{
	StatusAwaitingPayment:      {StatusAwaitingConfirmation, StatusPending, StatusFailed, StatusCancelled},
	StatusAwaitingConfirmation: {StatusPending, StatusFailed, StatusCancelled},
	StatusPending:              {StatusCompleted, StatusFailed},
	StatusCompleted:            {StatusAwaitingRefund},
	StatusAwaitingRefund:       {StatusRefunded, StatusCompleted},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusAwaitingPayment, StatusAwaitingConfirmation, StatusPending, StatusCompleted,
		StatusFailed, StatusAwaitingRefund, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status change or ledger effect is allowed.
func (s OrderStatus) Terminal() bool {
	return s == StatusFailed || s == StatusRefunded || s == StatusCancelled
}

// CanTransition reports whether an order may move from one status to another.
// Moving to the same status is not a transition; callers treat it as a no-op.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is either a service purchase or a wallet funding request. Funding
// orders have no service and store the amount in both PricePer1k and
// TotalPrice with Quantity = 1.
type Order struct {
	ID                     uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Code                   string          `gorm:"column:code;size:20;not null;uniqueIndex" json:"code"`
	UserID                 uint            `gorm:"column:user_id;not null;index" json:"user_id"`
	ServiceID              *uint           `gorm:"column:service_id;index" json:"service_id"`
	Link                   string          `gorm:"column:link;size:500" json:"link"`
	Quantity               int             `gorm:"column:quantity;not null" json:"quantity"`
	PricePer1k             decimal.Decimal `gorm:"column:price_per_1k;type:decimal(20,2);not null" json:"price_per_1k"`
	TotalPrice             decimal.Decimal `gorm:"column:total_price;type:decimal(20,2);not null" json:"total_price"`
	Status                 OrderStatus     `gorm:"column:status;size:32;not null;index:idx_orders_status_deadline" json:"status"`
	PaymentMethod          PaymentMethod   `gorm:"column:payment_method;size:20;not null" json:"payment_method"`
	BankAccountID          *uint           `gorm:"column:bank_account_id" json:"bank_account_id"`
	PaymentVerifiedAt      *time.Time      `gorm:"column:payment_verified_at" json:"payment_verified_at"`
	AwaitingConfirmationAt *time.Time      `gorm:"column:awaiting_confirmation_at" json:"awaiting_confirmation_at"`
	ConfirmationDeadline   *time.Time      `gorm:"column:confirmation_deadline;index:idx_orders_status_deadline" json:"confirmation_deadline"`
	AutoConfirmedAt        *time.Time      `gorm:"column:auto_confirmed_at" json:"auto_confirmed_at"`
	AdminNotes             string          `gorm:"column:admin_notes;type:text" json:"admin_notes"`
	CompletedAt            *time.Time      `gorm:"column:completed_at" json:"completed_at"`
	CancelledAt            *time.Time      `gorm:"column:cancelled_at" json:"cancelled_at"`
	CreatedAt              time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	BankAccount *BankAccount `gorm:"foreignKey:BankAccountID" json:"bank_account,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) IsWalletFunding() bool {
	return o.ServiceID == nil
}

// WasPaid reports whether money actually reached us for this order.
func (o *Order) WasPaid() bool {
	return o.PaymentMethod == PaymentWallet || o.PaymentVerifiedAt != nil
}

// ComputeTotal prices quantity units at pricePer1k per thousand, rounded to kobo.
func ComputeTotal(quantity int, pricePer1k decimal.Decimal) decimal.Decimal {
	return pricePer1k.Mul(decimal.NewFromInt(int64(quantity))).Div(decimal.NewFromInt(1000)).Round(2)
}
