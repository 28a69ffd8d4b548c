package models

import (
	"time"
)

// BankAccount is a receiving account customers transfer to. Rows are reference
// data: orders point at them and this service never edits them.
type BankAccount struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BankName      string    `gorm:"column:bank_name;size:150;not null" json:"bank_name"`
	AccountName   string    `gorm:"column:account_name;size:150;not null" json:"account_name"`
	AccountNumber string    `gorm:"column:account_number;size:20;not null" json:"account_number"`
	Currency      string    `gorm:"column:currency;size:10;default:NGN" json:"currency"`
	Active        bool      `gorm:"column:active;default:true" json:"active"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (BankAccount) TableName() string {
	return "bank_accounts"
}
