package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleSubAdmin   Role = "sub_admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) IsAdmin() bool {
	return r == RoleSubAdmin || r == RoleSuperAdmin
}

// User owns exactly one wallet. WalletBalance is only ever written by the ledger.
type User struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Email         string          `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	FullName      string          `gorm:"column:full_name;size:255" json:"full_name"`
	Phone         string          `gorm:"column:phone;size:32" json:"phone"`
	Role          Role            `gorm:"column:role;size:20;not null;default:user" json:"role"`
	WalletBalance decimal.Decimal `gorm:"column:wallet_balance;type:decimal(20,2);not null;default:0" json:"wallet_balance"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
