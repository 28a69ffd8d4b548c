package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is a purchasable boosting package (followers, likes, views...).
type Service struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"column:name;size:255;not null" json:"name"`
	Platform    string          `gorm:"column:platform;size:50;index" json:"platform"`
	PricePer1k  decimal.Decimal `gorm:"column:price_per_1k;type:decimal(20,2);not null" json:"price_per_1k"`
	MinQuantity int             `gorm:"column:min_quantity;default:100" json:"min_quantity"`
	MaxQuantity int             `gorm:"column:max_quantity;default:100000" json:"max_quantity"`
	Active      bool            `gorm:"column:active;default:true" json:"active"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Service) TableName() string {
	return "services"
}
