package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the canonical catalog entry. Stock and sales_count are mutated
// only through the stock ledger, never written directly by order logic.
type Product struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU        string          `gorm:"column:sku;not null;uniqueIndex"`
	Title      string          `gorm:"column:title;not null"`
	BuyPrice   decimal.Decimal `gorm:"column:buy_price;type:numeric(12,2);not null"`
	SellPrice  decimal.Decimal `gorm:"column:sell_price;type:numeric(12,2);not null"`
	Stock      int             `gorm:"column:stock;not null;default:0"`
	SalesCount int             `gorm:"column:sales_count;not null;default:0"`
	Brand      string          `gorm:"column:brand;not null"`
	Tags       pq.StringArray  `gorm:"column:tags;type:text[]"`
	IsActive   bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt  gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}
