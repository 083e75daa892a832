package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nazmulhossain/shopdesk-backend/pkg/enums"
)

// Transaction is one income/expense entry in the per-brand financial ledger.
type Transaction struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type      enums.TransactionType `gorm:"column:type;type:text;not null"`
	Amount    decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	Brand     string                `gorm:"column:brand;not null"`
	Note      *string               `gorm:"column:note"`
	OrderID   *uuid.UUID            `gorm:"column:order_id;type:uuid"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}
