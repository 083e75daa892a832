package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nazmulhossain/shopdesk-backend/pkg/enums"
)

// Order snapshots the priced item set plus payment and courier state.
// Subtotal, totals, due amount, and payment status are derived by the pricing
// calculator; nothing else writes them.
type Order struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber    string               `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID     uuid.UUID            `gorm:"column:customer_id;type:uuid;not null"`
	Customer       *Customer            `gorm:"foreignKey:CustomerID"`
	Items          []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal       decimal.Decimal      `gorm:"column:subtotal;type:numeric(12,2);not null"`
	CourierCharge  decimal.Decimal      `gorm:"column:courier_charge;type:numeric(12,2);not null"`
	TotalAmount    decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PaidAmount     decimal.Decimal      `gorm:"column:paid_amount;type:numeric(12,2);not null"`
	DueAmount      decimal.Decimal      `gorm:"column:due_amount;type:numeric(12,2);not null"`
	PaymentStatus  enums.PaymentStatus  `gorm:"column:payment_status;type:text;not null;default:'due'"`
	DeliveryMethod enums.DeliveryMethod `gorm:"column:delivery_method;type:text;not null"`
	Status         enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	Brand          string               `gorm:"column:brand;not null"`
	Notes          *string              `gorm:"column:notes"`

	// Courier fields are set once the order has been handed to the bridge.
	ConsignmentID    *string          `gorm:"column:consignment_id;uniqueIndex"`
	CourierStatus    *string          `gorm:"column:courier_status"`
	CourierUpdatedAt *time.Time       `gorm:"column:courier_updated_at"`
	DeliveryFee      *decimal.Decimal `gorm:"column:delivery_fee;type:numeric(12,2)"`
	TrackingURL      *string          `gorm:"column:tracking_url"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// Sent reports whether the order has already been handed to the courier.
func (o *Order) Sent() bool {
	return o != nil && o.ConsignmentID != nil && *o.ConsignmentID != ""
}
