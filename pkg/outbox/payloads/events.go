package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nazmulhossain/shopdesk-backend/pkg/enums"
)

// OrderCreatedEvent signals a newly placed order with stock already secured.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID           `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	Brand       string              `json:"brand"`
	CustomerID  uuid.UUID           `json:"customer_id"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	DueAmount   decimal.Decimal     `json:"due_amount"`
	ItemCount   int                 `json:"item_count"`
	Payment     enums.PaymentStatus `json:"payment_status"`
}

// OrderUpdatedEvent is emitted after an order edit reprices and restocks.
type OrderUpdatedEvent struct {
	OrderID     uuid.UUID           `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	Brand       string              `json:"brand"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	DueAmount   decimal.Decimal     `json:"due_amount"`
	Payment     enums.PaymentStatus `json:"payment_status"`
}

// OrderSentToCourierEvent records the consignment handoff.
type OrderSentToCourierEvent struct {
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	Brand         string          `json:"brand"`
	ConsignmentID string          `json:"consignment_id"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
}

// OrderStatusChangedEvent reports a lifecycle transition, whether manual or
// driven by courier reconciliation.
type OrderStatusChangedEvent struct {
	OrderID       uuid.UUID         `json:"order_id"`
	OrderNumber   string            `json:"order_number"`
	Brand         string            `json:"brand"`
	From          enums.OrderStatus `json:"from"`
	To            enums.OrderStatus `json:"to"`
	CourierStatus string            `json:"courier_status,omitempty"`
}

// OrderDeliveredEvent is emitted once when a delivery auto-settles payment.
type OrderDeliveredEvent struct {
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	Brand         string          `json:"brand"`
	SettledAmount decimal.Decimal `json:"settled_amount"`
	DeliveredAt   time.Time       `json:"delivered_at"`
}

// OrderCancelledEvent is emitted when an order is cancelled and stock restored.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Brand       string    `json:"brand"`
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelled_at"`
}
