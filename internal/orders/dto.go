package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemInput is one requested order line. UnitPrice overrides the catalog
// sell price when set; nil means charge the current sell price.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice *decimal.Decimal
}

// CustomerInput identifies the buyer by phone, creating the record on first
// contact.
type CustomerInput struct {
	Name    string
	Phone   string
	Address string
}

// CreateInput is the validated payload to create an order.
type CreateInput struct {
	Customer       CustomerInput
	Items          []ItemInput
	CourierCharge  decimal.Decimal
	PaidAmount     decimal.Decimal
	DeliveryMethod string
	Brand          string
	Notes          *string
}

// EditInput mutates an existing order. A nil Items leaves the item set and
// stock untouched; an empty non-nil slice releases every line.
type EditInput struct {
	Items          *[]ItemInput
	CourierCharge  *decimal.Decimal
	PaidAmount     *decimal.Decimal
	DeliveryMethod *string
	Notes          *string
}

// ListInput narrows and pages the order listing.
type ListInput struct {
	Brand  string
	Status string
	Limit  int
	Cursor string
}
