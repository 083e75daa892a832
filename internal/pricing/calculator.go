package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nazmulhossain/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
)

// LineItem is one requested product line, already resolved to a unit price.
type LineItem struct {
	ProductID uuid.UUID
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// LineTotal returns quantity times unit price.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals is the derived money snapshot for an order.
type Totals struct {
	Subtotal      decimal.Decimal
	CourierCharge decimal.Decimal
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
	DueAmount     decimal.Decimal
	PaymentStatus enums.PaymentStatus
}

// ComputeTotals derives subtotal, total, due amount, and payment status from
// the item set. Payment status is a pure function of paid vs total: paid when
// paidAmount covers the total, partial when something but not everything has
// been paid, due when nothing has.
func ComputeTotals(items []LineItem, courierCharge, paidAmount decimal.Decimal) (*Totals, error) {
	if courierCharge.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier charge cannot be negative")
	}
	if paidAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paid amount cannot be negative")
	}

	subtotal := decimal.Zero
	for i, item := range items {
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: quantity must be at least 1", i))
		}
		if item.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: unit price cannot be negative", i))
		}
		subtotal = subtotal.Add(item.LineTotal())
	}

	total := subtotal.Add(courierCharge)
	due := total.Sub(paidAmount)
	if due.IsNegative() {
		due = decimal.Zero
	}

	return &Totals{
		Subtotal:      subtotal,
		CourierCharge: courierCharge,
		TotalAmount:   total,
		PaidAmount:    paidAmount,
		DueAmount:     due,
		PaymentStatus: DerivePaymentStatus(paidAmount, total),
	}, nil
}

// DerivePaymentStatus applies the three-way payment rule.
func DerivePaymentStatus(paidAmount, totalAmount decimal.Decimal) enums.PaymentStatus {
	switch {
	case paidAmount.GreaterThanOrEqual(totalAmount):
		return enums.PaymentStatusPaid
	case paidAmount.IsPositive():
		return enums.PaymentStatusPartial
	default:
		return enums.PaymentStatusDue
	}
}
