package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazmulhossain/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
)

func money(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func sampleItems() []LineItem {
	return []LineItem{
		{ProductID: uuid.New(), Title: "Product A", Quantity: 2, UnitPrice: money(100)},
		{ProductID: uuid.New(), Title: "Product B", Quantity: 1, UnitPrice: money(50)},
	}
}

func TestComputeTotals(t *testing.T) {
	totals, err := ComputeTotals(sampleItems(), money(20), money(0))
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(money(250)))
	assert.True(t, totals.TotalAmount.Equal(money(270)))
	assert.True(t, totals.DueAmount.Equal(money(270)))
	assert.Equal(t, enums.PaymentStatusDue, totals.PaymentStatus)
}

func TestComputeTotalsFullyPaid(t *testing.T) {
	totals, err := ComputeTotals(sampleItems(), money(20), money(270))
	require.NoError(t, err)

	assert.True(t, totals.DueAmount.IsZero())
	assert.Equal(t, enums.PaymentStatusPaid, totals.PaymentStatus)
}

func TestComputeTotalsPartialPayment(t *testing.T) {
	totals, err := ComputeTotals(sampleItems(), money(20), money(100))
	require.NoError(t, err)

	assert.True(t, totals.DueAmount.Equal(money(170)))
	assert.Equal(t, enums.PaymentStatusPartial, totals.PaymentStatus)
}

func TestComputeTotalsOverpaymentClampsDue(t *testing.T) {
	totals, err := ComputeTotals(sampleItems(), money(0), money(1000))
	require.NoError(t, err)

	assert.True(t, totals.DueAmount.IsZero())
	assert.Equal(t, enums.PaymentStatusPaid, totals.PaymentStatus)
}

func TestComputeTotalsRejectsBadItems(t *testing.T) {
	cases := map[string][]LineItem{
		"zero quantity":  {{Quantity: 0, UnitPrice: money(10)}},
		"negative price": {{Quantity: 1, UnitPrice: money(-5)}},
	}
	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ComputeTotals(items, money(0), money(0))
			require.Error(t, err)
			appErr := pkgerrors.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
		})
	}
}

func TestComputeTotalsRejectsNegativeCharges(t *testing.T) {
	_, err := ComputeTotals(sampleItems(), money(-1), money(0))
	require.Error(t, err)

	_, err = ComputeTotals(sampleItems(), money(0), money(-1))
	require.Error(t, err)
}

func TestDerivePaymentStatus(t *testing.T) {
	assert.Equal(t, enums.PaymentStatusDue, DerivePaymentStatus(money(0), money(100)))
	assert.Equal(t, enums.PaymentStatusPartial, DerivePaymentStatus(money(40), money(100)))
	assert.Equal(t, enums.PaymentStatusPaid, DerivePaymentStatus(money(100), money(100)))
	assert.Equal(t, enums.PaymentStatusPaid, DerivePaymentStatus(money(120), money(100)))
}
