package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nazmulhossain/shopdesk-backend/pkg/brands"
	"github.com/nazmulhossain/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	transactions := `
CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  brand TEXT NOT NULL,
  note TEXT,
  order_id TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(transactions).Error)
	return db
}

func testLedgerService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	registry, err := brands.NewRegistry([]string{"aranya"})
	require.NoError(t, err)
	svc, err := NewService(NewRepository(db), registry)
	require.NoError(t, err)
	return svc
}

func TestRecordAndBalance(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := testLedgerService(t, db)
	ctx := context.Background()

	_, err := svc.Record(ctx, EntryInput{Type: enums.TransactionTypeIncome, Amount: decimal.NewFromInt(500), Brand: "aranya"})
	require.NoError(t, err)
	_, err = svc.Record(ctx, EntryInput{Type: enums.TransactionTypeIncome, Amount: decimal.NewFromInt(250), Brand: "aranya"})
	require.NoError(t, err)
	_, err = svc.Record(ctx, EntryInput{Type: enums.TransactionTypeExpense, Amount: decimal.NewFromInt(100), Brand: "aranya"})
	require.NoError(t, err)

	balance, err := svc.BalanceFor(ctx, "aranya")
	require.NoError(t, err)
	assert.True(t, balance.Income.Equal(decimal.NewFromInt(750)))
	assert.True(t, balance.Expense.Equal(decimal.NewFromInt(100)))
	assert.True(t, balance.Net.Equal(decimal.NewFromInt(650)))
}

func TestRecordValidation(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := testLedgerService(t, db)
	ctx := context.Background()

	cases := map[string]EntryInput{
		"bad type":        {Type: "loan", Amount: decimal.NewFromInt(10), Brand: "aranya"},
		"negative amount": {Type: enums.TransactionTypeIncome, Amount: decimal.NewFromInt(-10), Brand: "aranya"},
		"unknown brand":   {Type: enums.TransactionTypeIncome, Amount: decimal.NewFromInt(10), Brand: "ghost"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Record(ctx, input)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestBalanceEmptyBrandIsZero(t *testing.T) {
	db := setupLedgerTestDB(t)
	registry, err := brands.NewRegistry([]string{"aranya", "fresh"})
	require.NoError(t, err)
	svc, err := NewService(NewRepository(db), registry)
	require.NoError(t, err)

	balance, err := svc.BalanceFor(context.Background(), "fresh")
	require.NoError(t, err)
	assert.True(t, balance.Net.IsZero())
}
