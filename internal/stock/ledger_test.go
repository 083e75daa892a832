package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nazmulhossain/shopdesk-backend/pkg/db/models"
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
)

func setupStockTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:stock_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL,
  title TEXT NOT NULL,
  buy_price NUMERIC NOT NULL DEFAULT 0,
  sell_price NUMERIC NOT NULL DEFAULT 0,
  stock INTEGER NOT NULL DEFAULT 0,
  sales_count INTEGER NOT NULL DEFAULT 0,
  brand TEXT NOT NULL,
  tags TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  deleted_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	return db
}

func newProduct(t *testing.T, db *gorm.DB, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:    uuid.New(),
		SKU:   "SKU-" + uuid.NewString(),
		Title: "Test Product",
		Brand: "aranya",
		Stock: stock,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func loadProduct(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Product {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	return &product
}

func TestApplyDeltaDebitsStock(t *testing.T) {
	db := setupStockTestDB(t)
	ledger := NewLedger(db, nil)
	product := newProduct(t, db, 10)

	require.NoError(t, ledger.ApplyDelta(context.Background(), Delta{ProductID: product.ID, Quantity: -3}))

	got := loadProduct(t, db, product.ID)
	assert.Equal(t, 7, got.Stock)
	assert.Equal(t, 3, got.SalesCount)
}

func TestApplyDeltaRestoreUnwindsSalesCount(t *testing.T) {
	db := setupStockTestDB(t)
	ledger := NewLedger(db, nil)
	product := newProduct(t, db, 10)
	ctx := context.Background()

	require.NoError(t, ledger.ApplyDelta(ctx, Delta{ProductID: product.ID, Quantity: -4}))
	require.NoError(t, ledger.ApplyDelta(ctx, Delta{ProductID: product.ID, Quantity: 4}))

	got := loadProduct(t, db, product.ID)
	assert.Equal(t, 10, got.Stock)
	assert.Equal(t, 0, got.SalesCount)
}

func TestApplyDeltaRejectsOversell(t *testing.T) {
	db := setupStockTestDB(t)
	ledger := NewLedger(db, nil)
	product := newProduct(t, db, 2)

	err := ledger.ApplyDelta(context.Background(), Delta{ProductID: product.ID, Quantity: -3})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, appErr.Code())

	details, ok := appErr.Details().(InsufficientStockDetails)
	require.True(t, ok)
	assert.Equal(t, 3, details.Requested)
	assert.Equal(t, 2, details.Available)

	got := loadProduct(t, db, product.ID)
	assert.Equal(t, 2, got.Stock)
	assert.Equal(t, 0, got.SalesCount)
}

func TestApplyDeltaUnknownProduct(t *testing.T) {
	db := setupStockTestDB(t)
	ledger := NewLedger(db, nil)

	err := ledger.ApplyDelta(context.Background(), Delta{ProductID: uuid.New(), Quantity: -1})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestApplyBatchCompensatesOnFailure(t *testing.T) {
	db := setupStockTestDB(t)
	ledger := NewLedger(db, nil)
	ctx := context.Background()

	first := newProduct(t, db, 5)
	second := newProduct(t, db, 1)

	err := ledger.ApplyBatch(ctx, []Delta{
		{ProductID: first.ID, Quantity: -2},
		{ProductID: second.ID, Quantity: -3},
	})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, appErr.Code())

	gotFirst := loadProduct(t, db, first.ID)
	assert.Equal(t, 5, gotFirst.Stock)
	assert.Equal(t, 0, gotFirst.SalesCount)

	gotSecond := loadProduct(t, db, second.ID)
	assert.Equal(t, 1, gotSecond.Stock)
}

func TestApplyBatchAllOrNothingSuccess(t *testing.T) {
	db := setupStockTestDB(t)
	ledger := NewLedger(db, nil)
	ctx := context.Background()

	first := newProduct(t, db, 5)
	second := newProduct(t, db, 5)

	require.NoError(t, ledger.ApplyBatch(ctx, []Delta{
		{ProductID: first.ID, Quantity: -2},
		{ProductID: second.ID, Quantity: -1},
	}))

	assert.Equal(t, 3, loadProduct(t, db, first.ID).Stock)
	assert.Equal(t, 4, loadProduct(t, db, second.ID).Stock)
}

func TestApplyDeltaZeroIsNoop(t *testing.T) {
	db := setupStockTestDB(t)
	ledger := NewLedger(db, nil)
	product := newProduct(t, db, 5)

	require.NoError(t, ledger.ApplyDelta(context.Background(), Delta{ProductID: product.ID}))
	assert.Equal(t, 5, loadProduct(t, db, product.ID).Stock)
}
