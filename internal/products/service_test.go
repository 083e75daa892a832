package products

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
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
	"github.com/nazmulhossain/shopdesk-backend/pkg/pagination"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
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

func testCatalogService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	registry, err := brands.NewRegistry([]string{"aranya", "nilkamal"})
	require.NoError(t, err)
	svc, err := NewService(NewRepository(db), registry, nil)
	require.NoError(t, err)
	return svc
}

func TestCreateProduct(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := testCatalogService(t, db)

	created, err := svc.Create(context.Background(), nil, CreateInput{
		SKU:          "AR-TSHIRT-001",
		Title:        "Block Print T-Shirt",
		BuyPrice:     decimal.NewFromInt(180),
		SellPrice:    decimal.NewFromInt(350),
		InitialStock: 12,
		Brand:        "aranya",
		IsActive:     true,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 12, created.Stock)
	assert.Equal(t, 0, created.SalesCount)
}

func TestCreateProductRejectsDuplicateSKU(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := testCatalogService(t, db)
	ctx := context.Background()

	input := CreateInput{
		SKU:       "AR-SAREE-002",
		Title:     "Jamdani Saree",
		SellPrice: decimal.NewFromInt(4500),
		Brand:     "aranya",
		IsActive:  true,
	}
	_, err := svc.Create(ctx, nil, input)
	require.NoError(t, err)

	_, err = svc.Create(ctx, nil, input)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestCreateProductValidation(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := testCatalogService(t, db)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"missing sku", CreateInput{Title: "x", Brand: "aranya"}},
		{"missing title", CreateInput{SKU: "SK-1", Brand: "aranya"}},
		{"negative price", CreateInput{SKU: "SK-2", Title: "x", Brand: "aranya", SellPrice: decimal.NewFromInt(-1)}},
		{"negative stock", CreateInput{SKU: "SK-3", Title: "x", Brand: "aranya", InitialStock: -1}},
		{"unknown brand", CreateInput{SKU: "SK-4", Title: "x", Brand: "nope"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, nil, tc.input)
			require.Error(t, err)
			appErr := pkgerrors.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
		})
	}
}

func TestUpdateProductDoesNotTouchStock(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := testCatalogService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, nil, CreateInput{
		SKU:          "NK-CHAIR-009",
		Title:        "Folding Chair",
		SellPrice:    decimal.NewFromInt(1200),
		InitialStock: 7,
		Brand:        "nilkamal",
		IsActive:     true,
	})
	require.NoError(t, err)

	title := "Folding Chair v2"
	price := decimal.NewFromInt(1350)
	updated, err := svc.Update(ctx, nil, created.ID, UpdateInput{
		Title:     &title,
		SellPrice: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "Folding Chair v2", updated.Title)
	assert.True(t, updated.SellPrice.Equal(price))
	assert.Equal(t, 7, updated.Stock)
}

func TestDeleteProductHidesFromLookup(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := testCatalogService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, nil, CreateInput{
		SKU:      "AR-SCARF-011",
		Title:    "Silk Scarf",
		Brand:    "aranya",
		IsActive: true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, nil, created.ID))

	_, err = svc.Get(ctx, created.ID)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())

	err = svc.Delete(ctx, nil, created.ID)
	require.Error(t, err)
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestListProductsFiltersByBrand(t *testing.T) {
	db := setupProductsTestDB(t)
	svc := testCatalogService(t, db)
	ctx := context.Background()

	_, err := svc.Create(ctx, nil, CreateInput{SKU: "AR-LIST-1", Title: "Kurti", Brand: "aranya", IsActive: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, nil, CreateInput{SKU: "NK-LIST-1", Title: "Table", Brand: "nilkamal", IsActive: true})
	require.NoError(t, err)

	result, err := svc.List(ctx, ListInput{Brand: "nilkamal", Pagination: pagination.Params{Limit: 10}})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "NK-LIST-1", result.Products[0].SKU)
}
