package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSaleTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&sale.Sale{}, &sale.SaleItem{}))
	return db
}

func mustSale(t *testing.T, number int64, day int, isReturn bool) *sale.Sale {
	t.Helper()
	totals, err := sale.Calculate([]sale.LineInput{
		{ProductID: uuid.New(), Label: "Soap", Quantity: 2, UnitPrice: testDec("30.00"), TaxPercent: testDec("5")},
	}, decimal.Zero)
	require.NoError(t, err)

	s, err := sale.NewSale(number, nil, time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		sale.PaymentCash, totals.Signed(isReturn).Total, isReturn, totals.Signed(isReturn), nil)
	require.NoError(t, err)
	return s
}

func TestGormSaleRepository_NextNumber(t *testing.T) {
	db := setupSaleTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	t.Run("starts at one on an empty table", func(t *testing.T) {
		next, err := repo.NextNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), next)
	})

	t.Run("continues past the highest number", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, mustSale(t, 1, 1, false)))
		require.NoError(t, repo.Save(ctx, mustSale(t, 7, 2, true)))

		next, err := repo.NextNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(8), next)
	})
}

func TestGormSaleRepository_SaveAndFind(t *testing.T) {
	db := setupSaleTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	posted := mustSale(t, 3, 1, false)
	require.NoError(t, repo.Save(ctx, posted))

	t.Run("finds by ID with items preloaded", func(t *testing.T) {
		found, err := repo.FindByID(ctx, posted.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, int64(3), found.Number)
		require.Len(t, found.Items, 1)
		assert.Equal(t, int64(2), found.Items[0].Quantity)
	})

	t.Run("finds by number", func(t *testing.T) {
		found, err := repo.FindByNumber(ctx, 3)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, posted.ID, found.ID)
	})

	t.Run("returns nil for unknown sale", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)

		found, err = repo.FindByNumber(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestGormSaleRepository_FindByDateRange(t *testing.T) {
	db := setupSaleTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, mustSale(t, 2, 10, false)))
	require.NoError(t, repo.Save(ctx, mustSale(t, 1, 5, false)))
	require.NoError(t, repo.Save(ctx, mustSale(t, 3, 25, false)))

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	sales, err := repo.FindByDateRange(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, int64(1), sales[0].Number)
	assert.Equal(t, int64(2), sales[1].Number)
}

func TestGormSaleRepository_DeleteItems(t *testing.T) {
	db := setupSaleTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	posted := mustSale(t, 4, 1, false)
	require.NoError(t, repo.Save(ctx, posted))

	require.NoError(t, repo.DeleteItems(ctx, posted.ID))

	found, err := repo.FindByID(ctx, posted.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Empty(t, found.Items)
}
