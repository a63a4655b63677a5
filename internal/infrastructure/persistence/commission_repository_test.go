package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/glowdesk/backend/internal/domain/finance"
	"github.com/glowdesk/backend/internal/domain/shared"
	"github.com/glowdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCommissionTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&finance.Commission{})
	require.NoError(t, err)

	return db
}

func newTestCommission(t *testing.T, tenantID, attendantID, saleID uuid.UUID, base float64, rate int64) *finance.Commission {
	t.Helper()
	commission, err := finance.NewCommission(
		tenantID, attendantID, saleID, uuid.New(), uuid.New(),
		"SA-2026-00001", time.Now(),
		valueobject.NewMoneyUSDFromFloat(base), decimal.NewFromInt(rate),
	)
	require.NoError(t, err)
	return commission
}

func TestGormCommissionRepository_CreateBatch(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewGormCommissionRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	saleID := uuid.New()

	t.Run("persists the batch of one confirmation", func(t *testing.T) {
		batch := []*finance.Commission{
			newTestCommission(t, tenantID, uuid.New(), saleID, 100, 10),
			newTestCommission(t, tenantID, uuid.New(), saleID, 50, 20),
		}
		require.NoError(t, repo.CreateBatch(ctx, batch))

		found, err := repo.FindBySaleID(ctx, tenantID, saleID)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("accepts an empty batch", func(t *testing.T) {
		assert.NoError(t, repo.CreateBatch(ctx, nil))
	})
}

func TestGormCommissionRepository_FindByID(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewGormCommissionRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	commission := newTestCommission(t, tenantID, uuid.New(), uuid.New(), 200, 15)
	require.NoError(t, repo.CreateBatch(ctx, []*finance.Commission{commission}))

	t.Run("finds an existing commission", func(t *testing.T) {
		found, err := repo.FindByID(ctx, tenantID, commission.ID)
		require.NoError(t, err)
		assert.Equal(t, commission.AttendantID, found.AttendantID)
		assert.True(t, found.Amount.Equal(decimal.NewFromInt(30)), "200 at 15%% is 30")
		assert.Equal(t, finance.CommissionStatusActive, found.Status)
	})

	t.Run("returns not found for unknown ID", func(t *testing.T) {
		_, err := repo.FindByID(ctx, tenantID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("does not leak commissions across tenants", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New(), commission.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormCommissionRepository_ExistsForSale(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewGormCommissionRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	saleID := uuid.New()

	exists, err := repo.ExistsForSale(ctx, tenantID, saleID)
	require.NoError(t, err)
	assert.False(t, exists)

	commission := newTestCommission(t, tenantID, uuid.New(), saleID, 100, 10)
	require.NoError(t, repo.CreateBatch(ctx, []*finance.Commission{commission}))

	exists, err = repo.ExistsForSale(ctx, tenantID, saleID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGormCommissionRepository_ReverseBySaleID(t *testing.T) {
	ctx := context.Background()

	t.Run("flips every active entry of the sale", func(t *testing.T) {
		db := setupCommissionTestDB(t)
		repo := NewGormCommissionRepository(db)
		tenantID := uuid.New()
		saleID := uuid.New()

		batch := []*finance.Commission{
			newTestCommission(t, tenantID, uuid.New(), saleID, 100, 10),
			newTestCommission(t, tenantID, uuid.New(), saleID, 50, 20),
		}
		require.NoError(t, repo.CreateBatch(ctx, batch))

		reversed, err := repo.ReverseBySaleID(ctx, tenantID, saleID)
		require.NoError(t, err)
		assert.Equal(t, 2, reversed)

		found, err := repo.FindBySaleID(ctx, tenantID, saleID)
		require.NoError(t, err)
		for _, c := range found {
			assert.Equal(t, finance.CommissionStatusReversed, c.Status)
			assert.NotNil(t, c.ReversedAt)
		}
	})

	t.Run("second reversal flips nothing", func(t *testing.T) {
		db := setupCommissionTestDB(t)
		repo := NewGormCommissionRepository(db)
		tenantID := uuid.New()
		saleID := uuid.New()

		commission := newTestCommission(t, tenantID, uuid.New(), saleID, 100, 10)
		require.NoError(t, repo.CreateBatch(ctx, []*finance.Commission{commission}))

		reversed, err := repo.ReverseBySaleID(ctx, tenantID, saleID)
		require.NoError(t, err)
		assert.Equal(t, 1, reversed)

		reversed, err = repo.ReverseBySaleID(ctx, tenantID, saleID)
		require.NoError(t, err)
		assert.Equal(t, 0, reversed)
	})

	t.Run("does not touch entries of other sales", func(t *testing.T) {
		db := setupCommissionTestDB(t)
		repo := NewGormCommissionRepository(db)
		tenantID := uuid.New()
		saleID := uuid.New()

		mine := newTestCommission(t, tenantID, uuid.New(), saleID, 100, 10)
		other := newTestCommission(t, tenantID, uuid.New(), uuid.New(), 100, 10)
		require.NoError(t, repo.CreateBatch(ctx, []*finance.Commission{mine, other}))

		_, err := repo.ReverseBySaleID(ctx, tenantID, saleID)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, tenantID, other.ID)
		require.NoError(t, err)
		assert.Equal(t, finance.CommissionStatusActive, found.Status)
	})
}

func TestGormCommissionRepository_FindAll(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewGormCommissionRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	attendantID := uuid.New()
	saleID := uuid.New()

	march := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	may := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)

	first, err := finance.NewCommission(
		tenantID, attendantID, saleID, uuid.New(), uuid.New(),
		"SA-2026-00001", march, valueobject.NewMoneyUSDFromFloat(100), decimal.NewFromInt(10),
	)
	require.NoError(t, err)
	second, err := finance.NewCommission(
		tenantID, uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		"SA-2026-00002", may, valueobject.NewMoneyUSDFromFloat(50), decimal.NewFromInt(20),
	)
	require.NoError(t, err)
	require.NoError(t, repo.CreateBatch(ctx, []*finance.Commission{first, second}))
	_, err = repo.ReverseBySaleID(ctx, tenantID, saleID)
	require.NoError(t, err)

	t.Run("returns all commissions with total", func(t *testing.T) {
		found, total, err := repo.FindAll(ctx, tenantID, finance.NewCommissionFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, found, 2)
	})

	t.Run("filters by attendant", func(t *testing.T) {
		found, total, err := repo.FindAll(ctx, tenantID, finance.NewCommissionFilter().WithAttendant(attendantID))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, found, 1)
		assert.Equal(t, first.ID, found[0].ID)
	})

	t.Run("filters by status", func(t *testing.T) {
		found, total, err := repo.FindAll(ctx, tenantID, finance.NewCommissionFilter().WithStatus(finance.CommissionStatusReversed))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, found, 1)
		assert.Equal(t, first.ID, found[0].ID)
	})

	t.Run("filters by reference date range", func(t *testing.T) {
		filter := finance.NewCommissionFilter().WithDateRange(
			time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		)
		found, total, err := repo.FindAll(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, found, 1)
		assert.Equal(t, second.ID, found[0].ID)
	})

	t.Run("orders by reference date descending by default", func(t *testing.T) {
		found, _, err := repo.FindAll(ctx, tenantID, finance.NewCommissionFilter())
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, second.ID, found[0].ID)
	})
}
