package orders

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ishos/storefront/pkg/db/models"
	"github.com/ishos/storefront/pkg/enums"
	"github.com/ishos/storefront/pkg/migrate"
	"github.com/ishos/storefront/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migrate.RunEmbedded(context.Background(), sqlDB, "sqlite", "up"))
	return conn
}

func seedOrder(t *testing.T, db *gorm.DB, createdAt time.Time, status enums.OrderStatus) models.OrderRecord {
	t.Helper()
	size := "Grande"
	rec := models.OrderRecord{
		ID:            uuid.New(),
		SessionID:     "sess-1",
		CustomerName:  "Ana",
		CustomerPhone: "7000-1234",
		OrderType:     enums.OrderTypePickup,
		Status:        status,
		Items: []models.OrderItem{{
			ItemID:       "cart_1",
			ProductID:    "gelato-pistacho",
			ProductName:  "Pistacho",
			Quantity:     2,
			SelectedSize: &size,
			UnitPrice:    decimal.RequireFromString("7.50"),
			Subtotal:     decimal.RequireFromString("15.00"),
		}},
		Subtotal:       decimal.RequireFromString("15.00"),
		Tax:            decimal.RequireFromString("1.95"),
		Total:          decimal.RequireFromString("16.95"),
		CurrencySymbol: "$",
		CreatedAt:      createdAt.UTC(),
		UpdatedAt:      createdAt.UTC(),
	}
	require.NoError(t, NewRepository(db).Create(context.Background(), &rec))
	return rec
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	seeded := seedOrder(t, db, time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC), enums.OrderStatusPending)

	got, err := repo.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.CustomerName)
	assert.Equal(t, enums.OrderStatusPending, got.Status)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("16.95")))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Pistacho", got.Items[0].ProductName)
	require.NotNil(t, got.Items[0].SelectedSize)
	assert.Equal(t, "Grande", *got.Items[0].SelectedSize)
	assert.Nil(t, got.CustomerEmail)

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	base := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	oldest := seedOrder(t, db, base, enums.OrderStatusPending)
	middle := seedOrder(t, db, base.Add(time.Hour), enums.OrderStatusConfirmed)
	newest := seedOrder(t, db, base.Add(2*time.Hour), enums.OrderStatusPending)

	first, next, err := repo.List(context.Background(), pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, newest.ID, first[0].ID)
	assert.Equal(t, middle.ID, first[1].ID)
	require.NotEmpty(t, next)

	second, next, err := repo.List(context.Background(), pagination.Params{Limit: 2, Cursor: next}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, oldest.ID, second[0].ID)
	assert.Empty(t, next)

	pending, _, err := repo.List(context.Background(), pagination.Params{}, ListFilters{Status: enums.OrderStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestRepositoryUpdateStatusIsConditional(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	rec := seedOrder(t, db, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), enums.OrderStatusPending)
	ctx := context.Background()

	ok, err := repo.UpdateStatus(ctx, rec.ID, enums.OrderStatusPending, enums.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateStatus(ctx, rec.ID, enums.OrderStatusPending, enums.OrderStatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok, "stale from-status must not update")

	got, err := repo.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, got.Status)
}

func TestRepositoryFindPendingBefore(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	base := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	stale := seedOrder(t, db, base, enums.OrderStatusPending)
	seedOrder(t, db, base.Add(-time.Hour), enums.OrderStatusConfirmed)
	seedOrder(t, db, base.Add(3*time.Hour), enums.OrderStatusPending)

	rows, err := repo.FindPendingBefore(context.Background(), base.Add(time.Hour), 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, stale.ID, rows[0].ID)
}
