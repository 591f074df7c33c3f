package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/everything/internal/domain"
	"github.com/vbonduro/everything/internal/store"
)

func newTestInventoryService(t *testing.T) *InventoryService {
	t.Helper()
	svc := NewInventoryService(store.NewItemStore(openTestDB(t)), testLogger())
	svc.now = fixedClock
	return svc
}

func TestInventoryServiceUpsertReplacesByName(t *testing.T) {
	svc := newTestInventoryService(t)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, &domain.Item{Name: "Chips", Category: domain.CategorySnacks, Quantity: 2, Unit: domain.UnitBags})
	require.NoError(t, err)

	second, err := svc.Upsert(ctx, &domain.Item{Name: "  chips ", Category: domain.CategorySnacks, Quantity: 5, Unit: domain.UnitBags})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5.0, second.Quantity)

	all, err := svc.List(ctx, store.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInventoryServiceUpsertRejectsPastExpiry(t *testing.T) {
	svc := newTestInventoryService(t)

	past := testNow.Add(-24 * time.Hour)
	_, err := svc.Upsert(context.Background(), &domain.Item{
		Name: "Yogurt", Category: domain.CategoryGroceries, Quantity: 1, Unit: domain.UnitPieces, ExpiryDate: &past,
	})
	assert.True(t, domain.IsValidation(err))
}

func TestInventoryServiceAddStock(t *testing.T) {
	svc := newTestInventoryService(t)
	ctx := context.Background()

	created, err := svc.AddStock(ctx, "Whole Milk", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryGroceries, created.Category)
	assert.Equal(t, domain.UnitPieces, created.Unit)

	added, err := svc.AddStock(ctx, "whole milk", 2)
	require.NoError(t, err)
	assert.Equal(t, created.ID, added.ID)
	assert.Equal(t, 3.0, added.Quantity)
}

func TestInventoryServiceLowStockAndSnacks(t *testing.T) {
	svc := newTestInventoryService(t)
	ctx := context.Background()

	minQty := 2.0
	_, err := svc.Create(ctx, &domain.Item{Name: "Soap", Category: domain.CategoryHousehold, Quantity: 1, Unit: domain.UnitPieces, MinQuantity: &minQty})
	require.NoError(t, err)
	expired := testNow.Add(-time.Hour)
	_, err = svc.Create(ctx, &domain.Item{Name: "Old Cookies", Category: domain.CategorySnacks, Quantity: 1, Unit: domain.UnitBoxes, ExpiryDate: &expired})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &domain.Item{Name: "Pretzels", Category: domain.CategorySnacks, Quantity: 3, Unit: domain.UnitBags})
	require.NoError(t, err)

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Soap", low[0].Name)
	assert.True(t, low[0].NeedsRestock)

	snacks, err := svc.Snacks(ctx)
	require.NoError(t, err)
	require.Len(t, snacks, 1)
	assert.Equal(t, "Pretzels", snacks[0].Name)

	_, err = svc.List(ctx, store.ItemFilter{Category: "toys"})
	assert.True(t, domain.IsValidation(err))
}

func TestInventoryServiceGetMissing(t *testing.T) {
	svc := newTestInventoryService(t)

	_, err := svc.Get(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), 7), domain.ErrNotFound)
}
