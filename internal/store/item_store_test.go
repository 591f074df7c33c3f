package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/everything/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestItemStoreCreate(t *testing.T) {
	items := NewItemStore(openTestDB(t))
	ctx := context.Background()

	expiry := at(24 * time.Hour)
	item, err := items.Create(ctx, &domain.Item{
		Name: " Chips ", Category: domain.CategorySnacks, Quantity: 1, Unit: domain.UnitBags,
		Location: "pantry", MinQuantity: ptr(2.0), Notes: "salted", ExpiryDate: &expiry,
	})
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, "Chips", item.Name)
	assert.Equal(t, domain.CategorySnacks, item.Category)
	require.NotNil(t, item.MinQuantity)
	assert.Equal(t, 2.0, *item.MinQuantity)
	require.NotNil(t, item.ExpiryDate)
	assert.True(t, item.ExpiryDate.Equal(expiry))
	assert.True(t, item.NeedsRestock)
}

func TestItemStoreGetByName(t *testing.T) {
	items := NewItemStore(openTestDB(t))
	ctx := context.Background()

	created, err := items.Create(ctx, &domain.Item{Name: "Oat Milk", Category: domain.CategoryGroceries, Quantity: 1, Unit: domain.UnitBottles})
	require.NoError(t, err)

	got, err := items.GetByName(ctx, "  oat MILK ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	missing, err := items.GetByName(ctx, "butter")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestItemStoreListFilters(t *testing.T) {
	items := NewItemStore(openTestDB(t))
	ctx := context.Background()

	_, err := items.Create(ctx, &domain.Item{Name: "Pretzels", Category: domain.CategorySnacks, Quantity: 5, Unit: domain.UnitBags, MinQuantity: ptr(1.0)})
	require.NoError(t, err)
	_, err = items.Create(ctx, &domain.Item{Name: "Chips", Category: domain.CategorySnacks, Quantity: 0, Unit: domain.UnitBags, MinQuantity: ptr(1.0)})
	require.NoError(t, err)
	_, err = items.Create(ctx, &domain.Item{Name: "Soap", Category: domain.CategoryHousehold, Quantity: 0, Unit: domain.UnitPieces})
	require.NoError(t, err)

	all, err := items.List(ctx, ItemFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Chips", all[0].Name, "alphabetical")

	snacks, err := items.List(ctx, ItemFilter{Category: domain.CategorySnacks})
	require.NoError(t, err)
	assert.Len(t, snacks, 2)

	restock, err := items.List(ctx, ItemFilter{NeedsRestock: ptr(true)})
	require.NoError(t, err)
	require.Len(t, restock, 1)
	assert.Equal(t, "Chips", restock[0].Name)

	fine, err := items.List(ctx, ItemFilter{NeedsRestock: ptr(false)})
	require.NoError(t, err)
	assert.Len(t, fine, 2, "items without a minimum never need restock")

	low, err := items.ListLowStock(ctx)
	require.NoError(t, err)
	assert.Len(t, low, 1)

	cats, err := items.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.ItemCategory{domain.CategoryHousehold, domain.CategorySnacks}, cats)
}

func TestItemStoreListSnacksSkipsExpired(t *testing.T) {
	items := NewItemStore(openTestDB(t))
	ctx := context.Background()

	old := at(-48 * time.Hour)
	fresh := at(48 * time.Hour)
	_, err := items.Create(ctx, &domain.Item{Name: "Stale Crackers", Category: domain.CategorySnacks, Unit: domain.UnitBoxes, ExpiryDate: &old})
	require.NoError(t, err)
	_, err = items.Create(ctx, &domain.Item{Name: "Pretzels", Category: domain.CategorySnacks, Unit: domain.UnitBags, ExpiryDate: &fresh})
	require.NoError(t, err)
	_, err = items.Create(ctx, &domain.Item{Name: "Chips", Category: domain.CategorySnacks, Unit: domain.UnitBags})
	require.NoError(t, err)

	snacks, err := items.ListSnacks(ctx, at(0))
	require.NoError(t, err)
	require.Len(t, snacks, 2)
	assert.Equal(t, "Chips", snacks[0].Name)
	assert.Equal(t, "Pretzels", snacks[1].Name)
}

func TestItemStoreUpdateAndDelete(t *testing.T) {
	items := NewItemStore(openTestDB(t))
	ctx := context.Background()

	item, err := items.Create(ctx, &domain.Item{Name: "Rice", Category: domain.CategoryGroceries, Quantity: 1, Unit: domain.UnitPounds})
	require.NoError(t, err)

	item.Quantity = 4
	item.Notes = "basmati"
	require.NoError(t, items.Update(ctx, item))

	got, err := items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.Quantity)
	assert.Equal(t, "basmati", got.Notes)

	require.NoError(t, items.Delete(ctx, item.ID))
	got, err = items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, items.Delete(ctx, item.ID), domain.ErrNotFound)
	assert.ErrorIs(t, items.Update(ctx, item), domain.ErrNotFound)
}
