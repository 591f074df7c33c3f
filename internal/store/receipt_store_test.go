package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/everything/internal/domain"
)

func TestReceiptStoreCreateAndGet(t *testing.T) {
	s := NewReceiptStore(openTestDB(t))
	ctx := context.Background()

	created, err := s.Create(ctx, &domain.Receipt{
		StoreName:    "Corner Shop",
		PurchaseDate: at(0),
		Items: []domain.ReceiptLine{{
			ItemName:   "Milk",
			Quantity:   decimal.NewFromInt(2),
			UnitPrice:  decimal.RequireFromString("1.25"),
			TotalPrice: decimal.RequireFromString("2.50"),
			Category:   "groceries",
		}},
		TotalAmount:   decimal.RequireFromString("2.50"),
		PaymentMethod: "card",
		ImageKey:      "receipts/abc.jpg",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.True(t, created.TotalAmount.Equal(decimal.RequireFromString("2.5")))
	require.Len(t, created.Items, 1)
	assert.Equal(t, "Milk", created.Items[0].ItemName)
	assert.True(t, created.Items[0].UnitPrice.Equal(decimal.RequireFromString("1.25")))
	assert.Equal(t, "receipts/abc.jpg", created.ImageKey)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.StoreName, got.StoreName)
	assert.True(t, got.PurchaseDate.Equal(at(0)))
}

func TestReceiptStoreListFilters(t *testing.T) {
	s := NewReceiptStore(openTestDB(t))
	ctx := context.Background()

	for i, name := range []string{"Corner Shop", "Mega Mart", "corner shop"} {
		_, err := s.Create(ctx, &domain.Receipt{
			StoreName:    name,
			PurchaseDate: at(time.Duration(i) * 24 * time.Hour),
			TotalAmount:  decimal.NewFromInt(int64(10 * (i + 1))),
		})
		require.NoError(t, err)
	}

	all, err := s.List(ctx, ReceiptFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "corner shop", all[0].StoreName, "newest first")

	corner, err := s.List(ctx, ReceiptFilter{StoreName: "CORNER SHOP"})
	require.NoError(t, err)
	assert.Len(t, corner, 2)

	start, end := at(12*time.Hour), at(36*time.Hour)
	ranged, err := s.List(ctx, ReceiptFilter{Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "Mega Mart", ranged[0].StoreName)

	stores, err := s.Stores(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Corner Shop", "Mega Mart", "corner shop"}, stores)
}

func TestReceiptStoreDelete(t *testing.T) {
	s := NewReceiptStore(openTestDB(t))
	ctx := context.Background()

	r, err := s.Create(ctx, &domain.Receipt{StoreName: "Shop", PurchaseDate: at(0)})
	require.NoError(t, err)
	assert.Empty(t, r.Items)

	require.NoError(t, s.Delete(ctx, r.ID))
	got, err := s.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, s.Delete(ctx, r.ID), domain.ErrNotFound)
}
