// Package storetest holds the behaviour every session store backend must
// share.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/safar/supershop/internal/models"
	"github.com/safar/supershop/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Order builds a mirrored order created at base plus offset minutes.
func Order(userID int64, id string, base time.Time, offset int) models.LocalOrder {
	return models.LocalOrder{
		ID:     id,
		UserID: userID,
		Total:  decimal.RequireFromString("10.80"),
		Items: []models.LocalOrderItem{
			{ID: 1, Name: "Green Tea", Price: decimal.NewFromInt(10), Quantity: 1},
		},
		ShippingAddress: models.ShippingAddress{FirstName: "Rahim", City: "Dhaka"},
		PaymentMethod:   models.PaymentCash,
		Status:          models.OrderStatusCompleted,
		CreatedAt:       models.NewTimestamp(base.Add(time.Duration(offset) * time.Minute)),
	}
}

// Run exercises b against the KV and mirror contracts. b must start empty.
func Run(t *testing.T, b store.Backend) {
	t.Helper()

	t.Run("KV", func(t *testing.T) { testKV(t, b) })
	t.Run("Mirror", func(t *testing.T) { testMirror(t, b) })
}

func testKV(t *testing.T, b store.Backend) {
	ctx := context.Background()

	_, err := b.Get(ctx, store.KeyToken)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, b.Put(ctx, store.KeyToken, "demo-token"))
	require.NoError(t, b.Put(ctx, store.KeyUser, `{"user_id":1}`))

	got, err := b.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "demo-token", got)

	require.NoError(t, b.Put(ctx, store.KeyToken, "token-1"))
	got, err = b.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "token-1", got, "put must overwrite")

	require.NoError(t, b.Delete(ctx, store.KeyToken, store.KeyUser, "never-set"))
	_, err = b.Get(ctx, store.KeyUser)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testMirror(t *testing.T, b store.Backend) {
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, b.AppendOrder(ctx, Order(7, fmt.Sprintf("17000000000%02d", i), base, i)))
	}
	require.NoError(t, b.AppendOrder(ctx, Order(8, "1800000000000", base, 10)))

	err := b.AppendOrder(ctx, Order(7, "1700000000000", base, 0))
	assert.ErrorIs(t, err, store.ErrDuplicateOrder)

	first, err := b.ListOrders(ctx, 7, "", 2)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.True(t, first.HasMore)
	assert.Equal(t, "1700000000004", first.Items[0].ID, "newest first")
	assert.Equal(t, "1700000000003", first.Items[1].ID)

	second, err := b.ListOrders(ctx, 7, first.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "1700000000002", second.Items[0].ID)

	third, err := b.ListOrders(ctx, 7, second.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, third.Items, 1)
	assert.False(t, third.HasMore)
	assert.Empty(t, third.NextCursor)

	all, err := store.AllOrders(ctx, b, 7)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	for _, o := range all {
		assert.Equal(t, int64(7), o.UserID)
		assert.True(t, o.Total.Equal(decimal.RequireFromString("10.80")))
		assert.Equal(t, "Dhaka", o.ShippingAddress.City)
	}

	empty, err := b.ListOrders(ctx, 99, "", 10)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	_, err = b.ListOrders(ctx, 7, "not-base64!", 10)
	assert.ErrorIs(t, err, store.ErrInvalidCursor)
}
