package cart

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewStore(client), mr
}

func vadaPav() LineItem {
	return LineItem{
		ItemID:   1,
		Name:     "Vada Pav",
		Price:    decimal.NewFromInt(40),
		SellerID: 7,
	}
}

func TestAdd_NewItem(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	c, err := store.Add(ctx, 42, vadaPav())
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Equal(t, uint(1), c.Items[0].ItemID)
}

func TestAdd_SameItemTwice_MergesIntoOneLine(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, 42, vadaPav())
	require.NoError(t, err)
	c, err := store.Add(ctx, 42, vadaPav())
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestChangeQuantity_DecrementToZero_RemovesLine(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, 42, vadaPav())
	require.NoError(t, err)
	_, err = store.Add(ctx, 42, vadaPav())
	require.NoError(t, err)

	c, err := store.ChangeQuantity(ctx, 42, 1, -2)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	// Further changes on the removed id are silent no-ops
	c, err = store.ChangeQuantity(ctx, 42, 1, -1)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestChangeQuantity_AbsentID_IsNoOp(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, 42, vadaPav())
	require.NoError(t, err)

	c, err := store.ChangeQuantity(ctx, 42, 999, 3)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestSnapshot_IsValueCopy(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, 42, vadaPav())
	require.NoError(t, err)

	snap, err := store.Snapshot(ctx, 42)
	require.NoError(t, err)
	require.Len(t, snap, 1)

	// Mutate the live cart after taking the snapshot
	_, err = store.ChangeQuantity(ctx, 42, 1, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, snap[0].Quantity)
}

func TestClear_RemovesSlot(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, 42, vadaPav())
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx, 42))

	assert.False(t, mr.Exists("cart:user:42"))

	c, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestLoad_MalformedPersistedCart_Fails(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	mr.Set("cart:user:42", `{"user_id":42,"items":[{"id":1,"name":"x","price":"10","quantity":0}]}`)

	_, err := store.Get(ctx, 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, 1, vadaPav())
	require.NoError(t, err)

	other, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}
