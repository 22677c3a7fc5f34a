package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/storefront/internal/domain"
)

// setupTestRedis creates a miniredis server and a store on top of it
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, 30*time.Minute), mr
}

func testWizard() *domain.Wizard {
	return domain.NewWizard("wiz-1", "owner-1", domain.Cart{Items: []domain.CartItem{
		{ProductID: "p1", Name: "Runner", Price: decimal.NewFromInt(40), Quantity: 1},
	}})
}

func TestWizard_SaveAndGet(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	w := testWizard()
	w.Delivery.FirstName = "Jane"
	require.NoError(t, store.SaveWizard(ctx, w))
	assert.True(t, mr.Exists("checkout:wiz-1"))
	assert.Equal(t, 30*time.Minute, mr.TTL("checkout:wiz-1"))

	got, err := store.GetWizard(ctx, "wiz-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", got.Owner)
	assert.Equal(t, domain.StepDelivery, got.Step)
	assert.Equal(t, "Jane", got.Delivery.FirstName)
	require.Len(t, got.Cart.Items, 1)
	assert.True(t, decimal.NewFromInt(40).Equal(got.Cart.Items[0].Price))
}

func TestWizard_Miss(t *testing.T) {
	store, _ := setupTestRedis(t)

	got, err := store.GetWizard(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestWizard_Expires(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.SaveWizard(ctx, testWizard()))
	mr.FastForward(31 * time.Minute)

	_, err := store.GetWizard(ctx, "wiz-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestWizard_InvalidJSON(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("checkout:bad", "{not json"))

	_, err := store.GetWizard(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestWizard_Delete(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.SaveWizard(ctx, testWizard()))
	require.NoError(t, store.DeleteWizard(ctx, "wiz-1"))
	assert.False(t, mr.Exists("checkout:wiz-1"))
}

func TestSubmitLock(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	ok, err := store.AcquireSubmitLock(ctx, "wiz-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.AcquireSubmitLock(ctx, "wiz-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.ReleaseSubmitLock(ctx, "wiz-1"))
	ok, err = store.AcquireSubmitLock(ctx, "wiz-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = store.AcquireSubmitLock(ctx, "wiz-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDesignSession_SaveAndGet(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	red := "red"
	s := &domain.DesignSession{
		ID:      "d-1",
		Owner:   "owner-1",
		History: domain.NewDesignHistory(domain.Design{BaseModel: "air-runner", Material: domain.MaterialCanvas}, 0),
	}
	s.History.Apply(domain.DesignChange{Upper: &red})
	require.NoError(t, store.SaveDesignSession(ctx, s))

	got, err := store.GetDesignSession(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, "red", got.History.Current.Colors.Upper)
	assert.True(t, got.History.CanUndo())

	_, err = store.GetDesignSession(ctx, "other")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
