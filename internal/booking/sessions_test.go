package booking

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore(30 * time.Minute)
	ctx := context.Background()

	got, err := store.Get(ctx, 123)
	require.NoError(t, err)
	assert.Nil(t, got, "no session expected before Save")

	session := NewSession(123)
	session.Draft.Date = "2025-03-15"
	require.NoError(t, store.Save(ctx, session))

	got, err = store.Get(ctx, 123)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2025-03-15", got.Draft.Date)

	// Mutating the returned session must not leak into the store.
	got.Draft.Date = "2025-04-01"
	again, err := store.Get(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", again.Draft.Date)

	require.NoError(t, store.Delete(ctx, 123))
	got, err = store.Get(ctx, 123)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	ctx := context.Background()

	session := NewSession(123)
	session.UpdatedAt = time.Now().Add(-2 * time.Minute)
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, 123)
	require.NoError(t, err)
	assert.Nil(t, got, "expired session must not be returned")

	stale := NewSession(456)
	stale.UpdatedAt = time.Now().Add(-2 * time.Minute)
	require.NoError(t, store.Save(ctx, stale))
	require.NoError(t, store.Save(ctx, NewSession(789)))

	assert.Equal(t, 1, store.Cleanup())
}

func TestRedisSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisSessionStore(rdb, 30*time.Minute)
	ctx := context.Background()

	got, err := store.Get(ctx, 123)
	require.NoError(t, err)
	assert.Nil(t, got)

	session := NewSession(123)
	session.Draft = Draft{Date: "2025-03-15", Time: "14:00", Reason: "По работе"}
	require.NoError(t, store.Save(ctx, session))

	got, err = store.Get(ctx, 123)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, StateAskDate, got.State)
	assert.Equal(t, "14:00", got.Draft.Time)

	// TTL expiry drops the draft.
	mr.FastForward(time.Hour)
	got, err = store.Get(ctx, 123)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Save(ctx, session))
	require.NoError(t, store.Delete(ctx, 123))
	got, err = store.Get(ctx, 123)
	require.NoError(t, err)
	assert.Nil(t, got)
}
