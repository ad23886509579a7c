package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewTokenStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	require.NoError(t, store.SetToken(ctx, "reset_token:abc", "42", time.Minute))

	val, err := store.GetToken(ctx, "reset_token:abc")
	require.NoError(t, err)
	assert.Equal(t, "42", val)

	require.NoError(t, store.DeleteToken(ctx, "reset_token:abc"))
	_, err = store.GetToken(ctx, "reset_token:abc")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenStoreExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewTokenStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	require.NoError(t, store.SetToken(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.GetToken(ctx, "k")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}
