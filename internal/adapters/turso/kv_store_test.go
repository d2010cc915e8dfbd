package turso_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/abtrack/internal/adapters/turso"
)

func TestKVStore_GetSet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	store := turso.NewKVStore(db, "device-1")

	_, ok, err := store.Get(ctx, "ab_variants")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "ab_variants", `{"hero-cta-test":"control"}`))
	value, ok, err := store.Get(ctx, "ab_variants")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"hero-cta-test":"control"}`, value)

	require.NoError(t, store.Set(ctx, "ab_variants", `{}`))
	value, _, err = store.Get(ctx, "ab_variants")
	require.NoError(t, err)
	assert.Equal(t, `{}`, value)
}

func TestKVStore_NamespacesAreIsolated(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	a := turso.NewKVStore(db, "user-a")
	b := turso.NewKVStore(db, "user-b")

	require.NoError(t, a.Set(ctx, "ab_user_id", "user-a"))

	_, ok, err := b.Get(ctx, "ab_user_id")
	require.NoError(t, err)
	assert.False(t, ok)
}
