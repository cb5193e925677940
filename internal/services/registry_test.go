package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateAndFind(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistry(db)

	pool, err := registry.Create("btc", "irt", 1)
	require.NoError(t, err)
	assert.Equal(t, "BTC", pool.CurrencyA)
	assert.Equal(t, "IRT", pool.CurrencyB)
	assert.Zero(t, pool.AmountA)
	assert.Zero(t, pool.AmountB)
	assert.Zero(t, pool.LPTokens)

	found, err := registry.Find(pool.ID)
	require.NoError(t, err)
	assert.Equal(t, pool.ID, found.ID)

	_, err = registry.Find(999)
	assert.ErrorIs(t, err, ErrPoolNotFound)
}

func TestRegistryCreateRejectsUnorderedDuplicate(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistry(db)

	_, err := registry.Create("BTC", "IRT", 1)
	require.NoError(t, err)

	_, err = registry.Create("BTC", "IRT", 2)
	assert.ErrorIs(t, err, ErrPoolExists)

	// Same unordered pair, flipped sides.
	_, err = registry.Create("IRT", "BTC", 2)
	assert.ErrorIs(t, err, ErrPoolExists)
}

func TestRegistryFindByPair(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistry(db)

	created, err := registry.Create("ETH", "USDT", 1)
	require.NoError(t, err)

	pool, reversed, err := registry.FindByPair("ETH", "USDT", false)
	require.NoError(t, err)
	assert.False(t, reversed)
	assert.Equal(t, created.ID, pool.ID)

	pool, reversed, err = registry.FindByPair("usdt", "eth", true)
	require.NoError(t, err)
	assert.True(t, reversed)
	assert.Equal(t, created.ID, pool.ID)

	_, _, err = registry.FindByPair("USDT", "ETH", false)
	assert.ErrorIs(t, err, ErrPoolNotFound)

	_, _, err = registry.FindByPair("ETH", "DAI", true)
	assert.ErrorIs(t, err, ErrPoolNotFound)
}

func TestRegistryFilterByCurrencyAndSymbols(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistry(db)

	_, err := registry.Create("BTC", "IRT", 1)
	require.NoError(t, err)
	_, err = registry.Create("ETH", "BTC", 2)
	require.NoError(t, err)
	_, err = registry.Create("ETH", "USDT", 3)
	require.NoError(t, err)

	pools, err := registry.FilterByCurrency("btc")
	require.NoError(t, err)
	assert.Len(t, pools, 2)

	symbols, err := registry.CurrencySymbols()
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "IRT", "ETH", "USDT"}, symbols)
}

func TestRegistrySuspend(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistry(db)

	pool, err := registry.Create("BTC", "IRT", 1)
	require.NoError(t, err)

	require.NoError(t, registry.Suspend(pool.ID, SuspendScopeSwap))
	found, err := registry.Find(pool.ID)
	require.NoError(t, err)
	assert.True(t, found.SuspendSwap)
	assert.False(t, found.SuspendProviding)

	// Idempotent.
	require.NoError(t, registry.Suspend(pool.ID, SuspendScopeSwap))

	require.NoError(t, registry.Suspend(pool.ID, SuspendScopeBoth))
	found, err = registry.Find(pool.ID)
	require.NoError(t, err)
	assert.True(t, found.SuspendSwap)
	assert.True(t, found.SuspendProviding)

	assert.ErrorIs(t, registry.Suspend(999, SuspendScopeSwap), ErrPoolNotFound)
}
