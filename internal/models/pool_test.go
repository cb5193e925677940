package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolPrice(t *testing.T) {
	pool := &Pool{CurrencyA: "BTC", CurrencyB: "IRT", AmountA: 10, AmountB: 20_000_000}
	assert.InDelta(t, 2_000_000, pool.Price(false), 1e-9)
	assert.InDelta(t, 5e-7, pool.Price(true), 1e-15)

	empty := &Pool{CurrencyA: "BTC", CurrencyB: "IRT"}
	assert.Equal(t, float64(InvalidPrice), empty.Price(false))
	assert.Equal(t, float64(InvalidPrice), empty.Price(true))
	assert.True(t, empty.Empty())

	oneSided := &Pool{AmountA: 10}
	assert.Equal(t, float64(InvalidPrice), oneSided.Price(true))
	assert.InDelta(t, 0, oneSided.Price(false), 1e-15)
	assert.False(t, oneSided.Empty())
}

func TestPoolConstant(t *testing.T) {
	pool := &Pool{AmountA: 1000, AmountB: 2000}
	assert.Equal(t, 2_000_000.0, pool.Constant())
}

func TestPoolSideLookups(t *testing.T) {
	pool := &Pool{CurrencyA: "ETH", CurrencyB: "USDT", AmountA: 100, AmountB: 200_000}
	assert.True(t, pool.Contains("ETH"))
	assert.True(t, pool.Contains("USDT"))
	assert.False(t, pool.Contains("BTC"))

	amount, ok := pool.SideAmount("ETH")
	assert.True(t, ok)
	assert.Equal(t, 100.0, amount)
	amount, ok = pool.SideAmount("USDT")
	assert.True(t, ok)
	assert.Equal(t, 200_000.0, amount)
	_, ok = pool.SideAmount("BTC")
	assert.False(t, ok)
}

func TestProviderDerivedAmounts(t *testing.T) {
	pool := &Pool{AmountA: 500, AmountB: 1000, LPTokens: 100}
	provider := &Provider{LPTokens: 10}
	assert.InDelta(t, 0.1, provider.Share(pool), 1e-12)
	assert.InDelta(t, 50, provider.EntitledAmountA(pool), 1e-9)
	assert.InDelta(t, 100, provider.EntitledAmountB(pool), 1e-9)

	drained := &Pool{LPTokens: 0}
	assert.Equal(t, 0.0, provider.Share(drained))
	assert.Equal(t, 0.0, provider.EntitledAmountA(drained))
}

func TestProviderHistoryReconstruction(t *testing.T) {
	// First-ever deposit: the record holds the whole pool.
	first := &ProviderHistory{Type: ProviderTxAdd, AmountA: 10, AmountB: 20, LPTokensPool: 14.142, LPTokensDiff: 14.142}
	amountA, amountB := first.PoolAmountsAtTx()
	assert.Equal(t, 10.0, amountA)
	assert.Equal(t, 20.0, amountB)

	// Later deposit that minted 25% of the prior supply: before the add the
	// pool held 4x the deposit, so after it holds 5x.
	add := &ProviderHistory{Type: ProviderTxAdd, AmountA: 10, AmountB: 20, LPTokensPool: 125, LPTokensDiff: 25}
	amountA, amountB = add.PoolAmountsAtTx()
	assert.InDelta(t, 50, amountA, 1e-9)
	assert.InDelta(t, 100, amountB, 1e-9)

	// Removal that burned 20% of the prior supply.
	remove := &ProviderHistory{Type: ProviderTxRemove, AmountA: 10, AmountB: 20, LPTokensPool: 100, LPTokensDiff: 25}
	amountA, amountB = remove.PoolAmountsAtTx()
	assert.InDelta(t, 40, amountA, 1e-9)
	assert.InDelta(t, 80, amountB, 1e-9)
}
