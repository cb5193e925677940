package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceIdentity(t *testing.T) {
	db := newTestDB(t)
	resolver := NewResolver(db, newFakeOracle())

	// No pools exist, so a pool lookup could only fail; identity must not
	// consult anything.
	for _, base := range []string{BaseIRT, BaseUSDT, BaseBTC} {
		price, err := resolver.Price(base, base)
		require.NoError(t, err)
		assert.Equal(t, 1.0, price)
	}
}

func TestPriceInvalidBase(t *testing.T) {
	db := newTestDB(t)
	resolver := NewResolver(db, newFakeOracle())

	_, err := resolver.Price("BTC", "EUR")
	assert.ErrorIs(t, err, ErrInvalidBase)
}

func TestPriceFromDirectPool(t *testing.T) {
	db := newTestDB(t)
	resolver := NewResolver(db, newFakeOracle())

	// BTC stored on side A, IRT on side B: one BTC is worth B/A IRT.
	seedPool(t, db, "BTC", "IRT", 10, 20_000_000, 100)
	price, err := resolver.Price("BTC", BaseIRT)
	require.NoError(t, err)
	assert.InDelta(t, 2_000_000, price, 1e-9)

	// DAI stored on side B with USDT on side A: orientation flips.
	seedPool(t, db, "USDT", "DAI", 1000, 2000, 100)
	price, err = resolver.Price("DAI", BaseUSDT)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, price, 1e-9)
}

func TestPriceSkipsEmptyPoolAndFallsBack(t *testing.T) {
	db := newTestDB(t)
	oracle := newFakeOracle()
	oracle.set("BTC", "IRT", 1_500_000)
	resolver := NewResolver(db, oracle)

	// The empty pool yields an invalid price, so the oracle answers.
	seedPool(t, db, "BTC", "IRT", 0, 0, 0)
	price, err := resolver.Price("BTC", BaseIRT)
	require.NoError(t, err)
	assert.InDelta(t, 1_500_000, price, 1e-9)
}

func TestPriceOracleFallbackWithoutPools(t *testing.T) {
	db := newTestDB(t)
	oracle := newFakeOracle()
	oracle.set("DOGE", "USDT", 0.25)
	resolver := NewResolver(db, oracle)

	price, err := resolver.Price("DOGE", BaseUSDT)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, price, 1e-9)
}

func TestPriceSingleHopOnly(t *testing.T) {
	db := newTestDB(t)
	oracle := newFakeOracle()
	oracle.set("XYZ", "USDT", 7)
	resolver := NewResolver(db, oracle)

	// XYZ trades against ETH and ETH against USDT, but the resolver never
	// chains through the intermediate pool: XYZ has no USDT pool, so the
	// oracle answers.
	seedPool(t, db, "XYZ", "ETH", 100, 50, 10)
	seedPool(t, db, "ETH", "USDT", 10, 20_000, 10)
	price, err := resolver.Price("XYZ", BaseUSDT)
	require.NoError(t, err)
	assert.InDelta(t, 7, price, 1e-9)
}

func TestTVLInCurrencyB(t *testing.T) {
	db := newTestDB(t)
	resolver := NewResolver(db, newFakeOracle())

	pool := seedPool(t, db, "BTC", "IRT", 10, 20_000_000, 100)
	value, err := resolver.TVL(pool, "")
	require.NoError(t, err)
	// price*amountA + amountB
	assert.InDelta(t, 40_000_000, value, 1e-6)

	// Explicit historical amounts.
	value, err = resolver.TVLAt(pool, "", 5, 10_000_000)
	require.NoError(t, err)
	assert.InDelta(t, 20_000_000, value, 1e-6)

	// A reconstructed drained state is worth zero even though the pool
	// currently holds reserves.
	value, err = resolver.TVLAt(pool, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, value)
}

func TestTVLInBaseCurrency(t *testing.T) {
	db := newTestDB(t)
	oracle := newFakeOracle()
	oracle.set("BTC", "USDT", 50_000)
	oracle.set("IRT", "USDT", 0.00002)
	resolver := NewResolver(db, oracle)

	pool := seedPool(t, db, "BTC", "IRT", 10, 20_000_000, 100)
	value, err := resolver.TVL(pool, BaseUSDT)
	require.NoError(t, err)
	assert.InDelta(t, 10*50_000+20_000_000*0.00002, value, 1e-6)

	value, err = resolver.TVLAt(pool, BaseUSDT, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, value)
}

func TestTotalLockedOfCurrency(t *testing.T) {
	db := newTestDB(t)
	oracle := newFakeOracle()
	oracle.set("BTC", "USDT", 50_000)
	resolver := NewResolver(db, oracle)

	seedPool(t, db, "BTC", "IRT", 10, 20_000_000, 100)
	seedPool(t, db, "ETH", "BTC", 40, 2, 100)

	amount, err := resolver.TotalLockedOfCurrency("BTC", "")
	require.NoError(t, err)
	assert.InDelta(t, 12, amount, 1e-9)

	value, err := resolver.TotalLockedOfCurrency("BTC", BaseUSDT)
	require.NoError(t, err)
	assert.InDelta(t, 12*50_000, value, 1e-6)
}
