package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"swapcontrol/internal/models"
)

// Base currencies every asset can be valued in.
const (
	BaseIRT  = "IRT"
	BaseUSDT = "USDT"
	BaseBTC  = "BTC"
)

// ValidBase reports whether symbol is one of the supported base currencies.
func ValidBase(symbol string) bool {
	switch symbol {
	case BaseIRT, BaseUSDT, BaseBTC:
		return true
	}
	return false
}

// Resolver computes the price of any pooled currency in IRT, USDT or BTC by
// walking the pools that contain the base currency. It is single-hop: a
// currency with no direct base-currency pool is valued by the external
// oracle, never by chaining through an intermediate pool. The first pool
// (in id order) yielding a positive price wins; the tie-break is
// deterministic by enumeration order, not economically optimal.
type Resolver struct {
	db     *gorm.DB
	oracle PriceOracle
}

func NewResolver(db *gorm.DB, oracle PriceOracle) *Resolver {
	return &Resolver{db: db, oracle: oracle}
}

// withDB rebinds the resolver to another handle, typically an open
// transaction, so recorded equivalents see the state being committed.
func (r *Resolver) withDB(db *gorm.DB) *Resolver {
	return &Resolver{db: db, oracle: r.oracle}
}

// Price returns how many units of base one unit of symbol is worth.
// base must be IRT, USDT or BTC.
func (r *Resolver) Price(symbol, base string) (float64, error) {
	symbol = strings.ToUpper(symbol)
	base = strings.ToUpper(base)
	if !ValidBase(base) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidBase, base)
	}
	if symbol == base {
		return 1, nil
	}

	var pools []models.Pool
	err := r.db.Where("currency_a = ? OR currency_b = ?", base, base).Order("id").Find(&pools).Error
	if err != nil {
		return 0, err
	}
	for i := range pools {
		pool := &pools[i]
		// Orient the ratio so the result is units of base per unit of
		// symbol; a zero divisor reserve yields the invalid sentinel and
		// the pool is skipped.
		if pool.CurrencyA == symbol && pool.CurrencyB == base {
			if price := pool.Price(false); price > 0 {
				return price, nil
			}
		} else if pool.CurrencyB == symbol && pool.CurrencyA == base {
			if price := pool.Price(true); price > 0 {
				return price, nil
			}
		}
	}

	return r.oracle.ValueInBase(symbol, 1, base)
}

// TVL values the pool's current reserves in base.
func (r *Resolver) TVL(pool *models.Pool, base string) (float64, error) {
	return r.TVLAt(pool, base, pool.AmountA, pool.AmountB)
}

// TVLAt values an explicit reserve pair held by pool, e.g. reserves
// reconstructed from a history record. The amounts are taken as given, a
// (0, 0) pair is a drained pool worth zero. An empty base means "value in
// currency B": the pool's spot price converts the A side. Any other base
// values each side through Price.
func (r *Resolver) TVLAt(pool *models.Pool, base string, amountA, amountB float64) (float64, error) {
	if base == "" {
		price := pool.Price(false)
		if price == models.InvalidPrice {
			if amountA == 0 {
				return amountB, nil
			}
			return 0, ErrInsufficientLiquidity
		}
		return price*amountA + amountB, nil
	}

	priceA, err := r.Price(pool.CurrencyA, base)
	if err != nil {
		return 0, err
	}
	priceB, err := r.Price(pool.CurrencyB, base)
	if err != nil {
		return 0, err
	}
	return amountA*priceA + amountB*priceB, nil
}

// TotalLockedOfCurrency sums the reserve held for symbol across every pool
// containing it. An empty base returns the raw amount; otherwise the sum is
// valued through Price.
func (r *Resolver) TotalLockedOfCurrency(symbol, base string) (float64, error) {
	symbol = strings.ToUpper(symbol)
	var pools []models.Pool
	err := r.db.Where("currency_a = ? OR currency_b = ?", symbol, symbol).Order("id").Find(&pools).Error
	if err != nil {
		return 0, err
	}

	var total float64
	for i := range pools {
		if amount, ok := pools[i].SideAmount(symbol); ok {
			total += amount
		}
	}
	if base == "" {
		return total, nil
	}
	price, err := r.Price(symbol, base)
	if err != nil {
		return 0, err
	}
	return total * price, nil
}
