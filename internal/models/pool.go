package models

import (
	"time"
)

// InvalidPrice is returned by Pool.Price when the divisor reserve is zero.
const InvalidPrice = -1

// Pool holds the shared reserves of one currency pair. Reserves are priced
// by the constant-product rule; LPTokens is the outstanding supply of
// ownership tokens over the reserves. At most one pool exists per unordered
// pair of currencies.
type Pool struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	CurrencyA        string    `gorm:"size:20;not null;uniqueIndex:idx_pool_pair" json:"currency_a"`
	CurrencyB        string    `gorm:"size:20;not null;uniqueIndex:idx_pool_pair" json:"currency_b"`
	AmountA          float64   `gorm:"not null;default:0" json:"amount_a"`
	AmountB          float64   `gorm:"not null;default:0" json:"amount_b"`
	LPTokens         float64   `gorm:"column:lp_tokens;not null;default:0" json:"lp_tokens"`
	Rank             int       `gorm:"not null;default:1" json:"rank"`
	SuspendSwap      bool      `gorm:"not null;default:false" json:"suspend_swap"`
	SuspendProviding bool      `gorm:"not null;default:false" json:"suspend_providing"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Pool) TableName() string {
	return "pool"
}

// Price returns the instantaneous reserve ratio: AmountB/AmountA when
// reverse is false, AmountA/AmountB when reverse is true. Returns
// InvalidPrice when the divisor reserve is zero.
func (p *Pool) Price(reverse bool) float64 {
	if reverse {
		if p.AmountB == 0 {
			return InvalidPrice
		}
		return p.AmountA / p.AmountB
	}
	if p.AmountA == 0 {
		return InvalidPrice
	}
	return p.AmountB / p.AmountA
}

// Constant returns the constant-product invariant k = AmountA * AmountB.
func (p *Pool) Constant() float64 {
	return p.AmountA * p.AmountB
}

// Empty reports whether the pool holds no liquidity.
func (p *Pool) Empty() bool {
	return p.AmountA == 0 && p.AmountB == 0
}

// Contains reports whether symbol is one side of the pool.
func (p *Pool) Contains(symbol string) bool {
	return p.CurrencyA == symbol || p.CurrencyB == symbol
}

// SideAmount returns the reserve held for symbol; the second return is false
// when the symbol is not part of the pool.
func (p *Pool) SideAmount(symbol string) (float64, bool) {
	switch symbol {
	case p.CurrencyA:
		return p.AmountA, true
	case p.CurrencyB:
		return p.AmountB, true
	}
	return 0, false
}
