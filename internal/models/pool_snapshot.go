package models

import (
	"time"
)

// PoolSnapshot is a point-in-time copy of a pool's reserves and LP supply
// together with both sides' base-currency prices, taken periodically so
// time-series reports never have to replay the transaction log.
type PoolSnapshot struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	PoolID     uint      `gorm:"not null;index" json:"pool_id"`
	AmountA    float64   `gorm:"not null;default:0" json:"amount_a"`
	AmountB    float64   `gorm:"not null;default:0" json:"amount_b"`
	LPTokens   float64   `gorm:"column:lp_tokens;not null;default:0" json:"lp_tokens"`
	PriceAIRT  float64   `gorm:"column:price_a_irt" json:"price_a_irt"`
	PriceBIRT  float64   `gorm:"column:price_b_irt" json:"price_b_irt"`
	PriceAUSDT float64   `gorm:"column:price_a_usdt" json:"price_a_usdt"`
	PriceBUSDT float64   `gorm:"column:price_b_usdt" json:"price_b_usdt"`
	PriceABTC  float64   `gorm:"column:price_a_btc" json:"price_a_btc"`
	PriceBBTC  float64   `gorm:"column:price_b_btc" json:"price_b_btc"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime;index"`

	Pool *Pool `gorm:"foreignKey:PoolID" json:"pool,omitempty"`
}

func (PoolSnapshot) TableName() string {
	return "pool_snapshot"
}
