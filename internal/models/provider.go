package models

import (
	"time"
)

// Provider is one (user, pool) liquidity position. Only the LP token balance
// is stored; the A/B entitlement and share are always derived from the
// current pool state. Rows are never deleted, a drained position keeps its
// row as the anchor for its history.
type Provider struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_provider_user_pool" json:"user_id"`
	PoolID    uint      `gorm:"not null;uniqueIndex:idx_provider_user_pool" json:"pool_id"`
	LPTokens  float64   `gorm:"column:lp_tokens;not null;default:0" json:"lp_tokens"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Pool *Pool `gorm:"foreignKey:PoolID" json:"pool,omitempty"`
}

func (Provider) TableName() string {
	return "provider"
}

// Share returns the provider's fraction of the pool's LP supply, 0 when the
// pool has no outstanding tokens.
func (p *Provider) Share(pool *Pool) float64 {
	if pool.LPTokens == 0 {
		return 0
	}
	return p.LPTokens / pool.LPTokens
}

// EntitledAmountA returns the provider's share of the pool's A reserve.
func (p *Provider) EntitledAmountA(pool *Pool) float64 {
	return p.Share(pool) * pool.AmountA
}

// EntitledAmountB returns the provider's share of the pool's B reserve.
func (p *Provider) EntitledAmountB(pool *Pool) float64 {
	return p.Share(pool) * pool.AmountB
}
