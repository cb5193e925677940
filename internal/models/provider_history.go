package models

import (
	"time"
)

// Provider transaction types.
const (
	ProviderTxAdd    = "add"
	ProviderTxRemove = "remove"
)

// ProviderHistory is an immutable record of one add/remove liquidity
// transaction. LPTokensPool is the pool-wide LP supply right after the
// transaction and LPTokensDiff the amount minted or burned by it; together
// they are enough to reconstruct the pool reserves at the transaction
// boundary. The base-currency equivalents are frozen at record time.
type ProviderHistory struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	ProviderID     uint      `gorm:"not null;index" json:"provider_id"`
	Type           string    `gorm:"size:6;not null;default:add" json:"type"`
	AmountA        float64   `json:"amount_a"`
	AmountB        float64   `json:"amount_b"`
	LPTokensPool   float64   `gorm:"column:lp_tokens_pool;not null;default:0" json:"lp_tokens_pool"`
	LPTokensDiff   float64   `gorm:"column:lp_tokens_diff;not null;default:0" json:"lp_tokens_diff"`
	EquivalentIRT  float64   `gorm:"column:equivalent_irt" json:"equivalent_irt"`
	EquivalentUSDT float64   `gorm:"column:equivalent_usdt" json:"equivalent_usdt"`
	EquivalentBTC  float64   `gorm:"column:equivalent_btc" json:"equivalent_btc"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime;index"`

	Provider *Provider `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
}

func (ProviderHistory) TableName() string {
	return "provider_history"
}

// PoolAmountsAtTx backs the pool reserves out of the record: the share the
// transaction's LP delta represented before the mutation is inverted to
// recover the pre-transaction reserves, then the moved amounts are applied
// again. For the first-ever deposit the recorded amounts are the whole pool.
// Exact only when no swap ran between this record and the state being
// compared against.
func (h *ProviderHistory) PoolAmountsAtTx() (amountA, amountB float64) {
	if h.Type == ProviderTxAdd {
		if h.LPTokensPool == h.LPTokensDiff {
			return h.AmountA, h.AmountB
		}
		beforeShare := h.LPTokensDiff / (h.LPTokensPool - h.LPTokensDiff)
		return (h.AmountA / beforeShare) + h.AmountA, (h.AmountB / beforeShare) + h.AmountB
	}
	beforeShare := h.LPTokensDiff / (h.LPTokensPool + h.LPTokensDiff)
	return (h.AmountA / beforeShare) - h.AmountA, (h.AmountB / beforeShare) - h.AmountB
}
