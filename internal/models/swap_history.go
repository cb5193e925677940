package models

import (
	"time"
)

// SwapHistory is the append-only audit row of one committed swap. FeeAmount
// is denominated in the output currency; prices and base-currency
// equivalents are frozen at commit time. Rows are never mutated.
type SwapHistory struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	PoolID         uint      `gorm:"not null;index" json:"pool_id"`
	InputCurrency  string    `gorm:"size:20;not null" json:"input_currency"`
	OutputCurrency string    `gorm:"size:20;not null" json:"output_currency"`
	InputAmount    float64   `json:"input_amount"`
	OutputAmount   float64   `json:"output_amount"`
	FeeAmount      float64   `json:"fee_amount"`
	FeePercentage  float64   `json:"fee_percentage"`
	FeeValueIRT    float64   `gorm:"column:fee_value_irt" json:"fee_value_irt"`
	BeforePrice    float64   `json:"before_price"`
	AfterPrice     float64   `json:"after_price"`
	Slippage       float64   `json:"slippage"`
	EquivalentIRT  float64   `gorm:"column:equivalent_irt" json:"equivalent_irt"`
	EquivalentUSDT float64   `gorm:"column:equivalent_usdt" json:"equivalent_usdt"`
	EquivalentBTC  float64   `gorm:"column:equivalent_btc" json:"equivalent_btc"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime;index"`

	Pool *Pool `gorm:"foreignKey:PoolID" json:"pool,omitempty"`
}

func (SwapHistory) TableName() string {
	return "swap_history"
}
