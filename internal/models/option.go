package models

import (
	"time"
)

// Option code names read by the swap core.
const (
	OptionSwapFee          = "swap_fee"
	OptionSwapProvidersFee = "swap_providers_fee"
)

// Option is an admin-configured numeric parameter, looked up by code name.
// The swap core reads swap_fee and swap_providers_fee from here.
type Option struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CodeName  string    `gorm:"size:50;uniqueIndex;not null" json:"code_name"`
	Value     float64   `gorm:"not null;default:0" json:"value"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Option) TableName() string {
	return "option"
}
