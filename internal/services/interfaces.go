package services

import (
	"fmt"

	"gorm.io/gorm"

	"swapcontrol/internal/models"
)

// WalletLedger is the external balance ledger. The swap core only checks,
// debits and credits spendable funds around its own commits; balances
// themselves live outside this module.
type WalletLedger interface {
	Available(userID uint, symbol string) (float64, error)
	Debit(userID uint, symbol string, amount float64) error
	Credit(userID uint, symbol string, amount float64) error
}

// PriceOracle supplies a reference valuation for a currency against a base
// currency. Consulted only when no pool-based price path exists.
type PriceOracle interface {
	ValueInBase(symbol string, amount float64, base string) (float64, error)
}

// EventPublisher pushes committed history events to downstream consumers.
// Publication is best-effort and happens after the database transaction.
type EventPublisher interface {
	Publish(queueName string, message interface{}) error
}

// FeeConfig is the fee split applied to every swap. It is loaded once per
// call site and passed into quotes and commits explicitly, so identical
// inputs always produce identical results regardless of later admin changes.
type FeeConfig struct {
	TotalFeeRate    float64
	ProviderFeeRate float64
}

// Validate checks 0 <= ProviderFeeRate <= TotalFeeRate <= 1.
func (c FeeConfig) Validate() error {
	if c.ProviderFeeRate < 0 || c.TotalFeeRate > 1 || c.ProviderFeeRate > c.TotalFeeRate {
		return fmt.Errorf("%w: total=%v provider=%v", ErrInvalidFeeConfig, c.TotalFeeRate, c.ProviderFeeRate)
	}
	return nil
}

// LoadFeeConfig reads the swap_fee and swap_providers_fee options.
func LoadFeeConfig(db *gorm.DB) (FeeConfig, error) {
	var cfg FeeConfig
	var opt models.Option
	if err := db.Where("code_name = ?", models.OptionSwapFee).First(&opt).Error; err != nil {
		return cfg, fmt.Errorf("load %s: %w", models.OptionSwapFee, err)
	}
	cfg.TotalFeeRate = opt.Value
	if err := db.Where("code_name = ?", models.OptionSwapProvidersFee).First(&opt).Error; err != nil {
		return cfg, fmt.Errorf("load %s: %w", models.OptionSwapProvidersFee, err)
	}
	cfg.ProviderFeeRate = opt.Value
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
