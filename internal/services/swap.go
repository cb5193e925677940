package services

import (
	"math"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"swapcontrol/internal/models"
)

// SwapQuote is the full result of pricing one directed swap against a pool
// snapshot. FinalAmountA/FinalAmountB are the reserves the pool would hold
// after committing: only the provider share of the fee stays in the pool,
// the protocol share is kept out of the invariant.
type SwapQuote struct {
	InputCurrency  string  `json:"input_currency"`
	OutputCurrency string  `json:"output_currency"`
	InputAmount    float64 `json:"input_amount"`
	OutputAmount   float64 `json:"output_amount"`
	FeeAmount      float64 `json:"fee_amount"`
	BeforePrice    float64 `json:"before_price"`
	FinalPrice     float64 `json:"final_price"`
	Slippage       float64 `json:"slippage"`
	FinalAmountA   float64 `json:"final_amount_a"`
	FinalAmountB   float64 `json:"final_amount_b"`
}

// QuoteSwap prices inputAmount of the pool's A side (B side when reversed)
// against the constant-product curve. Pure: the pool is not mutated, and
// identical inputs always yield identical results.
//
// The total fee is taken off the input before it moves the curve; the
// provider share of the fee is added back to the input reserve afterwards,
// so k grows by exactly the provider-retained amount. FeeAmount is the
// output-side quantity the full input would have bought beyond the actual
// output, reported in the output currency.
func QuoteSwap(pool *models.Pool, inputAmount float64, reversed bool, fees FeeConfig) (*SwapQuote, error) {
	if err := fees.Validate(); err != nil {
		return nil, err
	}
	if inputAmount <= 0 {
		return nil, ErrNegativeAmount
	}
	oldPrice := pool.Price(reversed)
	if pool.Empty() || oldPrice <= 0 {
		return nil, ErrInsufficientLiquidity
	}

	own, other := pool.AmountA, pool.AmountB
	if reversed {
		own, other = pool.AmountB, pool.AmountA
	}

	k := pool.Constant()
	netIn := inputAmount * (1 - fees.TotalFeeRate)
	newOther := k / (own + netIn)
	outputAmount := other - newOther

	finalOwn := own + inputAmount*(1-(fees.TotalFeeRate-fees.ProviderFeeRate))
	finalOther := newOther
	finalPrice := finalOther / finalOwn
	feeAmount := newOther - k/(own+inputAmount)
	slippage := 1 - finalPrice/oldPrice

	quote := &SwapQuote{
		InputCurrency:  pool.CurrencyA,
		OutputCurrency: pool.CurrencyB,
		InputAmount:    inputAmount,
		OutputAmount:   outputAmount,
		FeeAmount:      feeAmount,
		BeforePrice:    oldPrice,
		FinalPrice:     finalPrice,
		Slippage:       slippage,
		FinalAmountA:   finalOwn,
		FinalAmountB:   finalOther,
	}
	if reversed {
		quote.InputCurrency, quote.OutputCurrency = pool.CurrencyB, pool.CurrencyA
		quote.FinalAmountA, quote.FinalAmountB = finalOther, finalOwn
	}
	return quote, nil
}

// AmountToEquate returns the input amount of symbol that leaves the caller's
// remaining input and the received output with equal value, given the pool's
// current reserve for that side and the total fee.
func AmountToEquate(pool *models.Pool, symbol string, amount float64, fees FeeConfig) float64 {
	feeFactor := 1 - fees.TotalFeeRate

	poolAmount := pool.AmountA
	if symbol == pool.CurrencyB {
		poolAmount = pool.AmountB
	}

	a := (poolAmount * (1 + feeFactor)) / (2 * feeFactor)
	return a * (-1 + math.Sqrt(1+(poolAmount*amount)/(feeFactor*a*a)))
}

// SwapResult is a committed swap: the quote that was applied plus the
// persisted history row.
type SwapResult struct {
	SwapQuote
	Record *models.SwapHistory
}

// SwapEngine commits swaps against pools. Quoting is the pure QuoteSwap
// function; Commit serializes per pool, re-validates against the reserves it
// reloads under the lock, and persists the reserve mutation together with
// the history row in one transaction.
type SwapEngine struct {
	db      *gorm.DB
	wallet  WalletLedger
	history *HistoryRecorder
}

func NewSwapEngine(db *gorm.DB, wallet WalletLedger, history *HistoryRecorder) *SwapEngine {
	return &SwapEngine{db: db, wallet: wallet, history: history}
}

// Commit executes the swap for userID on poolID. The slippage bound is
// checked against the reserves as they are at commit time, not against any
// earlier quote, since the pool may have moved in between. The wallet is
// debited and credited only after the reserve mutation and its history row
// are durable.
func (e *SwapEngine) Commit(poolID, userID uint, inputAmount float64, reversed bool, maxSlippage float64, fees FeeConfig) (*SwapResult, error) {
	lock := lockPool(poolID)
	defer lock.Unlock()

	var pool models.Pool
	if err := e.db.First(&pool, poolID).Error; err != nil {
		return nil, ErrPoolNotFound
	}
	if pool.SuspendSwap {
		return nil, ErrSwapSuspended
	}

	quote, err := QuoteSwap(&pool, inputAmount, reversed, fees)
	if err != nil {
		return nil, err
	}
	if quote.Slippage > maxSlippage {
		return nil, &SlippageExceededError{Max: maxSlippage, Actual: quote.Slippage}
	}

	available, err := e.wallet.Available(userID, quote.InputCurrency)
	if err != nil {
		return nil, err
	}
	if available < inputAmount {
		return nil, ErrInsufficientBalance
	}

	var record *models.SwapHistory
	err = e.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&pool).Updates(map[string]interface{}{
			"amount_a": quote.FinalAmountA,
			"amount_b": quote.FinalAmountB,
		}).Error
		if err != nil {
			return err
		}
		record, err = e.history.RecordSwap(tx, userID, &pool, quote, fees)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := e.wallet.Debit(userID, quote.InputCurrency, inputAmount); err != nil {
		return nil, err
	}
	if err := e.wallet.Credit(userID, quote.OutputCurrency, quote.OutputAmount); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"pool":   poolID,
		"user":   userID,
		"input":  quote.InputCurrency,
		"amount": inputAmount,
		"output": quote.OutputAmount,
	}).Info("swap committed")

	e.history.PublishSwap(record)
	return &SwapResult{SwapQuote: *quote, Record: record}, nil
}
