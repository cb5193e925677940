package services

import (
	"errors"
	"math"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"swapcontrol/internal/models"
)

// valueTolerance is the absolute USDT tolerance allowed between the two
// sides of a paired deposit.
const valueTolerance = 0.1

// AddQuote is a dry-run of an add-liquidity transaction.
type AddQuote struct {
	AmountA         float64 `json:"amount_a"`
	RequiredAmountB float64 `json:"required_amount_b"`
	MintedLPTokens  float64 `json:"minted_lp_tokens"`
	NewShare        float64 `json:"new_share"`
	PoolPrice       float64 `json:"pool_price"`
}

// RemoveQuote is a dry-run of a remove-liquidity transaction.
type RemoveQuote struct {
	BurnLPTokens float64 `json:"burn_lp_tokens"`
	ReceivedA    float64 `json:"received_a"`
	ReceivedB    float64 `json:"received_b"`
	NewShare     float64 `json:"new_share"`
}

// ProvidingResult is a committed liquidity change plus its history row.
type ProvidingResult struct {
	Type         string  `json:"type"`
	AmountA      float64 `json:"amount_a"`
	AmountB      float64 `json:"amount_b"`
	LPTokensDiff float64 `json:"lp_tokens_diff"`
	NewShare     float64 `json:"new_share"`
	Record       *models.ProviderHistory `json:"record,omitempty"`
}

// LiquidityLedger adds and removes pool liquidity, minting and burning LP
// tokens per provider. A deposit must bring both sides in (approximately)
// equal value; the required B amount follows the pool's spot price, or the
// oracle's when the pool is still empty.
//
// Minting uses sqrt(amountA*amountB) for every deposit. Because the value
// guard only accepts deposits balanced at the current price, this matches
// proportional-to-supply minting up to rounding for non-first deposits.
type LiquidityLedger struct {
	db      *gorm.DB
	oracle  PriceOracle
	wallet  WalletLedger
	history *HistoryRecorder
}

func NewLiquidityLedger(db *gorm.DB, oracle PriceOracle, wallet WalletLedger, history *HistoryRecorder) *LiquidityLedger {
	return &LiquidityLedger{db: db, oracle: oracle, wallet: wallet, history: history}
}

// depositSides returns the caller's (given, required) currency symbols:
// (A, B) of the pool, swapped when the pair was resolved reversed.
func depositSides(pool *models.Pool, reversed bool) (givenSym, requiredSym string) {
	if reversed {
		return pool.CurrencyB, pool.CurrencyA
	}
	return pool.CurrencyA, pool.CurrencyB
}

// requiredAmountB derives the counter-side amount matching amountA in the
// caller's orientation: at the pool's spot price when the pool has one,
// otherwise by equating both sides' oracle value in USDT.
func (l *LiquidityLedger) requiredAmountB(pool *models.Pool, amountA float64, reversed bool) (required, poolPrice float64, err error) {
	poolPrice = pool.Price(reversed)
	if poolPrice != models.InvalidPrice {
		return poolPrice * amountA, poolPrice, nil
	}

	givenSym, requiredSym := depositSides(pool, reversed)
	priceGiven, err := l.oracle.ValueInBase(givenSym, 1, BaseUSDT)
	if err != nil {
		return 0, 0, err
	}
	priceRequired, err := l.oracle.ValueInBase(requiredSym, 1, BaseUSDT)
	if err != nil {
		return 0, 0, err
	}
	return amountA * priceGiven / priceRequired, 0, nil
}

// QuoteAdd computes the counter-side amount required alongside amountA, the
// LP tokens the deposit would mint and the provider's resulting share.
// amountA is in the caller's orientation: the pool's B side when the pair
// was resolved reversed. userID may be 0 for an anonymous quote, in which
// case the share assumes a fresh position.
func (l *LiquidityLedger) QuoteAdd(poolID, userID uint, amountA float64, reversed bool) (*AddQuote, error) {
	if amountA <= 0 {
		return nil, ErrNegativeAmount
	}
	var pool models.Pool
	if err := l.db.First(&pool, poolID).Error; err != nil {
		return nil, ErrPoolNotFound
	}

	required, poolPrice, err := l.requiredAmountB(&pool, amountA, reversed)
	if err != nil {
		return nil, err
	}
	minted := math.Sqrt(amountA * required)

	existing := 0.0
	if userID != 0 {
		var provider models.Provider
		err := l.db.Where("user_id = ? AND pool_id = ?", userID, poolID).First(&provider).Error
		if err == nil {
			existing = provider.LPTokens
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return &AddQuote{
		AmountA:         amountA,
		RequiredAmountB: required,
		MintedLPTokens:  minted,
		NewShare:        (existing + minted) / (pool.LPTokens + minted),
		PoolPrice:       poolPrice,
	}, nil
}

// CommitAdd deposits amountA and amountB for userID, both in the caller's
// orientation (swapped pool sides when reversed). The two sides must be
// equivalent in USDT value within the tolerance, or a ValueMismatchError
// carrying the required amount is returned before anything changes. The
// amount actually taken on the counter side is the price-derived
// requirement, so the deposit enters the pool exactly balanced.
func (l *LiquidityLedger) CommitAdd(poolID, userID uint, amountA, amountB float64, reversed bool) (*ProvidingResult, error) {
	if amountA <= 0 || amountB <= 0 {
		return nil, ErrNegativeAmount
	}

	lock := lockPool(poolID)
	defer lock.Unlock()

	var pool models.Pool
	if err := l.db.First(&pool, poolID).Error; err != nil {
		return nil, ErrPoolNotFound
	}
	if pool.SuspendProviding {
		return nil, ErrProvidingSuspended
	}

	givenSym, requiredSym := depositSides(&pool, reversed)
	required, _, err := l.requiredAmountB(&pool, amountA, reversed)
	if err != nil {
		return nil, err
	}
	requiredValue, err := l.oracle.ValueInBase(requiredSym, required, BaseUSDT)
	if err != nil {
		return nil, err
	}
	givenValue, err := l.oracle.ValueInBase(requiredSym, amountB, BaseUSDT)
	if err != nil {
		return nil, err
	}
	if math.Abs(requiredValue-givenValue) > valueTolerance {
		return nil, &ValueMismatchError{
			RequiredAmountB: required,
			AmountB:         amountB,
			ValueA:          requiredValue,
			ValueB:          givenValue,
		}
	}
	depositB := required

	availableA, err := l.wallet.Available(userID, givenSym)
	if err != nil {
		return nil, err
	}
	availableB, err := l.wallet.Available(userID, requiredSym)
	if err != nil {
		return nil, err
	}
	if availableA < amountA || availableB < depositB {
		return nil, ErrInsufficientBalance
	}

	// Pool-side amounts; the history row always stores the pool's own
	// orientation.
	depositPoolA, depositPoolB := amountA, depositB
	if reversed {
		depositPoolA, depositPoolB = depositB, amountA
	}

	minted := math.Sqrt(amountA * depositB)
	newPoolLP := pool.LPTokens + minted

	var provider models.Provider
	var record *models.ProviderHistory
	err = l.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND pool_id = ?", userID, poolID).First(&provider).Error
		switch {
		case err == nil:
			err = tx.Model(&provider).Update("lp_tokens", provider.LPTokens+minted).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			provider = models.Provider{UserID: userID, PoolID: poolID, LPTokens: minted}
			err = tx.Create(&provider).Error
		}
		if err != nil {
			return err
		}

		err = tx.Model(&pool).Updates(map[string]interface{}{
			"amount_a":  pool.AmountA + depositPoolA,
			"amount_b":  pool.AmountB + depositPoolB,
			"lp_tokens": newPoolLP,
		}).Error
		if err != nil {
			return err
		}

		record, err = l.history.RecordProviderTx(tx, &provider, &pool, models.ProviderTxAdd, depositPoolA, depositPoolB, minted, newPoolLP)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := l.wallet.Debit(userID, givenSym, amountA); err != nil {
		return nil, err
	}
	if err := l.wallet.Debit(userID, requiredSym, depositB); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"pool":   poolID,
		"user":   userID,
		"minted": minted,
	}).Info("liquidity added")

	l.history.PublishProviderTx(record)
	return &ProvidingResult{
		Type:         models.ProviderTxAdd,
		AmountA:      amountA,
		AmountB:      depositB,
		LPTokensDiff: minted,
		NewShare:     provider.LPTokens / newPoolLP,
		Record:       record,
	}, nil
}

// loadPosition fetches the pool and the caller's provider row, rejecting
// empty pools and drained positions.
func (l *LiquidityLedger) loadPosition(poolID, userID uint) (*models.Pool, *models.Provider, error) {
	var pool models.Pool
	if err := l.db.First(&pool, poolID).Error; err != nil {
		return nil, nil, ErrPoolNotFound
	}
	if pool.LPTokens == 0 {
		return nil, nil, ErrInsufficientLiquidity
	}
	var provider models.Provider
	err := l.db.Where("user_id = ? AND pool_id = ?", userID, poolID).First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNoLiquidity
		}
		return nil, nil, err
	}
	if provider.LPTokens == 0 {
		return nil, nil, ErrNoLiquidity
	}
	return &pool, &provider, nil
}

func validateShare(share float64) error {
	if share == 0 {
		return ErrZeroRemovePercent
	}
	if share < 0 || share > 1 {
		return ErrInvalidSharePercent
	}
	return nil
}

// QuoteRemove computes what burning share of the caller's position returns.
func (l *LiquidityLedger) QuoteRemove(poolID, userID uint, share float64) (*RemoveQuote, error) {
	if err := validateShare(share); err != nil {
		return nil, err
	}
	pool, provider, err := l.loadPosition(poolID, userID)
	if err != nil {
		return nil, err
	}

	burn := provider.LPTokens * share
	newShare := 0.0
	if remaining := pool.LPTokens - burn; remaining > 0 {
		newShare = (provider.LPTokens - burn) / remaining
	}
	return &RemoveQuote{
		BurnLPTokens: burn,
		ReceivedA:    pool.AmountA * burn / pool.LPTokens,
		ReceivedB:    pool.AmountB * burn / pool.LPTokens,
		NewShare:     newShare,
	}, nil
}

// CommitRemove burns share of the caller's LP tokens and pays out the
// proportional reserves, decrementing pool and provider by exactly the
// quoted amounts. The provider row survives at zero tokens.
func (l *LiquidityLedger) CommitRemove(poolID, userID uint, share float64) (*ProvidingResult, error) {
	if err := validateShare(share); err != nil {
		return nil, err
	}

	lock := lockPool(poolID)
	defer lock.Unlock()

	pool, provider, err := l.loadPosition(poolID, userID)
	if err != nil {
		return nil, err
	}
	if pool.SuspendProviding {
		return nil, ErrProvidingSuspended
	}

	burn := provider.LPTokens * share
	receivedA := pool.AmountA * burn / pool.LPTokens
	receivedB := pool.AmountB * burn / pool.LPTokens
	newPoolLP := pool.LPTokens - burn

	var record *models.ProviderHistory
	err = l.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(provider).Update("lp_tokens", provider.LPTokens-burn).Error
		if err != nil {
			return err
		}
		err = tx.Model(pool).Updates(map[string]interface{}{
			"amount_a":  pool.AmountA - receivedA,
			"amount_b":  pool.AmountB - receivedB,
			"lp_tokens": newPoolLP,
		}).Error
		if err != nil {
			return err
		}
		record, err = l.history.RecordProviderTx(tx, provider, pool, models.ProviderTxRemove, receivedA, receivedB, burn, newPoolLP)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := l.wallet.Credit(userID, pool.CurrencyA, receivedA); err != nil {
		return nil, err
	}
	if err := l.wallet.Credit(userID, pool.CurrencyB, receivedB); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"pool": poolID,
		"user": userID,
		"burn": burn,
	}).Info("liquidity removed")

	l.history.PublishProviderTx(record)
	newShare := 0.0
	if newPoolLP > 0 {
		newShare = provider.LPTokens / newPoolLP
	}
	return &ProvidingResult{
		Type:         models.ProviderTxRemove,
		AmountA:      receivedA,
		AmountB:      receivedB,
		LPTokensDiff: burn,
		NewShare:     newShare,
		Record:       record,
	}, nil
}
