package services

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"swapcontrol/internal/models"
)

// Queues the recorder publishes committed events to.
const (
	QueueSwapEvents      = "swap_events"
	QueueProvidingEvents = "providing_events"
	QueueSnapshotEvents  = "pool_snapshot_events"
)

// FeeTotals aggregates the fees a pool has earned, bucketed by the currency
// they were collected in, plus the combined value in the requested base.
type FeeTotals struct {
	CurrencyA  float64 `json:"currency_a"`
	CurrencyB  float64 `json:"currency_b"`
	TotalValue float64 `json:"total_value"`
}

// HistoryRecorder appends the immutable swap and provider transaction rows,
// freezing base-currency equivalents at record time, and answers the
// reporting queries over them. It never updates a row after creation.
// Reconstruction helpers run offline on the reporting path only.
type HistoryRecorder struct {
	db        *gorm.DB
	resolver  *Resolver
	publisher EventPublisher
}

// NewHistoryRecorder wires the recorder. publisher may be nil, in which case
// committed events are not forwarded anywhere.
func NewHistoryRecorder(db *gorm.DB, resolver *Resolver, publisher EventPublisher) *HistoryRecorder {
	return &HistoryRecorder{db: db, resolver: resolver, publisher: publisher}
}

// RecordSwap appends the swap row inside the caller's transaction. The IRT
// fee value and the output equivalents are resolved now and never revised.
func (h *HistoryRecorder) RecordSwap(tx *gorm.DB, userID uint, pool *models.Pool, quote *SwapQuote, fees FeeConfig) (*models.SwapHistory, error) {
	resolver := h.resolver.withDB(tx)
	eqIRT, err := resolver.Price(quote.OutputCurrency, BaseIRT)
	if err != nil {
		return nil, err
	}
	eqUSDT, err := resolver.Price(quote.OutputCurrency, BaseUSDT)
	if err != nil {
		return nil, err
	}
	eqBTC, err := resolver.Price(quote.OutputCurrency, BaseBTC)
	if err != nil {
		return nil, err
	}

	record := &models.SwapHistory{
		UserID:         userID,
		PoolID:         pool.ID,
		InputCurrency:  quote.InputCurrency,
		OutputCurrency: quote.OutputCurrency,
		InputAmount:    quote.InputAmount,
		OutputAmount:   quote.OutputAmount,
		FeeAmount:      quote.FeeAmount,
		FeePercentage:  fees.TotalFeeRate,
		FeeValueIRT:    quote.FeeAmount * eqIRT,
		BeforePrice:    quote.BeforePrice,
		AfterPrice:     quote.FinalPrice,
		Slippage:       quote.Slippage,
		EquivalentIRT:  quote.OutputAmount * eqIRT,
		EquivalentUSDT: quote.OutputAmount * eqUSDT,
		EquivalentBTC:  quote.OutputAmount * eqBTC,
	}
	if err := tx.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// RecordProviderTx appends the provider transaction row inside the caller's
// transaction. lpPoolTotal must be the pool-wide LP supply after the
// mutation; lpDiff the tokens minted or burned by it.
func (h *HistoryRecorder) RecordProviderTx(tx *gorm.DB, provider *models.Provider, pool *models.Pool, txType string, amountA, amountB, lpDiff, lpPoolTotal float64) (*models.ProviderHistory, error) {
	record := &models.ProviderHistory{
		ProviderID:   provider.ID,
		Type:         txType,
		AmountA:      amountA,
		AmountB:      amountB,
		LPTokensPool: lpPoolTotal,
		LPTokensDiff: lpDiff,
	}
	resolver := h.resolver.withDB(tx)
	for _, base := range []string{BaseIRT, BaseUSDT, BaseBTC} {
		priceA, err := resolver.Price(pool.CurrencyA, base)
		if err != nil {
			return nil, err
		}
		priceB, err := resolver.Price(pool.CurrencyB, base)
		if err != nil {
			return nil, err
		}
		equivalent := amountA*priceA + amountB*priceB
		switch base {
		case BaseIRT:
			record.EquivalentIRT = equivalent
		case BaseUSDT:
			record.EquivalentUSDT = equivalent
		case BaseBTC:
			record.EquivalentBTC = equivalent
		}
	}
	if err := tx.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// PublishSwap forwards a committed swap to the event queue, best-effort.
func (h *HistoryRecorder) PublishSwap(record *models.SwapHistory) {
	if h.publisher == nil || record == nil {
		return
	}
	if err := h.publisher.Publish(QueueSwapEvents, record); err != nil {
		log.WithError(err).WithField("swap", record.ID).Warn("failed to publish swap event")
	}
}

// PublishProviderTx forwards a committed provider transaction, best-effort.
func (h *HistoryRecorder) PublishProviderTx(record *models.ProviderHistory) {
	if h.publisher == nil || record == nil {
		return
	}
	if err := h.publisher.Publish(QueueProvidingEvents, record); err != nil {
		log.WithError(err).WithField("tx", record.ID).Warn("failed to publish providing event")
	}
}

// PoolValueAtTx values the pool's reserves as they stood at the recorded
// transaction boundary. Exact only if no swap ran between the record and the
// state it is compared against; reporting use only.
func (h *HistoryRecorder) PoolValueAtTx(record *models.ProviderHistory, base string) (float64, error) {
	var provider models.Provider
	if err := h.db.Preload("Pool").First(&provider, record.ProviderID).Error; err != nil {
		return 0, ErrProviderNotFound
	}
	if provider.Pool == nil {
		return 0, ErrPoolNotFound
	}
	amountA, amountB := record.PoolAmountsAtTx()
	return h.resolver.TVLAt(provider.Pool, base, amountA, amountB)
}

// FirstTxOfProvider returns the provider's first (primary) transaction, the
// anchor for its original share and amounts.
func (h *HistoryRecorder) FirstTxOfProvider(providerID uint) (*models.ProviderHistory, error) {
	var record models.ProviderHistory
	err := h.db.Where("provider_id = ?", providerID).Order("created_at, id").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return &record, nil
}

// ListSwaps returns swaps newest-first, optionally filtered by user and/or
// pool (0 means no filter).
func (h *HistoryRecorder) ListSwaps(userID, poolID uint) ([]models.SwapHistory, error) {
	q := h.db.Model(&models.SwapHistory{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if poolID != 0 {
		q = q.Where("pool_id = ?", poolID)
	}
	var swaps []models.SwapHistory
	if err := q.Order("created_at DESC, id DESC").Find(&swaps).Error; err != nil {
		return nil, err
	}
	return swaps, nil
}

// ListSwapsBetween is ListSwaps restricted to commit times in [from, to).
// A zero bound is unbounded on that side.
func (h *HistoryRecorder) ListSwapsBetween(userID, poolID uint, from, to time.Time) ([]models.SwapHistory, error) {
	q := h.db.Model(&models.SwapHistory{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if poolID != 0 {
		q = q.Where("pool_id = ?", poolID)
	}
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}
	var swaps []models.SwapHistory
	if err := q.Order("created_at DESC, id DESC").Find(&swaps).Error; err != nil {
		return nil, err
	}
	return swaps, nil
}

// ListProviderTxs returns provider transactions newest-first, optionally
// filtered by pool (0 means all pools).
func (h *HistoryRecorder) ListProviderTxs(poolID uint) ([]models.ProviderHistory, error) {
	q := h.db.Model(&models.ProviderHistory{})
	if poolID != 0 {
		q = q.Joins("JOIN provider ON provider.id = provider_history.provider_id").
			Where("provider.pool_id = ?", poolID)
	}
	var records []models.ProviderHistory
	if err := q.Order("provider_history.created_at DESC, provider_history.id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// TotalReceivedFees sums the fees collected by a pool. Fees are denominated
// in the output currency of each swap: input on side A collects on side B
// and vice versa. An empty base values the total in currency B at the spot
// price; otherwise both buckets are valued through the resolver.
func (h *HistoryRecorder) TotalReceivedFees(pool *models.Pool, base string) (FeeTotals, error) {
	var totals FeeTotals
	var swaps []models.SwapHistory
	if err := h.db.Where("pool_id = ?", pool.ID).Find(&swaps).Error; err != nil {
		return totals, err
	}
	for i := range swaps {
		if swaps[i].InputCurrency == pool.CurrencyA {
			totals.CurrencyB += swaps[i].FeeAmount
		} else {
			totals.CurrencyA += swaps[i].FeeAmount
		}
	}

	if base == "" {
		price := pool.Price(false)
		if price == models.InvalidPrice {
			return totals, ErrInsufficientLiquidity
		}
		totals.TotalValue = totals.CurrencyB + totals.CurrencyA*price
		return totals, nil
	}

	priceA, err := h.resolver.Price(pool.CurrencyA, base)
	if err != nil {
		return totals, err
	}
	priceB, err := h.resolver.Price(pool.CurrencyB, base)
	if err != nil {
		return totals, err
	}
	totals.TotalValue = totals.CurrencyA*priceA + totals.CurrencyB*priceB
	return totals, nil
}

// TotalReceivedFeesOfCurrency sums the fees collected in symbol across every
// pool containing it, returning the raw amount and its value in base (the
// raw amount again when base is empty).
func (h *HistoryRecorder) TotalReceivedFeesOfCurrency(symbol, base string) (amount, value float64, err error) {
	var result struct{ Total float64 }
	err = h.db.Model(&models.SwapHistory{}).
		Select("COALESCE(SUM(fee_amount), 0) AS total").
		Where("output_currency = ?", symbol).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	amount = result.Total
	if base == "" {
		return amount, amount, nil
	}
	price, err := h.resolver.Price(symbol, base)
	if err != nil {
		return 0, 0, err
	}
	return amount, amount * price, nil
}

// SnapshotPools writes one snapshot row per pool with the current reserves
// and both sides' prices in every base currency. Returns how many snapshots
// were taken.
func (h *HistoryRecorder) SnapshotPools() (int, error) {
	var pools []models.Pool
	if err := h.db.Order("id").Find(&pools).Error; err != nil {
		return 0, err
	}
	count := 0
	for i := range pools {
		pool := &pools[i]
		snapshot := models.PoolSnapshot{
			PoolID:   pool.ID,
			AmountA:  pool.AmountA,
			AmountB:  pool.AmountB,
			LPTokens: pool.LPTokens,
		}
		var err error
		if snapshot.PriceAIRT, err = h.resolver.Price(pool.CurrencyA, BaseIRT); err != nil {
			return count, err
		}
		if snapshot.PriceBIRT, err = h.resolver.Price(pool.CurrencyB, BaseIRT); err != nil {
			return count, err
		}
		if snapshot.PriceAUSDT, err = h.resolver.Price(pool.CurrencyA, BaseUSDT); err != nil {
			return count, err
		}
		if snapshot.PriceBUSDT, err = h.resolver.Price(pool.CurrencyB, BaseUSDT); err != nil {
			return count, err
		}
		if snapshot.PriceABTC, err = h.resolver.Price(pool.CurrencyA, BaseBTC); err != nil {
			return count, err
		}
		if snapshot.PriceBBTC, err = h.resolver.Price(pool.CurrencyB, BaseBTC); err != nil {
			return count, err
		}
		if err := h.db.Create(&snapshot).Error; err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
