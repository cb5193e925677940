package services

import (
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"swapcontrol/internal/models"
)

// SuspendScope selects which pool operations Suspend disables.
type SuspendScope string

const (
	SuspendScopeSwap      SuspendScope = "swap"
	SuspendScopeProviding SuspendScope = "providing"
	SuspendScopeBoth      SuspendScope = "both"
)

// Registry owns the pool set: lookup by id or currency pair, creation,
// currency enumeration and suspension flags.
type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Find returns the pool with the given id.
func (r *Registry) Find(id uint) (*models.Pool, error) {
	var pool models.Pool
	if err := r.db.First(&pool, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	return &pool, nil
}

// FindByPair returns the pool holding the (a, b) pair. When allowReverse is
// set and no pool stores the pair in that order, the reversed order is tried
// as well; the returned flag tells the caller its A/B mapping is swapped
// relative to the pool's stored sides.
func (r *Registry) FindByPair(symbolA, symbolB string, allowReverse bool) (*models.Pool, bool, error) {
	symbolA = strings.ToUpper(symbolA)
	symbolB = strings.ToUpper(symbolB)

	var pool models.Pool
	err := r.db.Where("currency_a = ? AND currency_b = ?", symbolA, symbolB).First(&pool).Error
	if err == nil {
		return &pool, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if !allowReverse {
		return nil, false, ErrPoolNotFound
	}

	err = r.db.Where("currency_a = ? AND currency_b = ?", symbolB, symbolA).First(&pool).Error
	if err == nil {
		return &pool, true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, ErrPoolNotFound
	}
	return nil, false, err
}

// FilterByCurrency returns every pool with symbol on either side, in id order.
func (r *Registry) FilterByCurrency(symbol string) ([]models.Pool, error) {
	symbol = strings.ToUpper(symbol)
	var pools []models.Pool
	err := r.db.Where("currency_a = ? OR currency_b = ?", symbol, symbol).Order("id").Find(&pools).Error
	if err != nil {
		return nil, err
	}
	return pools, nil
}

// Create provisions a new empty pool for the pair. It fails with
// ErrPoolExists when a pool for the unordered pair already exists.
func (r *Registry) Create(symbolA, symbolB string, rank int) (*models.Pool, error) {
	symbolA = strings.ToUpper(symbolA)
	symbolB = strings.ToUpper(symbolB)

	if _, _, err := r.FindByPair(symbolA, symbolB, true); err == nil {
		return nil, ErrPoolExists
	} else if !errors.Is(err, ErrPoolNotFound) {
		return nil, err
	}

	pool := models.Pool{
		CurrencyA: symbolA,
		CurrencyB: symbolB,
		Rank:      rank,
	}
	if err := r.db.Create(&pool).Error; err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"pool": pool.ID, "pair": symbolA + "-" + symbolB}).Info("pool created")
	return &pool, nil
}

// CurrencySymbols returns the deduplicated union of every currency appearing
// in any pool, in pool id order.
func (r *Registry) CurrencySymbols() ([]string, error) {
	var pools []models.Pool
	if err := r.db.Order("id").Find(&pools).Error; err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var symbols []string
	for _, pool := range pools {
		if !seen[pool.CurrencyA] {
			seen[pool.CurrencyA] = true
			symbols = append(symbols, pool.CurrencyA)
		}
		if !seen[pool.CurrencyB] {
			seen[pool.CurrencyB] = true
			symbols = append(symbols, pool.CurrencyB)
		}
	}
	return symbols, nil
}

// Suspend durably raises the requested suspension flags on the pool. Raising
// an already-raised flag is a no-op.
func (r *Registry) Suspend(poolID uint, scope SuspendScope) error {
	pool, err := r.Find(poolID)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	switch scope {
	case SuspendScopeSwap:
		updates["suspend_swap"] = true
	case SuspendScopeProviding:
		updates["suspend_providing"] = true
	case SuspendScopeBoth:
		updates["suspend_swap"] = true
		updates["suspend_providing"] = true
	default:
		return errors.New("unknown suspend scope: " + string(scope))
	}

	if err := r.db.Model(pool).Updates(updates).Error; err != nil {
		return err
	}
	log.WithFields(log.Fields{"pool": poolID, "scope": scope}).Warn("pool suspended")
	return nil
}
