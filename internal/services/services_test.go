package services

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"swapcontrol/internal/models"
	"swapcontrol/pkg/config"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swapcontrol.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func seedPool(t *testing.T, db *gorm.DB, a, b string, amountA, amountB, lpTokens float64) *models.Pool {
	t.Helper()
	pool := &models.Pool{
		CurrencyA: a,
		CurrencyB: b,
		AmountA:   amountA,
		AmountB:   amountB,
		LPTokens:  lpTokens,
		Rank:      1,
	}
	require.NoError(t, db.Create(pool).Error)
	return pool
}

func seedProvider(t *testing.T, db *gorm.DB, userID uint, pool *models.Pool, lpTokens float64) *models.Provider {
	t.Helper()
	provider := &models.Provider{UserID: userID, PoolID: pool.ID, LPTokens: lpTokens}
	require.NoError(t, db.Create(provider).Error)
	return provider
}

func testFees() FeeConfig {
	return FeeConfig{TotalFeeRate: 0.003, ProviderFeeRate: 0.0015}
}

// fakeOracle serves 1-unit prices from a map keyed SYMBOL:BASE. Unlisted
// pairs fall back to 1, so equivalence bookkeeping in unrelated tests stays
// well-defined.
type fakeOracle struct {
	prices map[string]float64
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{prices: make(map[string]float64)}
}

func (o *fakeOracle) set(symbol, base string, price float64) {
	o.prices[strings.ToUpper(symbol)+":"+strings.ToUpper(base)] = price
}

func (o *fakeOracle) ValueInBase(symbol string, amount float64, base string) (float64, error) {
	if strings.EqualFold(symbol, base) {
		return amount, nil
	}
	price, ok := o.prices[strings.ToUpper(symbol)+":"+strings.ToUpper(base)]
	if !ok {
		return amount, nil
	}
	return amount * price, nil
}

// fakeWallet is an in-memory WalletLedger.
type fakeWallet struct {
	mu       sync.Mutex
	balances map[uint]map[string]float64
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{balances: make(map[uint]map[string]float64)}
}

func (w *fakeWallet) fund(userID uint, symbol string, amount float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balances[userID] == nil {
		w.balances[userID] = make(map[string]float64)
	}
	w.balances[userID][symbol] += amount
}

func (w *fakeWallet) Available(userID uint, symbol string) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[userID][symbol], nil
}

func (w *fakeWallet) Debit(userID uint, symbol string, amount float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balances[userID][symbol] < amount {
		return fmt.Errorf("wallet: %w", ErrInsufficientBalance)
	}
	w.balances[userID][symbol] -= amount
	return nil
}

func (w *fakeWallet) Credit(userID uint, symbol string, amount float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balances[userID] == nil {
		w.balances[userID] = make(map[string]float64)
	}
	w.balances[userID][symbol] += amount
	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu       sync.Mutex
	messages map[string][]interface{}
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{messages: make(map[string][]interface{})}
}

func (p *fakePublisher) Publish(queueName string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages[queueName] = append(p.messages[queueName], message)
	return nil
}

func (p *fakePublisher) count(queueName string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages[queueName])
}

// newStack wires a full service set over one test database.
func newStack(t *testing.T) (*gorm.DB, *Registry, *Resolver, *SwapEngine, *LiquidityLedger, *HistoryRecorder, *fakeOracle, *fakeWallet, *fakePublisher) {
	t.Helper()
	db := newTestDB(t)
	oracle := newFakeOracle()
	wallet := newFakeWallet()
	publisher := newFakePublisher()
	resolver := NewResolver(db, oracle)
	history := NewHistoryRecorder(db, resolver, publisher)
	engine := NewSwapEngine(db, wallet, history)
	ledger := NewLiquidityLedger(db, oracle, wallet, history)
	registry := NewRegistry(db)
	return db, registry, resolver, engine, ledger, history, oracle, wallet, publisher
}
