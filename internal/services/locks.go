package services

import (
	"sync"
)

// Commits against the same pool must not interleave partial reserve updates,
// so every mutating operation holds the pool's mutex for the duration of its
// transaction. Locks are keyed by pool id; operations on distinct pools
// never contend. Quotes read a loaded snapshot and take no lock.
var poolLocks = struct {
	mu sync.Mutex
	m  map[uint]*sync.Mutex
}{m: make(map[uint]*sync.Mutex)}

func lockPool(poolID uint) *sync.Mutex {
	poolLocks.mu.Lock()
	lock, ok := poolLocks.m[poolID]
	if !ok {
		lock = &sync.Mutex{}
		poolLocks.m[poolID] = lock
	}
	poolLocks.mu.Unlock()
	lock.Lock()
	return lock
}
