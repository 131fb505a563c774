package models

import (
	"sync"
)

// TradeLocker serializes mutations of a single trade row.
// Uses per-trade locks instead of a global lock, so closes of unrelated
// trades never wait on each other.
type TradeLocker struct {
	tradeLocks map[string]*sync.Mutex // Map of trade id → mutex
	mapMutex   sync.RWMutex           // Protects the map itself
}

// NewTradeLocker creates a new trade locker
func NewTradeLocker() *TradeLocker {
	return &TradeLocker{
		tradeLocks: make(map[string]*sync.Mutex),
	}
}

// Lock locks a specific trade
func (tl *TradeLocker) Lock(tradeID string) {
	// First, get or create mutex for this trade
	tl.mapMutex.Lock()

	if tl.tradeLocks[tradeID] == nil {
		tl.tradeLocks[tradeID] = &sync.Mutex{}
	}

	tradeMutex := tl.tradeLocks[tradeID]
	tl.mapMutex.Unlock()

	// Now lock that trade's mutex
	tradeMutex.Lock()
}

// Unlock unlocks a specific trade
func (tl *TradeLocker) Unlock(tradeID string) {
	tl.mapMutex.RLock()
	tradeMutex := tl.tradeLocks[tradeID]
	tl.mapMutex.RUnlock()

	if tradeMutex != nil {
		tradeMutex.Unlock()
	}
}
