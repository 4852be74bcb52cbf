// Package cache provides an explicitly owned, injectable stock snapshot
// cache. It replaces what used to be process-wide static maps: the cache is
// constructed once, passed as a dependency, and carries its own eviction
// policy.
package cache

import (
	"sync"
	"time"
)

// StockSnapshot is a company's cached product quantities.
type StockSnapshot map[uint]float64

type snapshotEntry struct {
	snapshot  StockSnapshot
	expiresAt time.Time
}

// StockCache caches per-company stock snapshots with TTL eviction. It
// satisfies the engine's StockCacheInvalidator interface so finalized sync
// runs drop the stale snapshot for their company.
type StockCache struct {
	mu      sync.RWMutex
	entries map[uint]snapshotEntry
	ttl     time.Duration
}

// NewStockCache creates a cache whose entries expire after ttl.
func NewStockCache(ttl time.Duration) *StockCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &StockCache{
		entries: make(map[uint]snapshotEntry),
		ttl:     ttl,
	}
}

// Get returns the company's snapshot, or false when absent or expired.
// Expired entries are evicted on access.
func (c *StockCache) Get(companyID uint) (StockSnapshot, bool) {
	c.mu.RLock()
	entry, ok := c.entries[companyID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, companyID)
		c.mu.Unlock()
		return nil, false
	}
	return entry.snapshot, true
}

// Set stores the company's snapshot with a fresh TTL.
func (c *StockCache) Set(companyID uint, snapshot StockSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[companyID] = snapshotEntry{
		snapshot:  snapshot,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// InvalidateCompany drops the company's snapshot. Implements the engine's
// StockCacheInvalidator.
func (c *StockCache) InvalidateCompany(companyID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, companyID)
	return nil
}

// Len returns how many companies currently have a cached snapshot.
func (c *StockCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
