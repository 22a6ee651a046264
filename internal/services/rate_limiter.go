package services

import (
	"context"
	"sync"
	"time"
)

// RateLimitResult reports the outcome of one fixed-window check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

type windowEntry struct {
	Count   int
	ResetAt time.Time
}

// CounterStore is the window state behind the limiter. Incr must be atomic:
// it opens a fresh window when the key is absent or expired, bumps the count
// otherwise, and returns the resulting entry. The in-process map is the
// default; a deployment with more than one instance swaps in a shared store,
// because per-process counters stop being a real limit there.
type CounterStore interface {
	Incr(key string, now time.Time, window time.Duration) windowEntry
	Sweep(now time.Time)
}

// FixedWindowLimiter counts requests per identifier in fixed windows: the
// window opens on the first request for a key and resets wholesale once it
// elapses. Expired entries are reclaimed by a periodic sweep, not on access.
type FixedWindowLimiter struct {
	store  CounterStore
	limit  int
	window time.Duration
}

func NewFixedWindowLimiter(store CounterStore, limit int, window time.Duration) *FixedWindowLimiter {
	if store == nil {
		store = NewMemoryCounterStore()
	}
	return &FixedWindowLimiter{store: store, limit: limit, window: window}
}

func (limiter *FixedWindowLimiter) Check(identifier string) RateLimitResult {
	return limiter.checkAt(identifier, time.Now())
}

func (limiter *FixedWindowLimiter) checkAt(identifier string, now time.Time) RateLimitResult {
	entry := limiter.store.Incr(identifier, now, limiter.window)
	if entry.Count > limiter.limit {
		return RateLimitResult{Allowed: false, Remaining: 0, ResetIn: entry.ResetAt.Sub(now)}
	}
	return RateLimitResult{Allowed: true, Remaining: limiter.limit - entry.Count, ResetIn: entry.ResetAt.Sub(now)}
}

func (limiter *FixedWindowLimiter) Limit() int {
	return limiter.limit
}

// StartSweep runs the periodic garbage collection of expired windows until
// the context is cancelled.
func (limiter *FixedWindowLimiter) StartSweep(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				limiter.store.Sweep(now)
			}
		}
	}()
}

// MemoryCounterStore is the single-instance CounterStore: a mutex-guarded
// map with no persistence, reset on process restart.
type MemoryCounterStore struct {
	mu      sync.Mutex
	entries map[string]windowEntry
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{entries: make(map[string]windowEntry)}
}

func (store *MemoryCounterStore) Incr(key string, now time.Time, window time.Duration) windowEntry {
	store.mu.Lock()
	defer store.mu.Unlock()

	entry, ok := store.entries[key]
	if !ok || now.After(entry.ResetAt) {
		entry = windowEntry{Count: 1, ResetAt: now.Add(window)}
	} else {
		entry.Count++
	}
	store.entries[key] = entry
	return entry
}

func (store *MemoryCounterStore) Sweep(now time.Time) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for key, entry := range store.entries {
		if now.After(entry.ResetAt) {
			delete(store.entries, key)
		}
	}
}
