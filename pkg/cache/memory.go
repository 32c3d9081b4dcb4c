package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	value    []byte
	expireAt time.Time
}

func (e memoryEntry) expired() bool {
	return time.Now().After(e.expireAt)
}

// MemoryCache is the in-process Service backend used when Redis is
// disabled. Locks held here only coordinate within one process, which
// is exactly the guarantee a single-instance deployment needs.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	locks   map[string]time.Time
	maxKeys int
	sweeper *time.Ticker
}

// NewMemoryCache creates the in-process store.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxKeys:       1000,
		SweepInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		entries: make(map[string]memoryEntry),
		locks:   make(map[string]time.Time),
		maxKeys: cfg.MaxKeys,
		sweeper: time.NewTicker(cfg.SweepInterval),
	}
	go mc.sweep()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("memory cache marshal: %w", err)
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	if len(mc.entries) >= mc.maxKeys {
		mc.evictOldest()
	}
	mc.entries[key] = memoryEntry{value: b, expireAt: time.Now().Add(ttl)}
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	e, ok := mc.entries[key]
	if ok && e.expired() {
		delete(mc.entries, key)
		ok = false
	}
	mc.mu.Unlock()

	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(e.value, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, k := range keys {
		delete(mc.entries, k)
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	e, ok := mc.entries[key]
	return ok && !e.expired(), nil
}

func (mc *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if until, held := mc.locks[key]; held && time.Now().Before(until) {
		return false, nil
	}
	mc.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (mc *MemoryCache) Unlock(_ context.Context, key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	delete(mc.locks, key)
	return nil
}

// evictOldest drops the entry closest to expiry. Caller holds mu.
func (mc *MemoryCache) evictOldest() {
	var victim string
	var soonest time.Time
	for k, e := range mc.entries {
		if victim == "" || e.expireAt.Before(soonest) {
			victim = k
			soonest = e.expireAt
		}
	}
	if victim != "" {
		delete(mc.entries, victim)
	}
}

func (mc *MemoryCache) sweep() {
	for range mc.sweeper.C {
		now := time.Now()
		mc.mu.Lock()
		for k, e := range mc.entries {
			if now.After(e.expireAt) {
				delete(mc.entries, k)
			}
		}
		for k, until := range mc.locks {
			if now.After(until) {
				delete(mc.locks, k)
			}
		}
		mc.mu.Unlock()
	}
}

var _ Service = (*MemoryCache)(nil)
