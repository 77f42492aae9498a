// Package cache is a process-local, best-effort memoization layer for the
// streak and progress calculators. It is advisory only: a miss or failure
// falls through to direct computation, so staleness is bounded by TTL and
// correctness never depends on it.
package cache

import (
	"sync"
	"time"

	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
)

type entry struct {
	value     any
	userID    string
	expiresAt time.Time
}

type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	logger  internal.Logger
	stop    chan struct{}
	stopped sync.Once
}

// New creates a cache and starts the background expiry sweep. The sweep is
// housekeeping only; reads check expiry on access.
func New(logger internal.Logger, sweepInterval time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		logger:  logger,
		stop:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go c.sweepLoop(sweepInterval)
	}
	return c
}

// GetOrCompute returns the cached value for key if present and fresh,
// otherwise invokes factory and caches its result for ttl. A factory error
// is returned as-is and nothing is cached.
func (c *Cache) GetOrCompute(userID, key string, ttl time.Duration, factory func() (any, error)) (any, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(e.expiresAt) {
		return e.value, nil
	}

	value, err := factory()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, userID: userID, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return value, nil
}

// InvalidateUser drops every entry cached for the given user. Invalidation
// is deliberately coarse: any habit or tracker mutation clears all of the
// user's derived results.
func (c *Cache) InvalidateUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if e.userID == userID {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of live entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debugf("cache sweep removed %d expired entries", removed)
	}
}

// Close stops the background sweep.
func (c *Cache) Close() {
	c.stopped.Do(func() { close(c.stop) })
}
