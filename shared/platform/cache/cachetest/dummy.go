// Package cachetest ofrece una caché en memoria para tests de servicios.
package cachetest

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	sharedCache "github.com/davicafu/carcatalog/shared/platform/cache"
)

// DummyCache guarda JSON en un map y cuenta los accesos. Sin TTL.
type DummyCache struct {
	mu     sync.RWMutex
	store  map[string][]byte
	hits   int
	misses int
}

var _ sharedCache.Cache = (*DummyCache)(nil)

func NewDummyCache() *DummyCache {
	return &DummyCache{store: make(map[string][]byte)}
}

func (c *DummyCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.store[key]
	if !ok {
		c.misses++
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	c.hits++
	return true, nil
}

func (c *DummyCache) Set(ctx context.Context, key string, val any, _ time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.store[key] = data
	c.mu.Unlock()
	return nil
}

func (c *DummyCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
	return nil
}

// Has indica si key está guardada. Útil con assert.Eventually tras un Set asíncrono.
func (c *DummyCache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.store[key]
	return ok
}

// Stats devuelve aciertos y fallos de Get.
func (c *DummyCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
