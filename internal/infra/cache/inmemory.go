package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	sharedCache "github.com/davicafu/carcatalog/shared/platform/cache"
)

// entry es un valor ya serializado; así un acierto devuelve una copia y no
// comparte punteros con quien hizo el Set.
type entry struct {
	payload []byte
	expires time.Time
}

func (e entry) expired(at time.Time) bool { return !at.Before(e.expires) }

// InMemoryCache es la caché de proceso que se usa cuando no hay Redis.
// Las entradas caducadas no se sirven y un barrido periódico las libera.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time

	quit     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

var _ sharedCache.Cache = (*InMemoryCache)(nil)

// NewInMemoryCache arranca el barrido cada sweepEvery. Stop lo detiene.
func NewInMemoryCache(ttl, sweepEvery time.Duration) *InMemoryCache {
	c := &InMemoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go c.sweepLoop(sweepEvery)
	return c
}

func (c *InMemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || e.expired(c.now()) {
		return false, nil
	}
	if err := json.Unmarshal(e.payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *InMemoryCache) Set(_ context.Context, key string, val any, ttl time.Duration) error {
	payload, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{payload: payload, expires: c.now().Add(ttl)}
	return nil
}

func (c *InMemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Len cuenta las entradas almacenadas, incluidas las caducadas aún no barridas.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stop es idempotente y bloquea hasta que el barrido termina.
func (c *InMemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.quit) })
	<-c.stopped
}

func (c *InMemoryCache) sweep() {
	at := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if e.expired(at) {
			delete(c.entries, key)
		}
	}
}

func (c *InMemoryCache) sweepLoop(every time.Duration) {
	defer close(c.stopped)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-c.quit:
			return
		case <-t.C:
			c.sweep()
		}
	}
}
