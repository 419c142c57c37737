package symbols

import (
	"context"
	"sync"
)

// Cache remembers validation decisions across requests. Implementations must be safe
// for concurrent use; a lost update only costs a repeated validation.
type Cache interface {
	IsValid(ctx context.Context, symbol string) bool
	IsInvalid(ctx context.Context, symbol string) bool
	MarkValid(ctx context.Context, symbol string)
	MarkInvalid(ctx context.Context, symbol string)
	Clear(ctx context.Context) error
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	valid   map[string]struct{}
	invalid map[string]struct{}
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		valid:   make(map[string]struct{}),
		invalid: make(map[string]struct{}),
	}
}

func (c *MemoryCache) IsValid(_ context.Context, symbol string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.valid[symbol]
	return ok
}

func (c *MemoryCache) IsInvalid(_ context.Context, symbol string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.invalid[symbol]
	return ok
}

func (c *MemoryCache) MarkValid(_ context.Context, symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.invalid, symbol)
	c.valid[symbol] = struct{}{}
}

func (c *MemoryCache) MarkInvalid(_ context.Context, symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.valid, symbol)
	c.invalid[symbol] = struct{}{}
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = make(map[string]struct{})
	c.invalid = make(map[string]struct{})
	return nil
}
