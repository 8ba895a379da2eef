package cache

import (
	"context"
	"sync"

	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
)

// Memory is the default process-local CarCache. Unbounded: the key space is
// the car fleet, which is small.
type Memory struct {
	mu sync.RWMutex
	m  map[string]domain.CarInfo
}

// NewMemory constructs an empty in-memory car cache.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]domain.CarInfo)}
}

// Put records the descriptor for its carUid.
func (c *Memory) Put(_ context.Context, info domain.CarInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[info.CarUID] = info
}

// Get returns the cached descriptor and whether one exists.
func (c *Memory) Get(_ context.Context, carUID string) (domain.CarInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.m[carUID]
	return info, ok
}

// Entries returns a copy of the full mapping.
func (c *Memory) Entries(_ context.Context) map[string]domain.CarInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]domain.CarInfo, len(c.m))
	for k, v := range c.m {
		out[k] = v
	}
	return out
}
