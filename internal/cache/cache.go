package cache

import (
	"sync"
	"time"
)

type entry struct {
	val bool
	exp time.Time
}

// Memory is a process-local TTL cache for boolean lookups.
type Memory struct {
	mu  sync.RWMutex
	m   map[string]entry
	ttl time.Duration
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{m: make(map[string]entry), ttl: ttl}
}

func (c *Memory) Get(key string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.m[key]
	if !ok || time.Now().After(e.exp) {
		return false, false
	}
	return e.val, true
}

func (c *Memory) Set(key string, val bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = entry{val: val, exp: time.Now().Add(c.ttl)}
}

func (c *Memory) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
}
