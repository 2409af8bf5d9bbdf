// Package cache provides the in-process TTL response cache that sits in
// front of the policy table.
package cache

import (
	"encoding/json"
	"sync"
	"time"
)

// Memory is a mutex-guarded in-memory cache. Expiry is checked lazily at read
// time; expired entries stay in the map until overwritten or invalidated but
// are treated as absent. There is no background sweep.
type Memory struct {
	mu    sync.RWMutex
	items map[string]entry
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// NewMemory creates an empty cache.
func NewMemory() *Memory {
	return &Memory{
		items: make(map[string]entry),
	}
}

// Get retrieves a value if it exists and has not expired.
func (c *Memory) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

// Set stores a value with an expiry ttl from now.
func (c *Memory) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Invalidate removes a single key.
func (c *Memory) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// InvalidateAll drops every entry.
func (c *Memory) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]entry)
}

// Len reports the number of stored entries, expired or not.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Key builds a cache key from an operation name and its parameters. The
// parameters are serialized as canonical JSON (encoding/json emits map keys
// sorted and struct fields in declaration order), so two logically identical
// parameter sets always hash to the same key.
func Key(operation string, params interface{}) string {
	if params == nil {
		return operation
	}
	b, err := json.Marshal(params)
	if err != nil {
		// Unmarshalable parameters degrade to the bare operation key.
		return operation
	}
	return operation + ":" + string(b)
}
