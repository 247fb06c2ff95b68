package memory

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
)

// Cache is a durable key/value medium for persisted agent memory.
type Cache[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

var _ Cache[[]byte] = (*MemoryCache)(nil)

// MemoryCache keeps encoded memory records in process. Records are copied on
// the way in and out, so a caller holding a returned slice cannot change what
// the next Load sees.
type MemoryCache struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{records: map[string][]byte{}}
}

func (c *MemoryCache) Set(_ context.Context, key string, record []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[key] = bytes.Clone(record)
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.records[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(record), true, nil
}

func (c *MemoryCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, key)
	return nil
}

func (c *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.records[key]
	return ok, nil
}

// Sessions lists the session keys that currently hold a record, sorted.
func (c *MemoryCache) Sessions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	prefix := Namespace + ":"
	var out []string
	for key := range c.records {
		if session, ok := strings.CutPrefix(key, prefix); ok {
			out = append(out, session)
		}
	}
	slices.Sort(out)
	return out
}
