// Package cache stores finished fact-check reports keyed by article digest.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultTTL applies when a cache is built with a non-positive TTL.
const DefaultTTL = time.Hour

// Cache is the report store used by the fact-check endpoint.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, report string) error
}

// Key derives the cache key for an article.
func Key(article string) string {
	sum := sha256.Sum256([]byte(article))
	return "factcheck:" + hex.EncodeToString(sum[:])
}

type entry struct {
	report  string
	expires time.Time
}

// Memory is an in-process Cache.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, now: time.Now, entries: make(map[string]entry)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.report, true, nil
}

func (m *Memory) Set(_ context.Context, key, report string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{report: report, expires: m.now().Add(m.ttl)}
	return nil
}
