package session

import (
	"context"
	"sync"
)

// TokenStore persists the opaque resumption token per conversation key.
// One active token per key; Set overwrites unconditionally (last write
// wins). Get on an absent key reports no prior session so the engine starts
// fresh.
type TokenStore interface {
	Get(ctx context.Context, key string) (token string, ok bool, err error)
	Set(ctx context.Context, key, token string) error
}

// InMemoryRegistry is a volatile TokenStore backed by a process-local map.
// It is safe for concurrent access across conversation keys; concurrent
// turns for the same key race with last-write-wins semantics. Entries are
// never evicted, so the map grows with distinct keys for the process
// lifetime. Both are documented limitations of this backend.
type InMemoryRegistry struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewInMemoryRegistry constructs an empty in-memory registry.
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{tokens: make(map[string]string)}
}

// Get returns the active token for key, reporting ok=false when no prior
// session exists.
func (r *InMemoryRegistry) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	token, ok := r.tokens[key]
	return token, ok, nil
}

// Set stores the token for key, overwriting any previous value.
func (r *InMemoryRegistry) Set(_ context.Context, key, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[key] = token
	return nil
}
