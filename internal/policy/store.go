package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Store is the injected key-value policy backend. Implementations must treat
// a missing key as (value="", ok=false, err=nil); callers fall back to
// defaults.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Close() error
}

// policyKey is where the serialized policy document lives in a Store.
const policyKey = "policy"

// Load reads the policy document from the store, overlaying it on Default.
// A missing document yields the defaults unchanged.
func Load(ctx context.Context, s Store) (Policy, error) {
	p := Default()
	raw, ok, err := s.Get(ctx, policyKey)
	if err != nil {
		return p, fmt.Errorf("policy get: %w", err)
	}
	if !ok {
		return p, nil
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Default(), fmt.Errorf("policy decode: %w", err)
	}
	return p, nil
}

// Save writes the policy document to the store.
func Save(ctx context.Context, s Store, p Policy) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("policy encode: %w", err)
	}
	if err := s.Set(ctx, policyKey, string(raw)); err != nil {
		return fmt.Errorf("policy set: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu sync.RWMutex
	kv map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{kv: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.kv[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = value
	return nil
}

func (m *MemoryStore) Close() error { return nil }
