// Package cache provides the content-addressed result store: a durable
// backend keyed by fingerprint, wrapped so that storage failures degrade
// to a process-local in-memory store instead of failing a run.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Entry is one durable record: the canonicalized input payload (kept for
// auditability) and the raw output produced for it. Entries are
// content-addressed and safely shared across runs.
type Entry struct {
	ActionID  string          `json:"action_id"`
	Input     json.RawMessage `json:"input"`
	Output    map[string]any  `json:"output"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store maps fingerprints to previously produced outputs. Implementations
// must be safe for concurrent use; a race between Get and Put on the same
// fingerprint may cause a redundant handler invocation, never corruption.
type Store interface {
	Get(ctx context.Context, fingerprint string) (*Entry, bool, error)
	Put(ctx context.Context, fingerprint string, entry *Entry) error
	Close() error
}

// MemoryStore is an unbounded process-local store. It backs the fallback
// layer and standalone runs that opt out of durable caching.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

func (s *MemoryStore) Get(_ context.Context, fingerprint string) (*Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[fingerprint]

	return entry, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, fingerprint string, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[fingerprint] = entry

	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Fallback layers an in-memory store under a durable one. Any durable
// error logs a warning, flips a sticky degraded flag, and serves memory
// from then on: a cache-layer failure never fails a workflow run, it only
// degrades reproducibility across runs.
type Fallback struct {
	logger  *slog.Logger
	durable Store
	memory  *MemoryStore

	mu       sync.Mutex
	degraded bool
}

// NewFallback wraps durable; a nil durable store yields a memory-only cache.
func NewFallback(durable Store, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}

	return &Fallback{
		logger:  logger,
		durable: durable,
		memory:  NewMemoryStore(),
	}
}

func (f *Fallback) Get(ctx context.Context, fingerprint string) (*Entry, bool, error) {
	if f.durableAvailable() {
		entry, ok, err := f.durable.Get(ctx, fingerprint)
		if err == nil {
			return entry, ok, nil
		}

		f.degrade("get", err)
	}

	return f.memory.Get(ctx, fingerprint)
}

func (f *Fallback) Put(ctx context.Context, fingerprint string, entry *Entry) error {
	if f.durableAvailable() {
		err := f.durable.Put(ctx, fingerprint, entry)
		if err == nil {
			return nil
		}

		f.degrade("put", err)
	}

	return f.memory.Put(ctx, fingerprint, entry)
}

func (f *Fallback) Close() error {
	if f.durable != nil {
		return f.durable.Close()
	}

	return nil
}

func (f *Fallback) durableAvailable() bool {
	if f.durable == nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return !f.degraded
}

func (f *Fallback) degrade(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.degraded {
		f.logger.Warn("Durable cache unavailable, degrading to in-memory store",
			"op", op, "error", err)
		f.degraded = true
	}
}
