package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStorageDown = errors.New("storage down")

// failingStore errors on every operation, standing in for an unreachable
// durable backend.
type failingStore struct {
	gets int
	puts int
}

func (s *failingStore) Get(_ context.Context, _ string) (*Entry, bool, error) {
	s.gets++

	return nil, false, errStorageDown
}

func (s *failingStore) Put(_ context.Context, _ string, _ *Entry) error {
	s.puts++

	return errStorageDown
}

func (s *failingStore) Close() error { return nil }

func testEntry(actionID string) *Entry {
	return &Entry{
		ActionID:  actionID,
		Input:     []byte(`{"message":"hello"}`),
		Output:    map[string]any{"message": "hello"},
		CreatedAt: time.Now(),
	}
}

func TestMemoryStoreGetPut(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "fp-1", testEntry("core.echo")))

	entry, ok, err := store.Get(ctx, "fp-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "core.echo", entry.ActionID)
	assert.Equal(t, map[string]any{"message": "hello"}, entry.Output)
}

func TestFallbackMemoryOnlyWhenDurableNil(t *testing.T) {
	ctx := context.Background()
	fallback := NewFallback(nil, nil)

	require.NoError(t, fallback.Put(ctx, "fp-1", testEntry("core.echo")))

	entry, ok, err := fallback.Get(ctx, "fp-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "core.echo", entry.ActionID)

	require.NoError(t, fallback.Close())
}

func TestFallbackPrefersDurable(t *testing.T) {
	ctx := context.Background()
	durable := NewMemoryStore()
	fallback := NewFallback(durable, nil)

	require.NoError(t, fallback.Put(ctx, "fp-1", testEntry("core.echo")))

	_, ok, err := durable.Get(ctx, "fp-1")
	require.NoError(t, err)
	assert.True(t, ok, "entry should land in the durable store")

	entry, ok, err := fallback.Get(ctx, "fp-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "core.echo", entry.ActionID)
}

func TestFallbackDegradesStickyOnDurableError(t *testing.T) {
	ctx := context.Background()
	durable := &failingStore{}
	fallback := NewFallback(durable, nil)

	// The first failure degrades; the entry still lands in memory.
	require.NoError(t, fallback.Put(ctx, "fp-1", testEntry("core.echo")))
	assert.Equal(t, 1, durable.puts)

	entry, ok, err := fallback.Get(ctx, "fp-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "core.echo", entry.ActionID)

	// Degradation is sticky: the durable store is not retried.
	require.NoError(t, fallback.Put(ctx, "fp-2", testEntry("core.log")))
	assert.Equal(t, 1, durable.puts)
	assert.Equal(t, 0, durable.gets)
}
