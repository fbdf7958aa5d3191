package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreGetPut(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "fp-1", testEntry("core.echo")))

	entry, ok, err := store.Get(ctx, "fp-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "core.echo", entry.ActionID)
	assert.Equal(t, map[string]any{"message": "hello"}, entry.Output)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestFileStoreStripsSchemePrefix(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewFileStore("file://" + root)

	require.NoError(t, store.Put(ctx, "fp-1", testEntry("core.echo")))

	_, err := os.Stat(filepath.Join(root, "fp-1.json"))
	require.NoError(t, err)
}

func TestFileStoreCreatesRootDirectory(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "nested", "cache")
	store := NewFileStore(root)

	require.NoError(t, store.Put(ctx, "fp-1", testEntry("core.echo")))

	entry, ok, err := store.Get(ctx, "fp-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "core.echo", entry.ActionID)
}

func TestFileStoreTreatsCorruptEntryAsMiss(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewFileStore(root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "fp-1.json"), []byte("{not json"), 0600))

	_, ok, err := store.Get(ctx, "fp-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// The record is replaceable afterwards.
	require.NoError(t, store.Put(ctx, "fp-1", testEntry("core.echo")))

	entry, ok, err := store.Get(ctx, "fp-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "core.echo", entry.ActionID)
}

func TestFileStorePutReplacesAtomically(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewFileStore(root)

	require.NoError(t, store.Put(ctx, "fp-1", testEntry("core.echo")))
	require.NoError(t, store.Put(ctx, "fp-1", testEntry("core.log")))

	entry, ok, err := store.Get(ctx, "fp-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "core.log", entry.ActionID)

	// No temp files are left behind.
	files, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "fp-1.json", files[0].Name())
}

func TestFallbackNotDegradedByCorruptFileEntry(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	fallback := NewFallback(NewFileStore(root), nil)

	require.NoError(t, os.WriteFile(filepath.Join(root, "fp-1.json"), []byte("garbage"), 0600))

	_, ok, err := fallback.Get(ctx, "fp-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// The durable layer stays active: later entries still reach disk.
	require.NoError(t, fallback.Put(ctx, "fp-2", testEntry("core.echo")))

	_, err = os.Stat(filepath.Join(root, "fp-2.json"))
	require.NoError(t, err)
}
