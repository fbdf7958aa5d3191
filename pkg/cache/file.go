package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists one JSON record per fingerprint under a root
// directory. Records are readable and writable independent of any run.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &FileStore{root: cleanRoot}
}

func (s *FileStore) Get(_ context.Context, fingerprint string) (*Entry, bool, error) {
	data, err := os.ReadFile(s.path(fingerprint))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// An undecodable record is a miss, not a store failure; the
		// handler re-executes and Put replaces the record.
		return nil, false, nil
	}

	return &entry, true, nil
}

func (s *FileStore) Put(_ context.Context, fingerprint string, entry *Entry) error {
	if err := os.MkdirAll(s.root, 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	// Write to a temp file and rename so a concurrent Get sees either the
	// old record or the new one, never a partial write.
	tmp, err := os.CreateTemp(s.root, fingerprint+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create cache temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(fingerprint)); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("failed to publish cache entry: %w", err)
	}

	return nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(fingerprint string) string {
	return filepath.Join(s.root, fingerprint+".json")
}
