package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // postgres driver
)

const createCacheTable = `
CREATE TABLE IF NOT EXISTS action_cache (
	fingerprint TEXT PRIMARY KEY,
	action_id   TEXT NOT NULL,
	input       JSONB NOT NULL,
	output      JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps cache entries in a PostgreSQL table, shared across
// runs. The table is created on open.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, createCacheTable); err != nil {
		return nil, fmt.Errorf("failed to create cache table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, fingerprint string) (*Entry, bool, error) {
	var (
		entry  Entry
		input  []byte
		output []byte
	)

	row := s.db.QueryRowContext(ctx,
		`SELECT action_id, input, output, created_at FROM action_cache WHERE fingerprint = $1`,
		fingerprint)

	err := row.Scan(&entry.ActionID, &input, &output, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	entry.Input = json.RawMessage(input)
	if err := json.Unmarshal(output, &entry.Output); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}

	return &entry, true, nil
}

func (s *PostgresStore) Put(ctx context.Context, fingerprint string, entry *Entry) error {
	output, err := json.Marshal(entry.Output)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO action_cache (fingerprint, action_id, input, output, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (fingerprint) DO NOTHING`,
		fingerprint, entry.ActionID, []byte(entry.Input), output, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }
