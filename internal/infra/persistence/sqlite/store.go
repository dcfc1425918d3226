// Package sqlite persists the in-memory contract state to an embedded SQLite
// file, snapshotting every module bucket as JSON after each successful
// transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"seathub/internal/infra/persistence/memory"
	"seathub/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

// Store wraps the in-memory store with durable SQLite snapshots. The memory
// store stays authoritative for transaction semantics; this layer only loads
// on open and persists after commit.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// sqliteBuckets mirrors the per-module storage namespaces.
var sqliteBuckets = []string{
	"owner",
	"metadata",
	"hub_contract",
	"token_config",
	"tokens",
	"redeemed_items",
	"listed_tokens",
	"primary_sales",
}

// NewStore opens (or creates) a snapshotting SQLite-backed store at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "seathub.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshot memory.Snapshot
	loaded := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan state: %w", err)
		}
		if len(payload) == 0 {
			continue
		}
		target, ok := bucketTarget(&snapshot, bucket)
		if !ok {
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return fmt.Errorf("decode %s: %w", bucket, err)
		}
		loaded = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if loaded {
		s.ImportState(snapshot)
	}
	return nil
}

func bucketTarget(snapshot *memory.Snapshot, bucket string) (any, bool) {
	switch bucket {
	case "owner":
		return &snapshot.Owner, true
	case "metadata":
		return &snapshot.Metadata, true
	case "hub_contract":
		return &snapshot.HubContract, true
	case "token_config":
		return &snapshot.TokenConfig, true
	case "tokens":
		return &snapshot.Tokens, true
	case "redeemed_items":
		return &snapshot.RedeemedItems, true
	case "listed_tokens":
		return &snapshot.ListedTokens, true
	case "primary_sales":
		return &snapshot.PrimarySales, true
	default:
		return nil, false
	}
}

func bucketPayload(snapshot memory.Snapshot, bucket string) (any, bool) {
	switch bucket {
	case "owner":
		return snapshot.Owner, true
	case "metadata":
		return snapshot.Metadata, true
	case "hub_contract":
		return snapshot.HubContract, true
	case "token_config":
		return snapshot.TokenConfig, true
	case "tokens":
		return snapshot.Tokens, true
	case "redeemed_items":
		return snapshot.RedeemedItems, true
	case "listed_tokens":
		return snapshot.ListedTokens, true
	case "primary_sales":
		return snapshot.PrimarySales, true
	default:
		return nil, false
	}
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range sqliteBuckets {
		payload, ok := bucketPayload(snapshot, bucket)
		if !ok {
			continue
		}
		data, err := json.Marshal(payload)
		if err != nil {
			retErr = fmt.Errorf("encode %s: %w", bucket, err)
			return retErr
		}
		if _, err := tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	return tx.Commit()
}

// RunInTransaction applies fn within a transaction, then snapshots state to
// SQLite if successful.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) error {
	if err := s.Store.RunInTransaction(ctx, fn); err != nil {
		return err
	}
	if err := s.persist(); err != nil {
		return domain.StorageError{Err: err}
	}
	return nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
