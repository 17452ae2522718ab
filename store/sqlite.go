package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/jonwraymond/taxtree/taxon"
	"github.com/jonwraymond/taxtree/tree"
)

// SQLiteStore is an embedded durable Store backed by a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS taxa (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	rank TEXT NOT NULL,
	common_name TEXT NOT NULL DEFAULT '',
	ancestor_ids TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS complete_trees (
	root_id INTEGER PRIMARY KEY,
	snapshot BLOB NOT NULL,
	species_count INTEGER NOT NULL,
	complete INTEGER NOT NULL,
	built_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS filtered_trees (
	cache_key TEXT PRIMARY KEY,
	root_id INTEGER NOT NULL,
	snapshot BLOB NOT NULL,
	built_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS filtered_trees_built_idx ON filtered_trees(built_at);
`

// NewSQLiteStore opens (creating if needed) the database at path and ensures
// the schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "taxtree.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("store: create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ensure schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// GetTaxon retrieves a record by id. Returns ok=false on miss.
func (s *SQLiteStore) GetTaxon(ctx context.Context, id int64) (taxon.Record, bool, error) {
	var (
		rec       taxon.Record
		rankName  string
		ancestors string
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, rank, common_name, ancestor_ids FROM taxa WHERE id = ?`, id)
	if err := row.Scan(&rec.ID, &rec.Name, &rankName, &rec.CommonName, &ancestors); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return taxon.Record{}, false, nil
		}
		return taxon.Record{}, false, fmt.Errorf("store: select taxon %d: %w", id, err)
	}
	rank, err := taxon.ParseRank(rankName)
	if err != nil {
		return taxon.Record{}, false, fmt.Errorf("store: taxon %d: %w", id, err)
	}
	rec.Rank = rank
	if err := json.Unmarshal([]byte(ancestors), &rec.AncestorIDs); err != nil {
		return taxon.Record{}, false, fmt.Errorf("store: taxon %d ancestors: %w", id, err)
	}
	return rec, true, nil
}

// PutTaxon upserts a record keyed by its id.
func (s *SQLiteStore) PutTaxon(ctx context.Context, rec taxon.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	ancestors, err := json.Marshal(rec.AncestorIDs)
	if err != nil {
		return fmt.Errorf("store: encode ancestors: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO taxa (id, name, rank, common_name, ancestor_ids)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			rank = excluded.rank,
			common_name = excluded.common_name,
			ancestor_ids = excluded.ancestor_ids`,
		rec.ID, rec.Name, rec.Rank.String(), rec.CommonName, string(ancestors))
	if err != nil {
		return fmt.Errorf("store: upsert taxon %d: %w", rec.ID, err)
	}
	return nil
}

// GetCompleteTree retrieves the complete tree for a root id.
func (s *SQLiteStore) GetCompleteTree(ctx context.Context, rootID int64) (*CompleteTree, bool, error) {
	var (
		out      CompleteTree
		snapshot []byte
		complete int
		builtAt  string
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT root_id, snapshot, species_count, complete, built_at FROM complete_trees WHERE root_id = ?`, rootID)
	if err := row.Scan(&out.RootID, &snapshot, &out.SpeciesCount, &complete, &builtAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store: select complete tree %d: %w", rootID, err)
	}
	root, err := tree.UnmarshalSnapshot(snapshot)
	if err != nil {
		return nil, false, fmt.Errorf("store: complete tree %d: %w", rootID, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, builtAt)
	if err != nil {
		return nil, false, fmt.Errorf("store: complete tree %d built_at: %w", rootID, err)
	}
	out.Root = root
	out.Complete = complete != 0
	out.BuiltAt = ts
	return &out, true, nil
}

// PutCompleteTree upserts a complete tree keyed by its root id.
func (s *SQLiteStore) PutCompleteTree(ctx context.Context, t *CompleteTree) error {
	if t == nil {
		return ErrNilTree
	}
	snapshot, err := tree.MarshalSnapshot(t.Root)
	if err != nil {
		return fmt.Errorf("store: encode complete tree %d: %w", t.RootID, err)
	}
	complete := 0
	if t.Complete {
		complete = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO complete_trees (root_id, snapshot, species_count, complete, built_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(root_id) DO UPDATE SET
			snapshot = excluded.snapshot,
			species_count = excluded.species_count,
			complete = excluded.complete,
			built_at = excluded.built_at`,
		t.RootID, snapshot, t.SpeciesCount, complete, t.BuiltAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store: upsert complete tree %d: %w", t.RootID, err)
	}
	return nil
}

// GetFilteredTree retrieves a filtered tree by cache key.
func (s *SQLiteStore) GetFilteredTree(ctx context.Context, key string) (*FilteredTree, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	var (
		out      FilteredTree
		snapshot []byte
		builtAt  string
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT cache_key, root_id, snapshot, built_at FROM filtered_trees WHERE cache_key = ?`, key)
	if err := row.Scan(&out.Key, &out.RootID, &snapshot, &builtAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store: select filtered tree %q: %w", key, err)
	}
	root, err := tree.UnmarshalSnapshot(snapshot)
	if err != nil {
		return nil, false, fmt.Errorf("store: filtered tree %q: %w", key, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, builtAt)
	if err != nil {
		return nil, false, fmt.Errorf("store: filtered tree %q built_at: %w", key, err)
	}
	out.Root = root
	out.BuiltAt = ts
	return &out, true, nil
}

// PutFilteredTree upserts a filtered tree keyed by its cache key.
func (s *SQLiteStore) PutFilteredTree(ctx context.Context, t *FilteredTree) error {
	if t == nil {
		return ErrNilTree
	}
	if t.Key == "" {
		return ErrEmptyKey
	}
	snapshot, err := tree.MarshalSnapshot(t.Root)
	if err != nil {
		return fmt.Errorf("store: encode filtered tree %q: %w", t.Key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO filtered_trees (cache_key, root_id, snapshot, built_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			root_id = excluded.root_id,
			snapshot = excluded.snapshot,
			built_at = excluded.built_at`,
		t.Key, t.RootID, snapshot, t.BuiltAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store: upsert filtered tree %q: %w", t.Key, err)
	}
	return nil
}

// Close closes the underlying database. Idempotent.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)
