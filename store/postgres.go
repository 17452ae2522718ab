package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/jonwraymond/taxtree/taxon"
	"github.com/jonwraymond/taxtree/tree"
)

// PostgresStore is a durable Store backed by Postgres, for deployments where
// many processes share one cache.
type PostgresStore struct {
	db *sql.DB
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS taxa (
	id BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	rank TEXT NOT NULL,
	common_name TEXT NOT NULL DEFAULT '',
	ancestor_ids JSONB NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS complete_trees (
	root_id BIGINT PRIMARY KEY,
	snapshot JSONB NOT NULL,
	species_count INTEGER NOT NULL,
	complete BOOLEAN NOT NULL,
	built_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS filtered_trees (
	cache_key TEXT PRIMARY KEY,
	root_id BIGINT NOT NULL,
	snapshot JSONB NOT NULL,
	built_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS filtered_trees_built_idx ON filtered_trees(built_at);
`

// NewPostgresStore opens a Postgres-backed store using the provided DSN and
// ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ensure schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// GetTaxon retrieves a record by id. Returns ok=false on miss.
func (s *PostgresStore) GetTaxon(ctx context.Context, id int64) (taxon.Record, bool, error) {
	var (
		rec       taxon.Record
		rankName  string
		ancestors []byte
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, rank, common_name, ancestor_ids FROM taxa WHERE id = $1`, id)
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
	if err := json.Unmarshal(ancestors, &rec.AncestorIDs); err != nil {
		return taxon.Record{}, false, fmt.Errorf("store: taxon %d ancestors: %w", id, err)
	}
	return rec, true, nil
}

// PutTaxon upserts a record keyed by its id.
func (s *PostgresStore) PutTaxon(ctx context.Context, rec taxon.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	ancestors, err := json.Marshal(rec.AncestorIDs)
	if err != nil {
		return fmt.Errorf("store: encode ancestors: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO taxa (id, name, rank, common_name, ancestor_ids)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			rank = EXCLUDED.rank,
			common_name = EXCLUDED.common_name,
			ancestor_ids = EXCLUDED.ancestor_ids`,
		rec.ID, rec.Name, rec.Rank.String(), rec.CommonName, ancestors)
	if err != nil {
		return fmt.Errorf("store: upsert taxon %d: %w", rec.ID, err)
	}
	return nil
}

// GetCompleteTree retrieves the complete tree for a root id.
func (s *PostgresStore) GetCompleteTree(ctx context.Context, rootID int64) (*CompleteTree, bool, error) {
	var (
		out      CompleteTree
		snapshot []byte
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT root_id, snapshot, species_count, complete, built_at FROM complete_trees WHERE root_id = $1`, rootID)
	if err := row.Scan(&out.RootID, &snapshot, &out.SpeciesCount, &out.Complete, &out.BuiltAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store: select complete tree %d: %w", rootID, err)
	}
	root, err := tree.UnmarshalSnapshot(snapshot)
	if err != nil {
		return nil, false, fmt.Errorf("store: complete tree %d: %w", rootID, err)
	}
	out.Root = root
	return &out, true, nil
}

// PutCompleteTree upserts a complete tree keyed by its root id.
func (s *PostgresStore) PutCompleteTree(ctx context.Context, t *CompleteTree) error {
	if t == nil {
		return ErrNilTree
	}
	snapshot, err := tree.MarshalSnapshot(t.Root)
	if err != nil {
		return fmt.Errorf("store: encode complete tree %d: %w", t.RootID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO complete_trees (root_id, snapshot, species_count, complete, built_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (root_id) DO UPDATE SET
			snapshot = EXCLUDED.snapshot,
			species_count = EXCLUDED.species_count,
			complete = EXCLUDED.complete,
			built_at = EXCLUDED.built_at`,
		t.RootID, snapshot, t.SpeciesCount, t.Complete, t.BuiltAt.UTC())
	if err != nil {
		return fmt.Errorf("store: upsert complete tree %d: %w", t.RootID, err)
	}
	return nil
}

// GetFilteredTree retrieves a filtered tree by cache key.
func (s *PostgresStore) GetFilteredTree(ctx context.Context, key string) (*FilteredTree, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	var (
		out      FilteredTree
		snapshot []byte
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT cache_key, root_id, snapshot, built_at FROM filtered_trees WHERE cache_key = $1`, key)
	if err := row.Scan(&out.Key, &out.RootID, &snapshot, &out.BuiltAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store: select filtered tree %q: %w", key, err)
	}
	root, err := tree.UnmarshalSnapshot(snapshot)
	if err != nil {
		return nil, false, fmt.Errorf("store: filtered tree %q: %w", key, err)
	}
	out.Root = root
	return &out, true, nil
}

// PutFilteredTree upserts a filtered tree keyed by its cache key.
func (s *PostgresStore) PutFilteredTree(ctx context.Context, t *FilteredTree) error {
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
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cache_key) DO UPDATE SET
			root_id = EXCLUDED.root_id,
			snapshot = EXCLUDED.snapshot,
			built_at = EXCLUDED.built_at`,
		t.Key, t.RootID, snapshot, t.BuiltAt.UTC())
	if err != nil {
		return fmt.Errorf("store: upsert filtered tree %q: %w", t.Key, err)
	}
	return nil
}

// Close closes the underlying pool. Idempotent.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ensure PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)
