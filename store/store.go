package store

import (
	"context"
	"time"

	"github.com/jonwraymond/taxtree/taxon"
	"github.com/jonwraymond/taxtree/tree"
)

// CompleteTree is a fully merged tree for a root taxon, plus build metadata.
// It is replaced wholesale on rebuild, never patched in place.
type CompleteTree struct {
	// RootID is the taxon the tree is rooted at.
	RootID int64

	// Root is the tree itself.
	Root *tree.Node

	// SpeciesCount is the number of species chains the tree was built from.
	SpeciesCount int

	// Complete is false while the tree is still being assembled.
	Complete bool

	// BuiltAt is the build timestamp staleness is evaluated against.
	BuiltAt time.Time
}

// FilteredTree is a cached pruned view of a complete tree for a specific
// leaf set. Its lifecycle is independent of the complete tree it was derived
// from.
type FilteredTree struct {
	// Key is the canonical (root, leaf-set) cache key.
	Key string

	// RootID is the taxon the view is rooted at.
	RootID int64

	// Root is the pruned tree.
	Root *tree.Node

	// BuiltAt is the build timestamp staleness is evaluated against.
	BuiltAt time.Time
}

// TaxonStore persists taxon records keyed by identifier.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Writes: PutTaxon is an idempotent upsert; re-writing a record is safe.
// - Misses: GetTaxon returns ok=false on a miss, never an error.
type TaxonStore interface {
	// GetTaxon retrieves a record by id. Returns ok=false on miss.
	GetTaxon(ctx context.Context, id int64) (taxon.Record, bool, error)

	// PutTaxon upserts a record keyed by its id.
	PutTaxon(ctx context.Context, rec taxon.Record) error
}

// TreeStore persists complete trees keyed by root id and filtered trees
// keyed by canonical cache key.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Writes: each Put is an atomic per-key upsert; a crash mid-write never
//   leaves a partial entry visible to readers.
// - Ownership: returned trees are owned by the caller; implementations must
//   not retain or alias the node graph they return or receive.
type TreeStore interface {
	// GetCompleteTree retrieves the complete tree for a root id.
	GetCompleteTree(ctx context.Context, rootID int64) (*CompleteTree, bool, error)

	// PutCompleteTree upserts a complete tree keyed by its root id.
	PutCompleteTree(ctx context.Context, t *CompleteTree) error

	// GetFilteredTree retrieves a filtered tree by cache key.
	GetFilteredTree(ctx context.Context, key string) (*FilteredTree, bool, error)

	// PutFilteredTree upserts a filtered tree keyed by its cache key.
	PutFilteredTree(ctx context.Context, t *FilteredTree) error
}

// Store combines both persistence contracts behind one handle.
type Store interface {
	TaxonStore
	TreeStore

	// Close releases the underlying resources. Idempotent.
	Close() error
}
