package taxon

import "fmt"

// Record is a single taxon as fetched from the remote source and persisted
// locally. Records are immutable once stored, except for idempotent
// common-name corrections.
type Record struct {
	// ID is the globally unique taxon identifier.
	ID int64 `json:"id"`

	// Name is the scientific display name.
	Name string `json:"name"`

	// Rank is the taxon's level in the hierarchy.
	Rank Rank `json:"rank"`

	// CommonName is the vernacular name. Empty when the source omits it,
	// never absent, so downstream formatting never sees a null.
	CommonName string `json:"common_name"`

	// AncestorIDs is the ordered ancestor identifier list, root first,
	// not including the record itself.
	AncestorIDs []int64 `json:"ancestor_ids"`
}

// Validate checks the structural invariants a record must satisfy before it
// is persisted: a positive identifier, a name, a known rank, and an ancestor
// list free of duplicates and of the record's own id. Rank ordering across
// ancestors is a chain-level property and is checked when chains are built.
func (r Record) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("%w: non-positive id %d", ErrInvalidRecord, r.ID)
	}
	if r.Name == "" {
		return fmt.Errorf("%w: id %d has empty name", ErrInvalidRecord, r.ID)
	}
	if !r.Rank.Valid() {
		return fmt.Errorf("%w: id %d has invalid rank %d", ErrInvalidRecord, r.ID, int(r.Rank))
	}
	seen := make(map[int64]struct{}, len(r.AncestorIDs))
	for _, aid := range r.AncestorIDs {
		if aid == r.ID {
			return fmt.Errorf("%w: id %d lists itself as ancestor", ErrInvalidRecord, r.ID)
		}
		if _, dup := seen[aid]; dup {
			return fmt.Errorf("%w: id %d has duplicate ancestor %d", ErrInvalidRecord, r.ID, aid)
		}
		seen[aid] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	if r.AncestorIDs != nil {
		out.AncestorIDs = make([]int64, len(r.AncestorIDs))
		copy(out.AncestorIDs, r.AncestorIDs)
	}
	return out
}
