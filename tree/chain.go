package tree

import (
	"fmt"

	"github.com/jonwraymond/taxtree/taxon"
)

// ChainEntry is one resolved taxon in a root-to-leaf ancestor chain,
// carrying the metadata a merged node needs.
type ChainEntry struct {
	ID         int64
	Name       string
	Rank       taxon.Rank
	CommonName string

	// Gap records that the ancestor immediately above this entry was
	// dropped during resolution, so the edge to the previous entry skips
	// part of the true lineage.
	Gap bool
}

// Chain is an ordered root-to-leaf ancestor chain. Entries run from the
// universal root (or a scoped root) down to the species leaf.
type Chain []ChainEntry

// Validate rejects malformed chains: empty chains, duplicate identifiers,
// and entries whose rank does not strictly exceed their predecessor's.
func (c Chain) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("%w: empty chain", ErrInvalidChain)
	}
	seen := make(map[int64]struct{}, len(c))
	for i, entry := range c {
		if entry.ID <= 0 {
			return fmt.Errorf("%w: non-positive id %d at position %d", ErrInvalidChain, entry.ID, i)
		}
		if _, dup := seen[entry.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidChain, entry.ID)
		}
		seen[entry.ID] = struct{}{}
		if i > 0 && entry.Rank <= c[i-1].Rank {
			return fmt.Errorf("%w: rank %s at position %d does not exceed predecessor %s",
				ErrInvalidChain, entry.Rank, i, c[i-1].Rank)
		}
	}
	return nil
}

// Leaf returns the identifier of the chain's final entry, or 0 for an empty
// chain.
func (c Chain) Leaf() int64 {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1].ID
}

// From returns the suffix of the chain starting at rootID, used to scope a
// full chain to a subtree root. Returns nil when rootID is not on the chain.
func (c Chain) From(rootID int64) Chain {
	for i, entry := range c {
		if entry.ID == rootID {
			return c[i:]
		}
	}
	return nil
}
