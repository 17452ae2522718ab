package tree

import "errors"

// Sentinel errors for merge and codec operations.
var (
	// ErrInvalidChain indicates a malformed chain: empty, containing a
	// duplicate identifier, or with ranks that do not strictly increase.
	ErrInvalidChain = errors.New("tree: invalid chain")

	// ErrRootMismatch indicates a chain whose first element does not match
	// the root of the tree it is being merged into.
	ErrRootMismatch = errors.New("tree: chain root mismatch")

	// ErrDepthExceeded indicates a stored snapshot deeper than the rank
	// ceiling allows.
	ErrDepthExceeded = errors.New("tree: max depth exceeded")
)
