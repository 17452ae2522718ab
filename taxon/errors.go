package taxon

import "errors"

// Sentinel errors for record and rank validation.
var (
	// ErrUnknownRank indicates a rank name outside the fixed vocabulary.
	ErrUnknownRank = errors.New("taxon: unknown rank")

	// ErrInvalidRecord indicates a record that fails validation.
	ErrInvalidRecord = errors.New("taxon: invalid record")
)
