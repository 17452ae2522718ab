package store

import "errors"

// Sentinel errors for store operations.
var (
	// ErrNilTree indicates a Put was called with a nil tree.
	ErrNilTree = errors.New("store: tree is nil")

	// ErrEmptyKey indicates a filtered-tree operation with an empty key.
	ErrEmptyKey = errors.New("store: cache key is empty")

	// ErrClosed indicates an operation on a closed store.
	ErrClosed = errors.New("store: store is closed")
)
