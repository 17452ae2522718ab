package store

import (
	"context"
	"sync"

	"github.com/jonwraymond/taxtree/taxon"
)

// MemoryStore is an in-memory Store implementation. It is the store to
// inject in tests and short-lived processes; nothing survives the process.
type MemoryStore struct {
	mu       sync.RWMutex
	taxa     map[int64]taxon.Record
	complete map[int64]*CompleteTree
	filtered map[string]*FilteredTree
	closed   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		taxa:     make(map[int64]taxon.Record),
		complete: make(map[int64]*CompleteTree),
		filtered: make(map[string]*FilteredTree),
	}
}

// GetTaxon retrieves a record by id. Returns ok=false on miss.
func (s *MemoryStore) GetTaxon(_ context.Context, id int64) (taxon.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return taxon.Record{}, false, ErrClosed
	}
	rec, ok := s.taxa[id]
	if !ok {
		return taxon.Record{}, false, nil
	}
	return rec.Clone(), true, nil
}

// PutTaxon upserts a record keyed by its id.
func (s *MemoryStore) PutTaxon(_ context.Context, rec taxon.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.taxa[rec.ID] = rec.Clone()
	return nil
}

// GetCompleteTree retrieves the complete tree for a root id.
func (s *MemoryStore) GetCompleteTree(_ context.Context, rootID int64) (*CompleteTree, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	t, ok := s.complete[rootID]
	if !ok {
		return nil, false, nil
	}
	return cloneComplete(t), true, nil
}

// PutCompleteTree upserts a complete tree keyed by its root id.
func (s *MemoryStore) PutCompleteTree(_ context.Context, t *CompleteTree) error {
	if t == nil {
		return ErrNilTree
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.complete[t.RootID] = cloneComplete(t)
	return nil
}

// GetFilteredTree retrieves a filtered tree by cache key.
func (s *MemoryStore) GetFilteredTree(_ context.Context, key string) (*FilteredTree, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	t, ok := s.filtered[key]
	if !ok {
		return nil, false, nil
	}
	return cloneFiltered(t), true, nil
}

// PutFilteredTree upserts a filtered tree keyed by its cache key.
func (s *MemoryStore) PutFilteredTree(_ context.Context, t *FilteredTree) error {
	if t == nil {
		return ErrNilTree
	}
	if t.Key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.filtered[t.Key] = cloneFiltered(t)
	return nil
}

// Close marks the store closed. Idempotent.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// cloneComplete deep-copies a complete tree so callers and the store never
// share a node graph.
func cloneComplete(t *CompleteTree) *CompleteTree {
	out := *t
	out.Root = t.Root.Clone()
	return &out
}

func cloneFiltered(t *FilteredTree) *FilteredTree {
	out := *t
	out.Root = t.Root.Clone()
	return &out
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
