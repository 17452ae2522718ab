package store

import (
	"context"
	"testing"
	"time"

	"github.com/jonwraymond/taxtree/taxon"
)

func TestMemoryStore_NoAliasing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	in := &CompleteTree{RootID: 1, Root: testTree(), SpeciesCount: 1, Complete: true, BuiltAt: time.Now()}
	if err := s.PutCompleteTree(ctx, in); err != nil {
		t.Fatalf("PutCompleteTree failed: %v", err)
	}

	// Mutating the caller's tree after Put must not affect the store.
	in.Root.Name = "mutated"
	got, _, err := s.GetCompleteTree(ctx, 1)
	if err != nil {
		t.Fatalf("GetCompleteTree failed: %v", err)
	}
	if got.Root.Name == "mutated" {
		t.Error("store aliased the tree passed to Put")
	}

	// Mutating one Get result must not affect the next.
	got.Root.Children[2].Name = "also mutated"
	again, _, err := s.GetCompleteTree(ctx, 1)
	if err != nil {
		t.Fatalf("GetCompleteTree failed: %v", err)
	}
	if again.Root.Children[2].Name == "also mutated" {
		t.Error("two Get calls share one node graph")
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Close is idempotent.
	if err := s.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if _, _, err := s.GetTaxon(ctx, 1); err != ErrClosed {
		t.Errorf("GetTaxon error = %v, want ErrClosed", err)
	}
	if err := s.PutTaxon(ctx, taxon.Record{ID: 1, Name: "x", Rank: taxon.RankGenus}); err != ErrClosed {
		t.Errorf("PutTaxon error = %v, want ErrClosed", err)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int64) {
			defer func() { done <- struct{}{} }()
			for j := int64(1); j <= 50; j++ {
				id := n*1000 + j
				rec := taxon.Record{ID: id, Name: "t", Rank: taxon.RankSpecies}
				if err := s.PutTaxon(ctx, rec); err != nil {
					t.Errorf("PutTaxon(%d) failed: %v", id, err)
					return
				}
				if _, ok, err := s.GetTaxon(ctx, id); err != nil || !ok {
					t.Errorf("GetTaxon(%d): ok=%v err=%v", id, ok, err)
					return
				}
			}
		}(int64(i + 1))
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
