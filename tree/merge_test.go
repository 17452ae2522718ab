package tree

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/jonwraymond/taxtree/taxon"
)

// entry builds a chain entry with a name derived from the id.
func entry(id int64, rank taxon.Rank) ChainEntry {
	return ChainEntry{ID: id, Name: fmt.Sprintf("taxon-%d", id), Rank: rank}
}

// chainOf builds a chain assigning consecutive ranks starting at RankRoot.
func chainOf(ids ...int64) Chain {
	c := make(Chain, len(ids))
	for i, id := range ids {
		c[i] = entry(id, taxon.Rank(i))
	}
	// Leaves are always species.
	if len(c) > 0 {
		c[len(c)-1].Rank = taxon.RankSpecies
	}
	return c
}

// parentRelation flattens a tree into child id -> parent id for
// isomorphism comparison.
func parentRelation(root *Node) map[int64]int64 {
	rel := make(map[int64]int64)
	var walk func(*Node)
	walk = func(n *Node) {
		for id, child := range n.Children {
			rel[id] = n.ID
			walk(child)
		}
	}
	if root != nil {
		walk(root)
	}
	return rel
}

func TestMerge_SharedPrefix(t *testing.T) {
	// Chains [1,2,3] and [1,2,4] merge into a tree where
	// node 1 has one child (2) and node 2 has two children (3, 4).
	root, errs := MergeAll([]Chain{chainOf(1, 2, 3), chainOf(1, 2, 4)})
	if len(errs) != 0 {
		t.Fatalf("MergeAll errors: %v", errs)
	}

	if root.ID != 1 {
		t.Fatalf("root id = %d, want 1", root.ID)
	}
	if len(root.Children) != 1 {
		t.Fatalf("root has %d children, want 1", len(root.Children))
	}
	mid := root.Children[2]
	if mid == nil {
		t.Fatal("node 2 missing under root")
	}
	if len(mid.Children) != 2 {
		t.Fatalf("node 2 has %d children, want 2", len(mid.Children))
	}
	if mid.Children[3] == nil || mid.Children[4] == nil {
		t.Error("nodes 3 and 4 should both be children of node 2")
	}
}

func TestMerge_OrderIndependence(t *testing.T) {
	chains := []Chain{
		chainOf(1, 2, 3),
		chainOf(1, 2, 4),
		chainOf(1, 5, 6),
		chainOf(1, 5, 7),
		chainOf(1, 2, 8),
	}

	perms := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 4, 0, 3, 2},
	}

	var want map[int64]int64
	for i, perm := range perms {
		ordered := make([]Chain, len(chains))
		for j, idx := range perm {
			ordered[j] = chains[idx]
		}
		root, errs := MergeAll(ordered)
		if len(errs) != 0 {
			t.Fatalf("perm %d: MergeAll errors: %v", i, errs)
		}
		rel := parentRelation(root)
		if want == nil {
			want = rel
			continue
		}
		if !reflect.DeepEqual(rel, want) {
			t.Errorf("perm %d: parent relation differs: got %v, want %v", i, rel, want)
		}
	}
}

func TestMerge_Idempotent(t *testing.T) {
	chain := chainOf(1, 2, 3)

	root, err := Merge(nil, chain)
	if err != nil {
		t.Fatalf("first merge failed: %v", err)
	}
	before := root.Size()

	root, err = Merge(root, chain)
	if err != nil {
		t.Fatalf("re-merge failed: %v", err)
	}
	if root.Size() != before {
		t.Errorf("re-merging an existing chain changed size: %d -> %d", before, root.Size())
	}
}

func TestMerge_InvalidChains(t *testing.T) {
	dup := chainOf(1, 2, 3)
	dup[2].ID = 1 // duplicate identifier within the chain

	flat := chainOf(1, 2, 3)
	flat[2].Rank = flat[1].Rank // rank does not exceed predecessor

	tests := []struct {
		name  string
		chain Chain
	}{
		{"empty", Chain{}},
		{"duplicate id", dup},
		{"non-increasing rank", flat},
		{"zero id", Chain{entry(0, taxon.RankRoot)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Merge(nil, tt.chain)
			if !errors.Is(err, ErrInvalidChain) {
				t.Errorf("error = %v, want ErrInvalidChain", err)
			}
		})
	}
}

func TestMergeAll_SkipsInvalidChains(t *testing.T) {
	bad := chainOf(1, 2, 3)
	bad[2].ID = 2 // duplicate

	root, errs := MergeAll([]Chain{chainOf(1, 2, 3), bad, chainOf(1, 2, 4)})
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if !errors.Is(errs[0], ErrInvalidChain) {
		t.Errorf("error = %v, want ErrInvalidChain", errs[0])
	}

	// The valid chains still merged.
	if root.Find(3) == nil || root.Find(4) == nil {
		t.Error("valid chains should survive a malformed sibling")
	}
}

func TestMerge_RootMismatch(t *testing.T) {
	root, err := Merge(nil, chainOf(1, 2, 3))
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	_, err = Merge(root, chainOf(9, 2, 4))
	if !errors.Is(err, ErrRootMismatch) {
		t.Errorf("error = %v, want ErrRootMismatch", err)
	}
}

func TestMerge_GapChain(t *testing.T) {
	// A chain [1,2,3] whose ancestor 2 failed to resolve degrades to
	// [1,3] with the species marked as sitting below a gap.
	degraded := Chain{
		entry(1, taxon.RankRoot),
		{ID: 3, Name: "taxon-3", Rank: taxon.RankSpecies, Gap: true},
	}

	root, err := Merge(nil, degraded)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	leaf := root.Children[3]
	if leaf == nil {
		t.Fatal("species 3 should attach directly under root")
	}
	if !leaf.Gap {
		t.Error("degraded edge should carry the gap marker")
	}
}

func TestMerge_GappedChainPositionalPlacement(t *testing.T) {
	// One chain resolves the family above genus 3, the other skipped it.
	// Placement is positional, so the genus appears both directly under
	// the root (where the gapped chain put it) and under the family.
	gapped := Chain{
		entry(1, taxon.RankKingdom),
		{ID: 3, Name: "taxon-3", Rank: taxon.RankGenus, Gap: true},
		entry(5, taxon.RankSpecies),
	}
	full := Chain{
		entry(1, taxon.RankKingdom),
		entry(2, taxon.RankFamily),
		entry(3, taxon.RankGenus),
		entry(6, taxon.RankSpecies),
	}

	root, errs := MergeAll([]Chain{gapped, full})
	if len(errs) != 0 {
		t.Fatalf("MergeAll() errors = %v", errs)
	}

	occurrences := 0
	var walk func(*Node)
	walk = func(n *Node) {
		if n.ID == 3 {
			occurrences++
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)
	if occurrences != 2 {
		t.Fatalf("id 3 occurs %d times, want 2", occurrences)
	}

	// Each placement carries its own chain's assertion.
	shallow := root.Children[3]
	if shallow == nil || !shallow.Gap {
		t.Error("genus under root should carry the gap marker")
	}
	deep := root.Children[2].Children[3]
	if deep == nil || deep.Gap {
		t.Error("genus under family should not carry the gap marker")
	}
	if shallow.Children[5] == nil || deep.Children[6] == nil {
		t.Error("each placement should keep its own species")
	}
}

func TestChainFrom(t *testing.T) {
	chain := chainOf(1, 2, 3, 4)

	scoped := chain.From(2)
	if len(scoped) != 3 || scoped[0].ID != 2 {
		t.Errorf("From(2) = %v, want suffix starting at 2", scoped)
	}
	if chain.From(99) != nil {
		t.Error("From on absent id should return nil")
	}
	if got := chain.Leaf(); got != 4 {
		t.Errorf("Leaf() = %d, want 4", got)
	}
}
