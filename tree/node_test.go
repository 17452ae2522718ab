package tree

import (
	"testing"

	"github.com/jonwraymond/taxtree/taxon"
)

func TestSortedChildren(t *testing.T) {
	root := NewNode(1, "root", taxon.RankRoot, "")
	root.Children[10] = NewNode(10, "Plantae", taxon.RankKingdom, "")
	root.Children[11] = NewNode(11, "Animalia", taxon.RankKingdom, "")
	root.Children[12] = NewNode(12, "Insecta", taxon.RankClass, "")

	got := root.SortedChildren()
	if len(got) != 3 {
		t.Fatalf("got %d children, want 3", len(got))
	}

	// Rank first, then name: the two kingdoms alphabetically, then the class.
	wantOrder := []int64{11, 10, 12}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("position %d: id = %d, want %d", i, got[i].ID, want)
		}
	}
}

func TestNodeClone(t *testing.T) {
	root, _ := MergeAll([]Chain{chainOf(1, 2, 3)})

	clone := root.Clone()
	clone.Children[2].Name = "changed"
	clone.Children[2].Children[3].Gap = true

	if root.Children[2].Name == "changed" {
		t.Error("Clone shares node metadata with original")
	}
	if root.Children[2].Children[3].Gap {
		t.Error("Clone shares descendants with original")
	}
}

func TestNodeLeaves(t *testing.T) {
	root, _ := MergeAll([]Chain{chainOf(1, 2, 3), chainOf(1, 2, 4)})

	leaves := root.Leaves()
	if len(leaves) != 2 {
		t.Fatalf("got %d leaves, want 2", len(leaves))
	}
	seen := map[int64]bool{}
	for _, id := range leaves {
		seen[id] = true
	}
	if !seen[3] || !seen[4] {
		t.Errorf("leaves = %v, want {3, 4}", leaves)
	}
}

func TestNodeSizeAndFind(t *testing.T) {
	var nilNode *Node
	if nilNode.Size() != 0 {
		t.Error("nil node size should be 0")
	}
	if nilNode.Find(1) != nil {
		t.Error("Find on nil node should return nil")
	}

	root, _ := MergeAll([]Chain{chainOf(1, 2, 3)})
	if root.Size() != 3 {
		t.Errorf("size = %d, want 3", root.Size())
	}
	if root.Find(2) == nil {
		t.Error("Find(2) should locate the interior node")
	}
	if root.Find(42) != nil {
		t.Error("Find on absent id should return nil")
	}
}
