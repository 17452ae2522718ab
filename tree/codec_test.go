package tree

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jonwraymond/taxtree/taxon"
)

func TestSnapshotRoundTrip(t *testing.T) {
	root, errs := MergeAll([]Chain{
		chainOf(1, 2, 3),
		chainOf(1, 2, 4),
		chainOf(1, 5, 6),
	})
	if len(errs) != 0 {
		t.Fatalf("MergeAll errors: %v", errs)
	}
	root.Children[2].Children[3].Gap = true

	data, err := MarshalSnapshot(root)
	if err != nil {
		t.Fatalf("MarshalSnapshot failed: %v", err)
	}

	decoded, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot failed: %v", err)
	}

	if decoded.Size() != root.Size() {
		t.Errorf("size after round trip = %d, want %d", decoded.Size(), root.Size())
	}
	leaf := decoded.Find(3)
	if leaf == nil {
		t.Fatal("leaf 3 missing after round trip")
	}
	if !leaf.Gap {
		t.Error("gap marker lost in snapshot")
	}
	if leaf.Rank != taxon.RankSpecies {
		t.Errorf("leaf rank = %s, want species", leaf.Rank)
	}
}

func TestSnapshotDeterministic(t *testing.T) {
	// The same chain set in any order must produce identical snapshots.
	forward, _ := MergeAll([]Chain{chainOf(1, 2, 3), chainOf(1, 2, 4), chainOf(1, 5, 6)})
	reverse, _ := MergeAll([]Chain{chainOf(1, 5, 6), chainOf(1, 2, 4), chainOf(1, 2, 3)})

	a, err := MarshalSnapshot(forward)
	if err != nil {
		t.Fatalf("MarshalSnapshot failed: %v", err)
	}
	b, err := MarshalSnapshot(reverse)
	if err != nil {
		t.Fatalf("MarshalSnapshot failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("snapshots differ by merge order:\n%s\n%s", a, b)
	}
}

func TestSnapshotNil(t *testing.T) {
	data, err := MarshalSnapshot(nil)
	if err != nil {
		t.Fatalf("MarshalSnapshot(nil) failed: %v", err)
	}
	decoded, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot failed: %v", err)
	}
	if decoded != nil {
		t.Error("nil tree should round trip to nil")
	}
}

func TestUnmarshalSnapshot_DepthBound(t *testing.T) {
	// Build a snapshot one level deeper than the rank ceiling.
	var sb strings.Builder
	for i := 0; i <= taxon.MaxDepth; i++ {
		if i > 0 {
			sb.WriteString(`,"children":[`)
		}
		sb.WriteString(`{"id":` + string(rune('1'+i)) + `,"name":"n","rank":"kingdom"`)
	}
	sb.WriteString(`}`)
	for i := 0; i < taxon.MaxDepth; i++ {
		sb.WriteString(`]}`)
	}

	_, err := UnmarshalSnapshot([]byte(sb.String()))
	if !errors.Is(err, ErrDepthExceeded) {
		t.Errorf("error = %v, want ErrDepthExceeded", err)
	}
}

func TestUnmarshalSnapshot_BadRank(t *testing.T) {
	_, err := UnmarshalSnapshot([]byte(`{"id":1,"name":"n","rank":"subphylum"}`))
	if err == nil {
		t.Fatal("unknown rank should fail decoding")
	}
	if !errors.Is(err, taxon.ErrUnknownRank) {
		t.Errorf("error = %v, want taxon.ErrUnknownRank", err)
	}
}
