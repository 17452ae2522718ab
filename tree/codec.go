package tree

import (
	"encoding/json"
	"fmt"

	"github.com/jonwraymond/taxtree/taxon"
)

// snapshotNode is the persisted form of a Node. Children are stored as an
// array in presentation order (rank, then name), which keeps snapshots
// byte-stable for a given tree and keeps identifiers as integers end to end.
type snapshotNode struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Rank       string         `json:"rank"`
	CommonName string         `json:"common_name,omitempty"`
	Gap        bool           `json:"gap,omitempty"`
	Children   []snapshotNode `json:"children,omitempty"`
}

// MarshalSnapshot encodes the tree rooted at root for persistence.
func MarshalSnapshot(root *Node) ([]byte, error) {
	if root == nil {
		return []byte("null"), nil
	}
	return json.Marshal(toSnapshot(root))
}

// UnmarshalSnapshot decodes a persisted snapshot into a fresh tree.
// Snapshots deeper than the rank ceiling are rejected.
func UnmarshalSnapshot(data []byte) (*Node, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var snap snapshotNode
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("tree: decode snapshot: %w", err)
	}
	return fromSnapshot(snap, 1)
}

func toSnapshot(n *Node) snapshotNode {
	out := snapshotNode{
		ID:         n.ID,
		Name:       n.Name,
		Rank:       n.Rank.String(),
		CommonName: n.CommonName,
		Gap:        n.Gap,
	}
	if len(n.Children) > 0 {
		out.Children = make([]snapshotNode, 0, len(n.Children))
		for _, child := range n.SortedChildren() {
			out.Children = append(out.Children, toSnapshot(child))
		}
	}
	return out
}

func fromSnapshot(snap snapshotNode, depth int) (*Node, error) {
	if depth > taxon.MaxDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrDepthExceeded, depth)
	}
	rank, err := taxon.ParseRank(snap.Rank)
	if err != nil {
		return nil, fmt.Errorf("tree: decode snapshot node %d: %w", snap.ID, err)
	}
	node := NewNode(snap.ID, snap.Name, rank, snap.CommonName)
	node.Gap = snap.Gap
	for _, child := range snap.Children {
		decoded, err := fromSnapshot(child, depth+1)
		if err != nil {
			return nil, err
		}
		node.Children[decoded.ID] = decoded
	}
	return node, nil
}
