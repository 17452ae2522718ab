package tree

import (
	"sort"

	"github.com/jonwraymond/taxtree/taxon"
)

// Node is a single taxon in a taxonomy tree. A node is owned exclusively by
// the tree that contains it; merge and filter never alias nodes across
// trees. A given identifier occurs at most once per tree.
type Node struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Rank       taxon.Rank `json:"rank"`
	CommonName string     `json:"common_name"`

	// Gap marks an edge that skips one or more ancestors that could not be
	// resolved: this node attaches to the nearest still-known ancestor
	// rather than its true parent.
	Gap bool `json:"gap,omitempty"`

	// Children maps child identifier to child node. Insertion order is
	// irrelevant; presentation order comes from SortedChildren.
	Children map[int64]*Node `json:"-"`
}

// NewNode creates a childless node with the given metadata.
func NewNode(id int64, name string, rank taxon.Rank, commonName string) *Node {
	return &Node{
		ID:         id,
		Name:       name,
		Rank:       rank,
		CommonName: commonName,
		Children:   make(map[int64]*Node),
	}
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		ID:         n.ID,
		Name:       n.Name,
		Rank:       n.Rank,
		CommonName: n.CommonName,
		Gap:        n.Gap,
		Children:   make(map[int64]*Node, len(n.Children)),
	}
	for id, child := range n.Children {
		out.Children[id] = child.Clone()
	}
	return out
}

// SortedChildren returns the children ordered by rank, then name. Sibling
// order is a presentation concern only and is never stored.
func (n *Node) SortedChildren() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		out = append(out, child)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Size returns the number of nodes in the subtree rooted at n.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, child := range n.Children {
		total += child.Size()
	}
	return total
}

// Leaves returns the identifiers of all species-rank nodes in the subtree.
func (n *Node) Leaves() []int64 {
	if n == nil {
		return nil
	}
	var out []int64
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.Rank == taxon.RankSpecies {
			out = append(out, cur.ID)
		}
		for _, child := range cur.Children {
			walk(child)
		}
	}
	walk(n)
	return out
}

// Find returns the node with the given identifier, or nil if absent.
func (n *Node) Find(id int64) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(id); found != nil {
			return found
		}
	}
	return nil
}
