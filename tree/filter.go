package tree

import "github.com/jonwraymond/taxtree/taxon"

// Filter returns the minimal subtree of root containing exactly the paths
// from the root to the species leaves in keep. The result is a fresh tree;
// the input is never mutated or aliased.
//
// Returns nil when keep is empty or none of its members is a species leaf in
// the tree. An empty result is a normal outcome, not an error.
//
// Two passes: the first walks the tree accumulating the root-to-node path
// and marks every identifier on the path whenever it reaches a kept species
// leaf; the second rebuilds top-down, including only marked nodes.
func Filter(root *Node, keep map[int64]struct{}) *Node {
	if root == nil || len(keep) == 0 {
		return nil
	}

	marked := make(map[int64]struct{})
	path := make([]int64, 0, taxon.MaxDepth)

	var mark func(*Node)
	mark = func(n *Node) {
		path = append(path, n.ID)
		if n.Rank == taxon.RankSpecies {
			if _, ok := keep[n.ID]; ok {
				for _, id := range path {
					marked[id] = struct{}{}
				}
			}
		}
		for _, child := range n.Children {
			mark(child)
		}
		path = path[:len(path)-1]
	}
	mark(root)

	if len(marked) == 0 {
		return nil
	}

	var rebuild func(*Node) *Node
	rebuild = func(n *Node) *Node {
		if _, ok := marked[n.ID]; !ok {
			return nil
		}
		out := NewNode(n.ID, n.Name, n.Rank, n.CommonName)
		out.Gap = n.Gap
		for id, child := range n.Children {
			if kept := rebuild(child); kept != nil {
				out.Children[id] = kept
			}
		}
		return out
	}
	return rebuild(root)
}

// KeepSet builds the set form of a leaf-identifier list for Filter.
func KeepSet(leafIDs []int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(leafIDs))
	for _, id := range leafIDs {
		out[id] = struct{}{}
	}
	return out
}
