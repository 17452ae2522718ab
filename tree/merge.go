package tree

import "fmt"

// Merge inserts a single chain into the tree rooted at root and returns the
// (possibly new) root. A nil root starts a fresh tree from the chain's first
// entry; otherwise the chain must begin at the existing root.
//
// The walk descends from the root toward the leaf, reusing any child whose
// identifier matches the chain's next entry and materializing a new node
// where the chain diverges. Two chains sharing a prefix therefore converge
// onto the same subtree, and re-merging an already-present chain changes
// nothing.
//
// Placement is positional: a gapped chain attaches a taxon directly where
// its own entries put it, so a chain that skips a level another chain
// resolves can materialize the same identifier at two depths. Such trees
// reflect what each chain asserted rather than reconciling the gap.
func Merge(root *Node, chain Chain) (*Node, error) {
	if err := chain.Validate(); err != nil {
		return root, err
	}

	if root == nil {
		root = NewNode(chain[0].ID, chain[0].Name, chain[0].Rank, chain[0].CommonName)
	} else if root.ID != chain[0].ID {
		return root, fmt.Errorf("%w: chain starts at %d, tree rooted at %d",
			ErrRootMismatch, chain[0].ID, root.ID)
	}

	cursor := root
	for _, entry := range chain[1:] {
		child, ok := cursor.Children[entry.ID]
		if !ok {
			child = NewNode(entry.ID, entry.Name, entry.Rank, entry.CommonName)
			child.Gap = entry.Gap
			cursor.Children[entry.ID] = child
		}
		cursor = child
	}
	return root, nil
}

// MergeAll folds Merge over a collection of chains. Malformed chains are
// excluded and reported; the rest of the batch proceeds. The resulting tree
// is independent of chain order: merging any permutation of the same chain
// set yields the same node set and parent relation.
func MergeAll(chains []Chain) (*Node, []error) {
	var (
		root *Node
		errs []error
	)
	for _, chain := range chains {
		next, err := Merge(root, chain)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		root = next
	}
	return root, errs
}
