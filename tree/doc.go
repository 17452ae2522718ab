// Package tree implements the taxonomy tree: a typed node structure, the
// merge engine that folds ancestor chains into one deduplicated rooted tree,
// and the pure filter engine that prunes a tree to the paths reaching a
// requested leaf set.
//
// Merging is trie-style insertion keyed by taxon id, so the final structure
// is independent of the order chains are merged in. Serialization for
// persistence lives in a separate codec so stored snapshots never leak the
// in-memory representation.
package tree
