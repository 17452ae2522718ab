// Package treecache coordinates building, caching, and refreshing taxonomy
// trees.
//
// A Coordinator owns two cache tiers: complete trees keyed by root taxon,
// and filtered views keyed by a canonical (root, leaf-set) key. Lookups are
// lazy; staleness is evaluated on read and a stale entry is rebuilt in
// place. Concurrent requests for the same tree are coalesced so each tree
// is built at most once, and an in-flight build finishes even when the
// caller that started it goes away.
package treecache
