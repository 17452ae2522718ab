// Package resolve turns taxon identifiers into validated records and
// root-to-leaf ancestor chains.
//
// The Resolver is a read-through cache over a TaxonStore: lookups hit the
// store first and fall back to a remote Source, coalescing concurrent
// requests for the same identifier so the source sees at most one fetch.
// The ChainBuilder assembles ordered ancestor chains from resolved records,
// dropping unresolvable ancestors rather than failing the whole chain.
package resolve
