// Package taxon defines the core taxonomic vocabulary: ranks with a fixed
// total order, taxon records as fetched from a remote biodiversity source,
// and validation for both.
package taxon
