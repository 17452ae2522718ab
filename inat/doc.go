// Package inat is a typed client for the iNaturalist API.
//
// It implements resolve.Source for taxon lookups and exposes the species
// listing used to seed tree builds. Responses are mapped onto the record
// and error vocabulary of the rest of the module: missing taxa become
// resolve.ErrNotFound, rate limits and server errors become
// resolve.ErrTransient.
package inat
