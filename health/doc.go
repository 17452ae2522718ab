// Package health provides health checking for the tree service's
// dependencies.
//
// A Checker reports the health of one component: the persistent store, the
// remote taxon source. The Aggregator fans out to all registered checkers
// and folds their results into an overall status, exposed through standard
// liveness and readiness HTTP handlers.
package health
