// Package store defines the persistence contracts for taxon records and
// cached trees, with three implementations: an in-memory store for tests and
// short-lived processes, an embedded SQLite store, and a Postgres store.
//
// Every write is an idempotent upsert keyed by taxon id or cache key, so
// retried or duplicated writes are safe. Tree snapshots are written
// atomically per key; readers never observe a half-written entry.
package store
