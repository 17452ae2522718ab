// Package throttle protects the remote taxon source: a token-bucket Limiter
// shared by every concurrent resolution, and a Retry helper with exponential
// backoff and jitter for transient failures.
//
// One Limiter instance is constructed per remote endpoint and passed to the
// resolver, so concurrent chain builds genuinely share a single budget
// instead of each sleeping on its own schedule.
package throttle
