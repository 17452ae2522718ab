// Package observe provides observability primitives for tree builds and
// taxon resolution: structured JSON logging, OpenTelemetry metrics and
// tracing, and exporter setup.
//
// It is a pure instrumentation library: no resolution, no storage, no I/O
// beyond exporter setup. The resolver and the cache coordinator accept the
// primitives they need and fall back to no-op telemetry when none is
// supplied.
package observe
