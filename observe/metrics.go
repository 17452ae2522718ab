package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records cache and build metrics for tree operations.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCacheLookup records a cache lookup outcome for the given tier.
	// tier is one of "taxon", "complete", "filtered".
	RecordCacheLookup(ctx context.Context, tier string, hit bool)

	// RecordFetch records a remote taxon fetch with its error status.
	RecordFetch(ctx context.Context, err error)

	// RecordDroppedAncestor records an ancestor skipped during chain assembly.
	RecordDroppedAncestor(ctx context.Context)

	// RecordBuild records a tree build with duration and error status.
	RecordBuild(ctx context.Context, meta OpMeta, duration time.Duration, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
	fetchTotal   metric.Int64Counter
	fetchErrors  metric.Int64Counter
	droppedCount metric.Int64Counter
	buildTotal   metric.Int64Counter
	buildErrors  metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	cacheHits, err := meter.Int64Counter(
		"tree.cache.hits",
		metric.WithDescription("Total number of cache hits"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"tree.cache.misses",
		metric.WithDescription("Total number of cache misses"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	fetchTotal, err := meter.Int64Counter(
		"tree.fetch.total",
		metric.WithDescription("Total number of remote taxon fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	fetchErrors, err := meter.Int64Counter(
		"tree.fetch.errors",
		metric.WithDescription("Total number of failed remote taxon fetches"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	droppedCount, err := meter.Int64Counter(
		"tree.chain.dropped_ancestors",
		metric.WithDescription("Total number of ancestors dropped during chain assembly"),
		metric.WithUnit("{ancestor}"),
	)
	if err != nil {
		return nil, err
	}

	buildTotal, err := meter.Int64Counter(
		"tree.build.total",
		metric.WithDescription("Total number of tree builds"),
		metric.WithUnit("{build}"),
	)
	if err != nil {
		return nil, err
	}

	buildErrors, err := meter.Int64Counter(
		"tree.build.errors",
		metric.WithDescription("Total number of failed tree builds"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"tree.build.duration_ms",
		metric.WithDescription("Tree build duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		cacheHits:    cacheHits,
		cacheMisses:  cacheMisses,
		fetchTotal:   fetchTotal,
		fetchErrors:  fetchErrors,
		droppedCount: droppedCount,
		buildTotal:   buildTotal,
		buildErrors:  buildErrors,
		durationHist: durationHist,
	}, nil
}

// RecordCacheLookup increments the hit or miss counter for the tier.
func (m *metricsImpl) RecordCacheLookup(ctx context.Context, tier string, hit bool) {
	opt := metric.WithAttributes(attribute.String("tree.cache.tier", tier))
	if hit {
		m.cacheHits.Add(ctx, 1, opt)
	} else {
		m.cacheMisses.Add(ctx, 1, opt)
	}
}

// RecordFetch records a remote fetch and its error status.
func (m *metricsImpl) RecordFetch(ctx context.Context, err error) {
	m.fetchTotal.Add(ctx, 1)
	if err != nil {
		m.fetchErrors.Add(ctx, 1)
	}
}

// RecordDroppedAncestor increments the dropped ancestor counter.
func (m *metricsImpl) RecordDroppedAncestor(ctx context.Context) {
	m.droppedCount.Add(ctx, 1)
}

// RecordBuild records metrics for a tree build.
func (m *metricsImpl) RecordBuild(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.String("tree.op", meta.Op))

	m.buildTotal.Add(ctx, 1, opt)
	if err != nil {
		m.buildErrors.Add(ctx, 1, opt)
	}

	durationMs := float64(duration.Milliseconds())
	m.durationHist.Record(ctx, durationMs, opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

// NewNoopMetrics creates a no-op Metrics.
func NewNoopMetrics() Metrics {
	return &noopMetrics{}
}

func (m *noopMetrics) RecordCacheLookup(ctx context.Context, tier string, hit bool) {}

func (m *noopMetrics) RecordFetch(ctx context.Context, err error) {}

func (m *noopMetrics) RecordDroppedAncestor(ctx context.Context) {}

func (m *noopMetrics) RecordBuild(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
}
