package resolve

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/taxtree/observe"
	"github.com/jonwraymond/taxtree/store"
	"github.com/jonwraymond/taxtree/taxon"
	"github.com/jonwraymond/taxtree/throttle"
)

// ResolverConfig holds configuration for a Resolver.
type ResolverConfig struct {
	Store   store.TaxonStore  // Required: persistent record cache
	Source  Source            // Required: authoritative upstream
	Limiter *throttle.Limiter // Optional: outbound fetch rate limit
	Retry   *throttle.Retry   // Optional: retry policy for transient failures
	Logger  observe.Logger    // Optional: defaults to NopLogger
	Metrics observe.Metrics   // Optional: defaults to no-op metrics
}

// Resolver resolves taxon identifiers to validated records.
//
// Lookups hit the store first. On a miss the resolver fetches from the
// source, validates the record, and writes it through to the store before
// returning. Concurrent misses for the same id are coalesced so the source
// sees at most one fetch and the store at most one write.
type Resolver struct {
	store   store.TaxonStore
	source  Source
	limiter *throttle.Limiter
	retry   *throttle.Retry
	logger  observe.Logger
	metrics observe.Metrics
	group   singleflight.Group
}

// NewResolver creates a Resolver from the given configuration.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Store == nil {
		return nil, errors.New("resolve: store is required")
	}
	if cfg.Source == nil {
		return nil, errors.New("resolve: source is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observe.NewNoopMetrics()
	}

	retry := cfg.Retry
	if retry == nil {
		retry = throttle.NewRetry(throttle.RetryConfig{
			RetryIf: func(err error) bool { return errors.Is(err, ErrTransient) },
		})
	}

	return &Resolver{
		store:   cfg.Store,
		source:  cfg.Source,
		limiter: cfg.Limiter,
		retry:   retry,
		logger:  logger.WithComponent("resolver"),
		metrics: metrics,
	}, nil
}

// Resolve returns the record for the given taxon id, fetching and caching
// it if it is not already stored.
func (r *Resolver) Resolve(ctx context.Context, id int64) (taxon.Record, error) {
	if id <= 0 {
		return taxon.Record{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	rec, ok, err := r.store.GetTaxon(ctx, id)
	if err != nil {
		return taxon.Record{}, fmt.Errorf("resolve: store lookup for %d: %w", id, err)
	}
	r.metrics.RecordCacheLookup(ctx, "taxon", ok)
	if ok {
		return rec, nil
	}

	v, err, _ := r.group.Do(strconv.FormatInt(id, 10), func() (any, error) {
		// Detach so an abandoning caller cannot cancel the fetch for the
		// remaining waiters. The fetch is bounded by the retry policy.
		return r.fetchAndStore(context.WithoutCancel(ctx), id)
	})
	if err != nil {
		return taxon.Record{}, err
	}
	return v.(taxon.Record), nil
}

func (r *Resolver) fetchAndStore(ctx context.Context, id int64) (taxon.Record, error) {
	// Another caller may have finished between our miss and the flight start.
	if rec, ok, err := r.store.GetTaxon(ctx, id); err == nil && ok {
		return rec, nil
	}

	var rec taxon.Record
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		fetched, err := r.source.FetchTaxon(ctx, id)
		r.metrics.RecordFetch(ctx, err)
		if err != nil {
			return err
		}
		rec = fetched
		return nil
	})
	if err != nil {
		r.logger.Warn(ctx, "taxon fetch failed",
			observe.Field{Key: "taxon_id", Value: id},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return taxon.Record{}, err
	}

	if rec.ID != id {
		return taxon.Record{}, fmt.Errorf("%w: source returned id %d for %d", ErrNotFound, rec.ID, id)
	}
	if err := rec.Validate(); err != nil {
		return taxon.Record{}, fmt.Errorf("resolve: invalid record for %d: %w", id, err)
	}

	if err := r.store.PutTaxon(ctx, rec); err != nil {
		return taxon.Record{}, fmt.Errorf("resolve: store write for %d: %w", id, err)
	}

	r.logger.Debug(ctx, "taxon resolved",
		observe.Field{Key: "taxon_id", Value: id},
		observe.Field{Key: "rank", Value: rec.Rank.String()},
	)
	return rec, nil
}
