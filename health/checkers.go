package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/taxtree/resolve"
	"github.com/jonwraymond/taxtree/store"
	"github.com/jonwraymond/taxtree/taxon"
)

// StoreChecker verifies the persistent store answers reads.
type StoreChecker struct {
	store store.TaxonStore
}

// NewStoreChecker creates a checker probing the given store.
func NewStoreChecker(s store.TaxonStore) *StoreChecker {
	return &StoreChecker{store: s}
}

func (c *StoreChecker) Name() string { return "store" }

// Check issues a lookup for the universal root taxon. A miss is still
// healthy; only a store error is not.
func (c *StoreChecker) Check(ctx context.Context) Result {
	start := time.Now()
	_, ok, err := c.store.GetTaxon(ctx, taxon.RootTaxonID)
	if err != nil {
		result := Unhealthy("store read failed", err)
		result.Duration = time.Since(start)
		return result
	}

	result := Healthy(fmt.Sprintf("store reachable (root cached: %v)", ok))
	result.Duration = time.Since(start)
	return result
}

// SourceChecker verifies the remote taxon source is reachable.
type SourceChecker struct {
	source  resolve.Source
	timeout time.Duration
}

// NewSourceChecker creates a checker probing the given source. A
// non-positive timeout defaults to 5 seconds.
func NewSourceChecker(src resolve.Source, timeout time.Duration) *SourceChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SourceChecker{source: src, timeout: timeout}
}

func (c *SourceChecker) Name() string { return "source" }

// Check fetches the universal root taxon. Transient upstream failures
// report degraded rather than unhealthy since the store keeps serving
// cached trees.
func (c *SourceChecker) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	_, err := c.source.FetchTaxon(ctx, taxon.RootTaxonID)
	duration := time.Since(start)

	var result Result
	switch {
	case err == nil:
		result = Healthy("source reachable")
	case errors.Is(err, resolve.ErrTransient), errors.Is(err, context.DeadlineExceeded):
		result = Degraded("source slow or rate limited: " + err.Error())
	default:
		result = Unhealthy("source unreachable", err)
	}
	result.Duration = duration
	return result
}

var (
	_ Checker = (*StoreChecker)(nil)
	_ Checker = (*SourceChecker)(nil)
)
