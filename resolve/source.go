package resolve

import (
	"context"

	"github.com/jonwraymond/taxtree/taxon"
)

// Source fetches taxon records from an authoritative upstream.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: FetchTaxon must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: missing taxa must be reported with ErrNotFound; retryable
//   failures with ErrTransient. Any other error is treated as terminal.
type Source interface {
	// FetchTaxon fetches the record for the given taxon id.
	FetchTaxon(ctx context.Context, id int64) (taxon.Record, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, id int64) (taxon.Record, error)

func (f SourceFunc) FetchTaxon(ctx context.Context, id int64) (taxon.Record, error) {
	return f(ctx, id)
}
