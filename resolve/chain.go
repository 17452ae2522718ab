package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/taxtree/observe"
	"github.com/jonwraymond/taxtree/taxon"
	"github.com/jonwraymond/taxtree/tree"
)

// ChainBuilder assembles root-to-leaf ancestor chains for species.
//
// Ancestors that cannot be resolved, or whose rank does not extend the
// chain, are dropped with a warning rather than failing the build. The
// entry following a dropped ancestor is marked as sitting above a gap.
type ChainBuilder struct {
	resolver *Resolver
	logger   observe.Logger
	metrics  observe.Metrics
}

// NewChainBuilder creates a ChainBuilder on top of the given resolver.
func NewChainBuilder(resolver *Resolver, logger observe.Logger, metrics observe.Metrics) *ChainBuilder {
	if logger == nil {
		logger = observe.NopLogger()
	}
	if metrics == nil {
		metrics = observe.NewNoopMetrics()
	}
	return &ChainBuilder{
		resolver: resolver,
		logger:   logger.WithComponent("chain_builder"),
		metrics:  metrics,
	}
}

// BuildChain resolves the species and every listed ancestor and returns the
// ordered chain from the outermost ancestor down to the species.
//
// Failures resolving the species itself are terminal. Failures resolving an
// ancestor drop that ancestor; the next kept entry is marked Gap. A chain
// that ends up malformed despite degradation fails with tree.ErrInvalidChain.
func (b *ChainBuilder) BuildChain(ctx context.Context, speciesID int64) (tree.Chain, error) {
	species, err := b.resolver.Resolve(ctx, speciesID)
	if err != nil {
		return nil, fmt.Errorf("resolve: species %d: %w", speciesID, err)
	}
	if species.Rank != taxon.RankSpecies {
		return nil, fmt.Errorf("%w: taxon %d has rank %s, want species",
			tree.ErrInvalidChain, speciesID, species.Rank)
	}

	chain := make(tree.Chain, 0, len(species.AncestorIDs)+1)
	gap := false
	lastRank := taxon.Rank(-1)

	for _, ancestorID := range species.AncestorIDs {
		if ancestorID == speciesID {
			continue
		}

		rec, err := b.resolver.Resolve(ctx, ancestorID)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			b.dropAncestor(ctx, speciesID, ancestorID, err.Error())
			gap = true
			continue
		}

		// Intermediate ranks outside the core vocabulary, and out-of-order
		// ancestors, cannot extend the chain.
		if !rec.Rank.Valid() || rec.Rank <= lastRank || rec.Rank >= taxon.RankSpecies {
			b.dropAncestor(ctx, speciesID, ancestorID, "rank "+rec.Rank.String()+" does not extend chain")
			gap = true
			continue
		}

		chain = append(chain, tree.ChainEntry{
			ID:         rec.ID,
			Name:       rec.Name,
			Rank:       rec.Rank,
			CommonName: rec.CommonName,
			Gap:        gap,
		})
		gap = false
		lastRank = rec.Rank
	}

	chain = append(chain, tree.ChainEntry{
		ID:         species.ID,
		Name:       species.Name,
		Rank:       species.Rank,
		CommonName: species.CommonName,
		Gap:        gap,
	})

	if err := chain.Validate(); err != nil {
		return nil, fmt.Errorf("resolve: chain for species %d: %w", speciesID, err)
	}
	return chain, nil
}

func (b *ChainBuilder) dropAncestor(ctx context.Context, speciesID, ancestorID int64, reason string) {
	b.metrics.RecordDroppedAncestor(ctx)
	b.logger.Warn(ctx, "dropping unresolvable ancestor",
		observe.Field{Key: "species_id", Value: speciesID},
		observe.Field{Key: "ancestor_id", Value: ancestorID},
		observe.Field{Key: "reason", Value: reason},
	)
}
