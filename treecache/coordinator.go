package treecache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/taxtree/observe"
	"github.com/jonwraymond/taxtree/store"
	"github.com/jonwraymond/taxtree/taxon"
	"github.com/jonwraymond/taxtree/tree"
)

// ChainSource builds root-to-leaf ancestor chains for species.
// *resolve.ChainBuilder satisfies it.
type ChainSource interface {
	BuildChain(ctx context.Context, speciesID int64) (tree.Chain, error)
}

// CoordinatorConfig holds configuration for a Coordinator.
type CoordinatorConfig struct {
	Store  store.TreeStore // Required: tree persistence
	Chains ChainSource     // Required: chain builder
	Policy Policy          // Staleness windows; zero values take defaults

	// Parallelism bounds concurrent chain builds within one tree build.
	// Defaults to 4.
	Parallelism int

	Logger  observe.Logger  // Optional: defaults to NopLogger
	Metrics observe.Metrics // Optional: defaults to no-op metrics
	Tracer  observe.Tracer  // Optional: defaults to no-op tracer

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Coordinator serves complete and filtered taxonomy trees from the store,
// building them on demand.
//
// Complete trees are keyed by root taxon; filtered views by canonical
// (root, leaf-set) key. Both tiers are checked for staleness on every read.
// Builds for the same key are coalesced, and a build started for one caller
// completes for all waiters even if that caller's context is canceled.
type Coordinator struct {
	store       store.TreeStore
	chains      ChainSource
	policy      Policy
	parallelism int
	logger      observe.Logger
	metrics     observe.Metrics
	tracer      observe.Tracer
	now         func() time.Time
	group       singleflight.Group
}

// NewCoordinator creates a Coordinator from the given configuration.
func NewCoordinator(cfg CoordinatorConfig) (*Coordinator, error) {
	if cfg.Store == nil {
		return nil, errors.New("treecache: store is required")
	}
	if cfg.Chains == nil {
		return nil, errors.New("treecache: chain source is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observe.NewNoopMetrics()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = observe.NewNoopTracer()
	}
	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = 4
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &Coordinator{
		store:       cfg.Store,
		chains:      cfg.Chains,
		policy:      cfg.Policy.normalized(),
		parallelism: parallelism,
		logger:      logger.WithComponent("coordinator"),
		metrics:     metrics,
		tracer:      tracer,
		now:         now,
	}, nil
}

// Complete returns the complete tree for rootID, built from the given
// species set. A fresh cached tree containing every requested species is
// served as-is; a fresh tree missing some species is topped up in place;
// anything stale or absent is rebuilt wholesale.
func (c *Coordinator) Complete(ctx context.Context, rootID int64, speciesIDs []int64) (*store.CompleteTree, error) {
	if len(speciesIDs) == 0 {
		return nil, fmt.Errorf("%w: empty species set", ErrNoData)
	}
	if rootID == 0 {
		rootID = taxon.RootTaxonID
	}

	return c.completeFlight(ctx, rootID, speciesIDs)
}

// completeFlight runs ensureComplete under the per-root singleflight key.
// A caller coalesced into a flight started for a different species set may
// receive a tree missing some of its species; one follow-up flight tops
// those up. Species whose chains genuinely fail stay absent either way, so
// a second miss is returned as-is rather than retried forever.
func (c *Coordinator) completeFlight(ctx context.Context, rootID int64, speciesIDs []int64) (*store.CompleteTree, error) {
	key := "complete:" + strconv.FormatInt(rootID, 10)
	for attempt := 0; ; attempt++ {
		v, err, _ := c.group.Do(key, func() (any, error) {
			return c.ensureComplete(context.WithoutCancel(ctx), rootID, speciesIDs)
		})
		if err != nil {
			return nil, err
		}
		ct := v.(*store.CompleteTree)
		if attempt > 0 || len(missingLeaves(ct.Root, speciesIDs)) == 0 {
			return ct, nil
		}
	}
}

// Filtered returns the pruned view of the complete tree for rootID,
// containing only the paths to the given leaves. maxStaleness bounds how
// old a cached view may be; non-positive means the policy default.
func (c *Coordinator) Filtered(ctx context.Context, rootID int64, leafIDs []int64, maxStaleness time.Duration) (*store.FilteredTree, error) {
	if len(leafIDs) == 0 {
		return nil, fmt.Errorf("%w: empty leaf set", ErrNoData)
	}
	if rootID == 0 {
		rootID = taxon.RootTaxonID
	}

	key := Key(rootID, leafIDs)
	cached, ok, err := c.store.GetFilteredTree(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("treecache: filtered lookup %s: %w", key, err)
	}
	fresh := ok && c.policy.filteredFresh(cached.BuiltAt, c.now(), maxStaleness)
	c.metrics.RecordCacheLookup(ctx, "filtered", fresh)
	if fresh {
		return cached, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.buildFiltered(context.WithoutCancel(ctx), key, rootID, leafIDs, maxStaleness)
	})
	if err != nil {
		return nil, err
	}
	return v.(*store.FilteredTree), nil
}

func (c *Coordinator) buildFiltered(ctx context.Context, key string, rootID int64, leafIDs []int64, maxStaleness time.Duration) (*store.FilteredTree, error) {
	// A waiter queued behind a finished build sees the fresh entry here.
	if cached, ok, err := c.store.GetFilteredTree(ctx, key); err == nil && ok &&
		c.policy.filteredFresh(cached.BuiltAt, c.now(), maxStaleness) {
		return cached, nil
	}

	start := c.now()
	meta := observe.OpMeta{Op: "build_filtered", RootID: rootID, Key: key, Leaves: len(leafIDs)}
	ctx, span := c.tracer.StartSpan(ctx, meta)

	ft, err := func() (*store.FilteredTree, error) {
		// Nested flight on the per-root key: distinct filtered keys under
		// the same root share one complete-tree build.
		complete, err := c.completeFlight(ctx, rootID, leafIDs)
		if err != nil {
			return nil, err
		}

		pruned := tree.Filter(complete.Root, tree.KeepSet(leafIDs))
		if pruned == nil {
			return nil, fmt.Errorf("%w: no requested leaves under root %d", ErrNoData, rootID)
		}

		ft := &store.FilteredTree{
			Key:     key,
			RootID:  rootID,
			Root:    pruned,
			BuiltAt: c.now(),
		}
		if err := c.store.PutFilteredTree(ctx, ft); err != nil {
			return nil, fmt.Errorf("treecache: filtered write %s: %w", key, err)
		}
		return ft, nil
	}()

	c.tracer.EndSpan(span, err)
	c.metrics.RecordBuild(ctx, meta, c.now().Sub(start), err)
	if err != nil {
		return nil, err
	}

	c.logger.Info(ctx, "filtered tree built",
		observe.Field{Key: "key", Value: key},
		observe.Field{Key: "root_id", Value: rootID},
		observe.Field{Key: "species", Value: len(ft.Root.Leaves())},
	)
	return ft, nil
}

// ensureComplete returns a complete tree for rootID covering speciesIDs,
// reusing, topping up, or rebuilding the cached tree as needed.
func (c *Coordinator) ensureComplete(ctx context.Context, rootID int64, speciesIDs []int64) (*store.CompleteTree, error) {
	cached, ok, err := c.store.GetCompleteTree(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("treecache: complete lookup %d: %w", rootID, err)
	}
	fresh := ok && cached.Complete && c.policy.completeFresh(cached.BuiltAt, c.now())
	c.metrics.RecordCacheLookup(ctx, "complete", fresh)

	if !fresh {
		return c.rebuildComplete(ctx, rootID, speciesIDs)
	}

	missing := missingLeaves(cached.Root, speciesIDs)
	if len(missing) == 0 {
		return cached, nil
	}
	return c.topUpComplete(ctx, cached, missing)
}

// rebuildComplete builds the tree from scratch and replaces the cached
// entry wholesale.
func (c *Coordinator) rebuildComplete(ctx context.Context, rootID int64, speciesIDs []int64) (*store.CompleteTree, error) {
	start := c.now()
	meta := observe.OpMeta{Op: "build_complete", RootID: rootID, Leaves: len(speciesIDs)}
	ctx, span := c.tracer.StartSpan(ctx, meta)

	ct, err := func() (*store.CompleteTree, error) {
		chains, failed, err := c.buildChains(ctx, rootID, speciesIDs)
		if err != nil {
			return nil, err
		}

		root, mergeErrs := tree.MergeAll(chains)
		for _, merr := range mergeErrs {
			c.logger.Warn(ctx, "chain rejected during merge",
				observe.Field{Key: "root_id", Value: rootID},
				observe.Field{Key: "error", Value: merr.Error()},
			)
		}
		if root == nil {
			return nil, fmt.Errorf("%w: no chains merged for root %d", ErrBuildFailed, rootID)
		}

		ct := &store.CompleteTree{
			RootID:       rootID,
			Root:         root,
			SpeciesCount: len(chains) - len(mergeErrs),
			Complete:     failed == 0 && len(mergeErrs) == 0,
			BuiltAt:      c.now(),
		}
		if err := c.store.PutCompleteTree(ctx, ct); err != nil {
			return nil, fmt.Errorf("treecache: complete write %d: %w", rootID, err)
		}
		return ct, nil
	}()

	c.tracer.EndSpan(span, err)
	c.metrics.RecordBuild(ctx, meta, c.now().Sub(start), err)
	if err != nil {
		return nil, err
	}

	c.logger.Info(ctx, "complete tree built",
		observe.Field{Key: "root_id", Value: rootID},
		observe.Field{Key: "species", Value: ct.SpeciesCount},
		observe.Field{Key: "complete", Value: ct.Complete},
	)
	return ct, nil
}

// topUpComplete merges chains for newly observed species into a fresh
// cached tree without resetting its build timestamp.
func (c *Coordinator) topUpComplete(ctx context.Context, cached *store.CompleteTree, missing []int64) (*store.CompleteTree, error) {
	chains, _, err := c.buildChains(ctx, cached.RootID, missing)
	if err != nil {
		return nil, err
	}

	root := cached.Root
	merged := 0
	for _, chain := range chains {
		next, err := tree.Merge(root, chain)
		if err != nil {
			c.logger.Warn(ctx, "chain rejected during merge",
				observe.Field{Key: "root_id", Value: cached.RootID},
				observe.Field{Key: "error", Value: err.Error()},
			)
			continue
		}
		root = next
		merged++
	}

	ct := &store.CompleteTree{
		RootID:       cached.RootID,
		Root:         root,
		SpeciesCount: cached.SpeciesCount + merged,
		Complete:     cached.Complete,
		BuiltAt:      cached.BuiltAt,
	}
	if err := c.store.PutCompleteTree(ctx, ct); err != nil {
		return nil, fmt.Errorf("treecache: complete write %d: %w", cached.RootID, err)
	}
	return ct, nil
}

// buildChains builds chains for the given species in parallel, scoped to
// rootID. Individual failures are logged and counted; only total failure
// is an error.
func (c *Coordinator) buildChains(ctx context.Context, rootID int64, speciesIDs []int64) ([]tree.Chain, int, error) {
	results := make([]tree.Chain, len(speciesIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)
	for i, id := range speciesIDs {
		g.Go(func() error {
			chain, err := c.chains.BuildChain(gctx, id)
			if err != nil {
				c.logger.Warn(gctx, "species chain failed",
					observe.Field{Key: "species_id", Value: id},
					observe.Field{Key: "error", Value: err.Error()},
				)
				return nil
			}
			chain = chain.From(rootID)
			if len(chain) == 0 {
				c.logger.Warn(gctx, "species outside requested root",
					observe.Field{Key: "species_id", Value: id},
					observe.Field{Key: "root_id", Value: rootID},
				)
				return nil
			}
			results[i] = chain
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	chains := make([]tree.Chain, 0, len(results))
	for _, chain := range results {
		if chain != nil {
			chains = append(chains, chain)
		}
	}
	failed := len(speciesIDs) - len(chains)
	if len(chains) == 0 {
		return nil, failed, fmt.Errorf("%w: all %d chains failed for root %d", ErrBuildFailed, failed, rootID)
	}
	return chains, failed, nil
}

// missingLeaves returns the species ids not present in the tree.
func missingLeaves(root *tree.Node, speciesIDs []int64) []int64 {
	present := make(map[int64]struct{})
	for _, id := range root.Leaves() {
		present[id] = struct{}{}
	}

	var missing []int64
	for _, id := range speciesIDs {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
