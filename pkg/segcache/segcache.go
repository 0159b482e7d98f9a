// Package segcache is the public façade over the segment cache
// subsystem: it resolves a configured CacheProvider, starts the
// CacheManager actor, and exposes the handful of operations an embedder
// needs — locate, get, put, remove, flushRegion — without requiring
// callers to touch internal/manager or internal/provider directly.
package segcache

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cubedata/segcache/internal/bitkey"
	"github.com/cubedata/segcache/internal/config"
	"github.com/cubedata/segcache/internal/manager"
	"github.com/cubedata/segcache/internal/metrics"
	"github.com/cubedata/segcache/internal/obslog"
	"github.com/cubedata/segcache/internal/provider"
	"github.com/cubedata/segcache/internal/rollup"
	"github.com/cubedata/segcache/internal/segment"

	_ "github.com/cubedata/segcache/internal/diskprovider"
	_ "github.com/cubedata/segcache/internal/lruprovider"
)

// Header and Body are the public names for the segment value types an
// embedder constructs and receives; they are exactly
// internal/segment's types, re-exported so callers never import an
// internal package.
type (
	Header = segment.Header
	Body   = segment.Body
	Column = segment.Column
	Value  = segment.Value
)

// Provenance identifies a (schema, schema checksum, cube, measure, fact
// table) group.
type Provenance = segment.Provenance

// BitKey is the fixed-width dimensionality bitmap tagging a Header.
type BitKey = bitkey.BitKey

// Aggregator combines cell values during a rollup fallback.
type Aggregator = rollup.Aggregator

// Instance is the segment cache subsystem's entry point: one Instance
// owns one CacheManager actor and the external provider(s) it drives.
type Instance struct {
	mgr *manager.Manager
	log *zap.SugaredLogger
}

// New builds and starts an Instance from opts, opening the configured
// CacheProvider via the process-wide registry (disk and lru implementations
// register themselves via package init()).
func New(ctx context.Context, service string, opts *config.Options) (*Instance, error) {
	if opts == nil {
		defaults := config.NewDefaultOptions()
		opts = &defaults
	}

	log := obslog.New(service, obslog.InfoLevel)

	providerCfg := opts.ProviderOptions
	if providerCfg.Directory != "" {
		dir := providerCfg.Directory
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(opts.DataDir, dir)
		}
		joined := *providerCfg
		joined.Directory = dir
		providerCfg = &joined
	}

	p, err := provider.Open(opts.ResolvedSegmentCacheImpl(), providerCfg)
	if err != nil {
		return nil, err
	}

	mgr, err := manager.New(&manager.Config{
		Providers:              []provider.CacheProvider{p},
		DefaultAggregator:      rollup.SumAggregator{},
		RollupDensityThreshold: opts.RollupDensityThreshold,
		MaxIndexHeaders:        opts.MaxIndexHeaders,
		ReadTimeout:            opts.ReadTimeout,
		LookupTimeout:          opts.LookupTimeout,
		WriteTimeout:           opts.WriteTimeout,
		ScanTimeout:            opts.ScanTimeout,
		Logger:                 log,
		Metrics:                metrics.New("segcache"),
	})
	if err != nil {
		return nil, err
	}

	return &Instance{mgr: mgr, log: log}, nil
}

// Locate resolves the exact-dimensionality candidates for bitKey whose
// coordinates and compound predicates match (spec §4.3(a)).
func (i *Instance) Locate(ctx context.Context, provenance Provenance, bitKey BitKey, coords map[string]Value, compoundPredicates []string) ([]*Header, error) {
	return i.mgr.Locate(ctx, provenance, bitKey, coords, compoundPredicates)
}

// Get returns header's body, falling back to a SegmentBuilder rollup
// from a cached ancestor segment when header isn't directly cached
// (spec §4.4).
func (i *Instance) Get(ctx context.Context, header *Header) (*Body, bool, error) {
	return i.mgr.Get(ctx, header)
}

// Put admits (header, body) into every configured provider and the
// in-memory index.
func (i *Instance) Put(ctx context.Context, header *Header, body *Body) error {
	return i.mgr.Put(ctx, header, body)
}

// Remove evicts header from every configured provider and the index.
func (i *Instance) Remove(ctx context.Context, header *Header) error {
	return i.mgr.Remove(ctx, header)
}

// FlushRegion evicts every header intersecting region, returning the
// count flushed (spec §4.3(b)).
func (i *Instance) FlushRegion(ctx context.Context, provenance Provenance, region []Column) (int, error) {
	return i.mgr.FlushRegion(ctx, provenance, region)
}

// AwaitLoad blocks until an in-flight SQL load for header completes,
// reported via NotifyLoadSucceeded or NotifyLoadFailed, or ctx is done.
// Callers trigger the load itself against their own SQL subsystem;
// AwaitLoad only waits for the eventual outcome (spec §4.5).
func (i *Instance) AwaitLoad(ctx context.Context, header *Header) (*Body, error) {
	return i.mgr.AwaitLoad(ctx, header)
}

// NotifyLoadSucceeded reports a completed SQL load: header is admitted
// into the index and body is written to every configured provider, and
// any AwaitLoad callers for header are woken.
func (i *Instance) NotifyLoadSucceeded(header *Header, body *Body) {
	i.mgr.NotifyLoadSucceeded(header, body)
}

// NotifyLoadFailed reports a failed SQL load: no index mutation occurs,
// but any AwaitLoad callers for header are woken with cause.
func (i *Instance) NotifyLoadFailed(header *Header, cause error) {
	i.mgr.NotifyLoadFailed(header, cause)
}

// Close stops the CacheManager actor and tears down its providers.
func (i *Instance) Close(ctx context.Context) error {
	return i.mgr.Close(ctx)
}
