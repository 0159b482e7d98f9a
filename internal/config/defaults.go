package config

import "time"

const (
	// DefaultDataDir is the base directory used when no other directory is
	// specified during initialization.
	DefaultDataDir = "/var/lib/segcache"

	// DefaultSegmentCacheImpl names the CacheProvider opened when no
	// provider is explicitly selected.
	DefaultSegmentCacheImpl = "disk"

	// DefaultProviderDirectory is the default subdirectory within the main
	// data directory where a disk-backed provider stores entries.
	DefaultProviderDirectory = "/segments"

	// DefaultProviderPrefix is the default filename prefix for on-disk
	// cache entry files.
	DefaultProviderPrefix = "segment"

	// DefaultLRUCapacity is the default entry capacity for an in-process
	// LRU provider.
	DefaultLRUCapacity = 4096

	// DefaultReadTimeout bounds a single provider get() call.
	DefaultReadTimeout = 250 * time.Millisecond

	// DefaultLookupTimeout bounds a single index locate() call.
	DefaultLookupTimeout = 50 * time.Millisecond

	// DefaultWriteTimeout bounds a single provider put() call.
	DefaultWriteTimeout = 500 * time.Millisecond

	// DefaultScanTimeout bounds a flushRegion() call: the index
	// intersectRegion() scan plus the provider removals it triggers.
	DefaultScanTimeout = 2 * time.Second

	// DefaultRollupDensityThreshold is the fraction of populated cells
	// at or above which a rolled-up segment is stored densely rather than
	// sparsely.
	DefaultRollupDensityThreshold = 0.25

	// DefaultMaxIndexHeaders means unbounded: the index never evicts
	// headers purely on count.
	DefaultMaxIndexHeaders = 0
)

// defaultOptions holds the default configuration for the segment cache
// subsystem.
var defaultOptions = Options{
	DataDir: DefaultDataDir,
	ProviderOptions: &CacheProviderOptions{
		Directory:   DefaultProviderDirectory,
		Prefix:      DefaultProviderPrefix,
		LRUCapacity: DefaultLRUCapacity,
	},
	ReadTimeout:            DefaultReadTimeout,
	LookupTimeout:          DefaultLookupTimeout,
	WriteTimeout:           DefaultWriteTimeout,
	ScanTimeout:            DefaultScanTimeout,
	RollupDensityThreshold: DefaultRollupDensityThreshold,
	MaxIndexHeaders:        DefaultMaxIndexHeaders,
}

// NewDefaultOptions returns a copy of the subsystem's default options,
// with a freshly allocated ProviderOptions so callers can mutate it
// without disturbing the package-level default.
func NewDefaultOptions() Options {
	o := defaultOptions
	providerCopy := *defaultOptions.ProviderOptions
	o.ProviderOptions = &providerCopy
	return o
}

// ResolvedSegmentCacheImpl returns the provider name to open, falling back
// to DefaultSegmentCacheImpl when unset.
func (o *Options) ResolvedSegmentCacheImpl() string {
	if o.ProviderOptions == nil || o.ProviderOptions.SegmentCacheImpl == nil {
		return DefaultSegmentCacheImpl
	}
	name := *o.ProviderOptions.SegmentCacheImpl
	if name == "" {
		return DefaultSegmentCacheImpl
	}
	return name
}
