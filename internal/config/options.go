// Package config provides data structures and functions for configuring the
// segment cache subsystem. It defines the parameters that control the
// manager's provider wiring, its per-call timeout budgets and the rollup
// heuristic, following the same functional-options pattern used throughout
// this codebase.
package config

import (
	"strings"
	"time"
)

// CacheProviderOptions configures the external CacheProvider the manager is
// wired to at startup.
type CacheProviderOptions struct {
	// Name of the registered CacheProvider implementation to open
	// (e.g. "disk", "lru"). A nil or empty value falls back to
	// DefaultSegmentCacheImpl.
	SegmentCacheImpl *string `toml:"segmentCacheImpl"`

	// Directory segment bodies and headers are persisted under, when the
	// resolved provider is disk-backed.
	Directory string `toml:"directory"`

	// Filename prefix used for on-disk cache entry files.
	//
	// Default: "segment"
	Prefix string `toml:"prefix"`

	// Maximum number of entries an in-process LRU provider retains.
	// Ignored by providers that aren't LRU-backed.
	LRUCapacity int `toml:"lruCapacity"`
}

// Options defines the configuration parameters for the segment cache
// subsystem: provider wiring, call timeout budgets, and the rollup
// density heuristic.
type Options struct {
	// Base directory under which provider state (e.g. segment files) is
	// rooted, when the resolved provider needs one.
	//
	// Default: "/var/lib/segcache"
	DataDir string `toml:"dataDir"`

	// Configures the CacheProvider the manager opens at startup.
	ProviderOptions *CacheProviderOptions `toml:"provider"`

	// ReadTimeout bounds a single provider get() call (spec §4.6).
	ReadTimeout time.Duration `toml:"readTimeoutMs"`

	// LookupTimeout bounds a single SegmentCacheIndex.locate() call.
	LookupTimeout time.Duration `toml:"lookupTimeoutMs"`

	// WriteTimeout bounds a single provider put() call.
	WriteTimeout time.Duration `toml:"writeTimeoutMs"`

	// ScanTimeout bounds a flushRegion() call (intersectRegion() plus the
	// provider removals it triggers).
	ScanTimeout time.Duration `toml:"scanTimeoutMs"`

	// RollupDensityThreshold is the fraction of populated cells at or above which
	// SegmentBuilder picks a dense body representation over a sparse one
	// (spec §4.5).
	RollupDensityThreshold float64 `toml:"rollupDensityThreshold"`

	// MaxIndexHeaders bounds how many SegmentHeaders the
	// SegmentCacheIndex retains before evicting. A value <= 0 means
	// unbounded.
	MaxIndexHeaders int `toml:"maxIndexHeaders"`
}

// OptionFunc is a function type that modifies the subsystem's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies a predefined set of default configuration
// values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.DataDir = opts.DataDir
		o.ProviderOptions = opts.ProviderOptions
		o.ReadTimeout = opts.ReadTimeout
		o.LookupTimeout = opts.LookupTimeout
		o.WriteTimeout = opts.WriteTimeout
		o.ScanTimeout = opts.ScanTimeout
		o.RollupDensityThreshold = opts.RollupDensityThreshold
		o.MaxIndexHeaders = opts.MaxIndexHeaders
	}
}

// WithDataDir sets the primary data directory providers root their state
// under.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithSegmentCacheImpl selects which registered CacheProvider the manager
// opens.
func WithSegmentCacheImpl(name string) OptionFunc {
	return func(o *Options) {
		name = strings.TrimSpace(name)
		if name != "" {
			o.ProviderOptions.SegmentCacheImpl = &name
		}
	}
}

// WithProviderDirectory sets the directory a disk-backed provider persists
// entries under.
func WithProviderDirectory(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.ProviderOptions.Directory = directory
		}
	}
}

// WithProviderPrefix sets the filename prefix a disk-backed provider uses.
func WithProviderPrefix(prefix string) OptionFunc {
	return func(o *Options) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			o.ProviderOptions.Prefix = prefix
		}
	}
}

// WithLRUCapacity sets the entry capacity of an in-process LRU provider.
func WithLRUCapacity(capacity int) OptionFunc {
	return func(o *Options) {
		if capacity > 0 {
			o.ProviderOptions.LRUCapacity = capacity
		}
	}
}

// WithReadTimeout overrides the per-call read budget.
func WithReadTimeout(d time.Duration) OptionFunc {
	return func(o *Options) {
		if d > 0 {
			o.ReadTimeout = d
		}
	}
}

// WithLookupTimeout overrides the per-call lookup budget.
func WithLookupTimeout(d time.Duration) OptionFunc {
	return func(o *Options) {
		if d > 0 {
			o.LookupTimeout = d
		}
	}
}

// WithWriteTimeout overrides the per-call write budget.
func WithWriteTimeout(d time.Duration) OptionFunc {
	return func(o *Options) {
		if d > 0 {
			o.WriteTimeout = d
		}
	}
}

// WithScanTimeout overrides the per-call scan budget.
func WithScanTimeout(d time.Duration) OptionFunc {
	return func(o *Options) {
		if d > 0 {
			o.ScanTimeout = d
		}
	}
}

// WithRollupDensityThreshold overrides the sparse/dense body selection
// heuristic used by SegmentBuilder.
func WithRollupDensityThreshold(threshold float64) OptionFunc {
	return func(o *Options) {
		if threshold > 0 && threshold <= 1 {
			o.RollupDensityThreshold = threshold
		}
	}
}

// WithMaxIndexHeaders bounds how many headers the SegmentCacheIndex
// retains before it starts evicting. A value <= 0 means unbounded.
func WithMaxIndexHeaders(max int) OptionFunc {
	return func(o *Options) {
		o.MaxIndexHeaders = max
	}
}

// Apply builds an Options value from NewDefaultOptions, then applies each
// OptionFunc in order.
func Apply(fns ...OptionFunc) *Options {
	o := NewDefaultOptions()
	for _, fn := range fns {
		fn(&o)
	}
	return &o
}
