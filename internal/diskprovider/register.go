package diskprovider

import (
	"fmt"

	"github.com/cubedata/segcache/internal/config"
	"github.com/cubedata/segcache/internal/provider"
)

// DriverName is the name disk-backed providers register under with
// internal/provider.Registry, and the value config.CacheProviderOptions
// expects for SegmentCacheImpl to select this implementation.
const DriverName = "disk"

func init() {
	provider.Register(DriverName, openFromOptions)
}

// openFromOptions adapts the registry's untyped Factory signature to this
// provider's Config. cfg must be a *config.CacheProviderOptions.
func openFromOptions(cfg any) (provider.CacheProvider, error) {
	opts, ok := cfg.(*config.CacheProviderOptions)
	if !ok {
		return nil, fmt.Errorf("diskprovider: expected *config.CacheProviderOptions, got %T", cfg)
	}
	return New(&Config{
		Directory: opts.Directory,
		Prefix:    opts.Prefix,
	})
}
