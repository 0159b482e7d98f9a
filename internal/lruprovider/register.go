package lruprovider

import (
	"fmt"

	"github.com/cubedata/segcache/internal/config"
	"github.com/cubedata/segcache/internal/provider"
)

// DriverName is the name in-memory providers register under with
// internal/provider.Registry.
const DriverName = "lru"

func init() {
	provider.Register(DriverName, openFromOptions)
}

func openFromOptions(cfg any) (provider.CacheProvider, error) {
	opts, ok := cfg.(*config.CacheProviderOptions)
	if !ok {
		return nil, fmt.Errorf("lruprovider: expected *config.CacheProviderOptions, got %T", cfg)
	}
	return New(&Config{Name: DriverName, Capacity: opts.LRUCapacity})
}
