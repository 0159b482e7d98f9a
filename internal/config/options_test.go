package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubedata/segcache/internal/config"
)

func TestApplyDefaults(t *testing.T) {
	opts := config.Apply()
	require.Equal(t, config.DefaultDataDir, opts.DataDir)
	require.Equal(t, config.DefaultSegmentCacheImpl, opts.ResolvedSegmentCacheImpl())
	require.Equal(t, config.DefaultReadTimeout, opts.ReadTimeout)
	require.Equal(t, config.DefaultRollupDensityThreshold, opts.RollupDensityThreshold)
}

func TestApplyOverrides(t *testing.T) {
	opts := config.Apply(
		config.WithDataDir("/tmp/segcache-test"),
		config.WithSegmentCacheImpl("lru"),
		config.WithLRUCapacity(128),
		config.WithRollupDensityThreshold(0.5),
		config.WithMaxIndexHeaders(1000),
	)

	require.Equal(t, "/tmp/segcache-test", opts.DataDir)
	require.Equal(t, "lru", opts.ResolvedSegmentCacheImpl())
	require.Equal(t, 128, opts.ProviderOptions.LRUCapacity)
	require.Equal(t, 0.5, opts.RollupDensityThreshold)
	require.Equal(t, 1000, opts.MaxIndexHeaders)
}

func TestWithRollupDensityThresholdRejectsOutOfRange(t *testing.T) {
	opts := config.Apply(config.WithRollupDensityThreshold(1.5))
	require.Equal(t, config.DefaultRollupDensityThreshold, opts.RollupDensityThreshold)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	opts, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.DefaultDataDir, opts.DataDir)
}

func TestLoadFromTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "segcache.toml")
	contents := `
dataDir = "/var/lib/segcache-custom"
rollupDensityThreshold = 0.4
maxIndexHeaders = 500

[provider]
segmentCacheImpl = "disk"
directory = "/segments-custom"
prefix = "custom"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	opts, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/segcache-custom", opts.DataDir)
	require.Equal(t, 0.4, opts.RollupDensityThreshold)
	require.Equal(t, 500, opts.MaxIndexHeaders)
	require.Equal(t, "disk", opts.ResolvedSegmentCacheImpl())
	require.Equal(t, "/segments-custom", opts.ProviderOptions.Directory)
	require.Equal(t, "custom", opts.ProviderOptions.Prefix)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
