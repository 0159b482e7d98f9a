package provider_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubedata/segcache/internal/provider"
)

func TestRegistryRegisterAndOpen(t *testing.T) {
	r := provider.NewRegistry()
	r.Register("stub", func(cfg any) (provider.CacheProvider, error) {
		return nil, nil
	})

	_, err := r.Open("stub", nil)
	require.NoError(t, err)

	require.Equal(t, []string{"stub"}, r.Names())
}

func TestRegistryOpenUnknownNameErrors(t *testing.T) {
	r := provider.NewRegistry()
	_, err := r.Open("missing", nil)
	require.Error(t, err)
}

func TestRegistryPanicsOnDuplicateRegister(t *testing.T) {
	r := provider.NewRegistry()
	factory := func(cfg any) (provider.CacheProvider, error) { return nil, nil }
	r.Register("dup", factory)

	require.Panics(t, func() { r.Register("dup", factory) })
}
