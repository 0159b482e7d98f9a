package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/cubedata/segcache/internal/metrics"
)

func TestMustRegisterDoesNotPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New("segcache_test")
	require.NotPanics(t, func() { m.MustRegister(reg) })

	m.QueueDepth.Set(3)
	m.CommandsTotal.WithLabelValues("locate").Inc()
	m.RollupsTotal.Inc()
}
