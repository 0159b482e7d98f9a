package obslog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubedata/segcache/internal/obslog"
)

func TestNewReturnsUsableLogger(t *testing.T) {
	log := obslog.New("segcache-test", obslog.InfoLevel)
	require.NotNil(t, log)
	log.Infow("test message", "key", "value")
}

func TestNopDiscardsOutput(t *testing.T) {
	log := obslog.Nop()
	require.NotNil(t, log)
	log.Errorw("should not panic", "k", 1)
}
