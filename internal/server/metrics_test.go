package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetsched/internal/instrumentation"
)

func TestNewMetricsServer(t *testing.T) {
	t.Run("requires instrumentation provider", func(t *testing.T) {
		_, err := NewMetricsServer(MetricsServerConfig{})
		assert.ErrorContains(t, err, "instrumentation provider is required")
	})

	t.Run("requires enabled provider", func(t *testing.T) {
		provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{Enabled: false})
		require.NoError(t, err)

		_, err = NewMetricsServer(MetricsServerConfig{InstrumentationProvider: provider})
		assert.ErrorContains(t, err, "not enabled")
	})

	t.Run("defaults the address", func(t *testing.T) {
		provider, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{
			ServiceName:     "meetsched-test",
			Enabled:         true,
			MetricsExporter: instrumentation.ExporterPrometheus,
			TracingExporter: instrumentation.ExporterNone,
		})
		require.NoError(t, err)
		defer func() {
			_ = provider.Shutdown(context.Background())
		}()

		srv, err := NewMetricsServer(MetricsServerConfig{InstrumentationProvider: provider})
		require.NoError(t, err)
		assert.Equal(t, DefaultMetricsAddr, srv.Addr())

		// Shutdown before Start is a no-op.
		assert.NoError(t, srv.Shutdown(context.Background()))
	})
}
