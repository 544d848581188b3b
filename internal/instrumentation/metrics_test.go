package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *metric.ManualReader) {
	t.Helper()

	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	m, err := NewMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func collectNames(t *testing.T, reader *metric.ManualReader) map[string]bool {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := make(map[string]bool)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			names[m.Name] = true
		}
	}
	return names
}

func TestMetricsRecording(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestMetrics(t)

	m.RecordPoll(ctx, StatusSuccess, 2*time.Second)
	m.RecordMessage(ctx, "replied")
	m.RecordGoogleAPIOperation(ctx, ServiceGmail, OperationList, StatusSuccess, 100*time.Millisecond)
	m.RecordOracleOperation(ctx, OperationClassify, StatusError, time.Second)
	m.RecordToolInvocation(ctx, "compute_free_slots", StatusSuccess, 50*time.Millisecond)

	names := collectNames(t, reader)
	assert.True(t, names["polls_total"])
	assert.True(t, names["poll_duration_seconds"])
	assert.True(t, names["messages_processed_total"])
	assert.True(t, names["google_api_operations_total"])
	assert.True(t, names["oracle_operations_total"])
	assert.True(t, names["mcp_tool_invocations_total"])
}

func TestMetricsZeroValueIsNoOp(t *testing.T) {
	ctx := context.Background()
	m := &Metrics{}

	// Must not panic with uninitialized instruments.
	m.RecordPoll(ctx, StatusSuccess, time.Second)
	m.RecordMessage(ctx, "failed")
	m.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationQuery, StatusError, time.Second)
	m.RecordOracleOperation(ctx, OperationRank, StatusSuccess, time.Second)
	m.RecordToolInvocation(ctx, "poll_inbox", StatusError, time.Second)
}
