// Package instrumentation provides OpenTelemetry instrumentation for
// the meetsched inbox monitor.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for poll cycles, message outcomes, and Google API calls
//   - Distributed tracing for poll flows and API calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//   - An audit trail for every outbound reply
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Pipeline Metrics:
//   - polls_total: Counter of inbox poll cycles by status
//   - poll_duration_seconds: Histogram of poll cycle durations
//   - messages_processed_total: Counter of terminal message outcomes
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// Classifier Metrics:
//   - oracle_operations_total: Counter of classifier model calls by operation and status
//   - oracle_operation_duration_seconds: Histogram of classifier call durations
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - MCP tool invocations (tool.<name>)
//   - Google API calls (google.<service>.<operation>)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: meetsched)
//   - AUDIT_LOGGING_ENABLED: Enable/disable the reply audit trail (default: true)
//   - AUDIT_LOGGING_INCLUDE_PII: Include full recipient addresses in audit logs (default: false)
//
// # Example Usage
//
//	// Initialize instrumentation
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "meetsched",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	// Get metrics recorder
//	recorder := provider.Metrics()
//
//	// Record a poll cycle
//	recorder.RecordPoll(ctx, instrumentation.StatusSuccess, time.Since(start))
//
//	// Record a Google API operation
//	recorder.RecordGoogleAPIOperation(ctx, "gmail", "list", "success", time.Since(start))
package instrumentation
