package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ReplyEvent captures all information about one outbound reply for
// audit logging. Sending mail on a user's behalf is the one side
// effect of the pipeline that leaves the process, so every attempt is
// recorded, successful or not.
//
// # Privacy Considerations
//
// The Recipient field contains PII. When logging, consider:
//   - Using RecipientDomain() to get only the domain for general logs
//   - Only logging the full address in audit-specific log streams
//   - Ensuring audit logs have appropriate access controls
type ReplyEvent struct {
	// Message identity
	MessageID string
	ThreadID  string

	// Recipient of the reply (the original sender)
	Recipient string

	// Account the reply was sent from
	Account string

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	SlotCount int
	Success   bool
	Error     string

	// Tracing context
	TraceID string
}

// RecipientDomain returns the domain portion of the recipient address
// for lower-cardinality logging.
func (e *ReplyEvent) RecipientDomain() string {
	return ExtractUserDomain(e.Recipient)
}

// Status returns "success" or "error" based on the Success field.
func (e *ReplyEvent) Status() string {
	if e.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging with
// cardinality-controlled values (recipient domain only). For full
// audit logging, use LogAuditAttrs.
func (e *ReplyEvent) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("message_id", e.MessageID),
		slog.String("recipient_domain", e.RecipientDomain()),
		slog.Int("candidate_slots", e.SlotCount),
		slog.Duration("duration", e.Duration),
		slog.Bool("success", e.Success),
	}

	// Add optional fields only if present
	if e.ThreadID != "" {
		attrs = append(attrs, slog.String("thread_id", e.ThreadID))
	}
	if e.Account != "" && e.Account != "default" {
		attrs = append(attrs, slog.String("account", e.Account))
	}
	if e.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", e.TraceID))
	}
	if e.Error != "" {
		attrs = append(attrs, slog.String("error", e.Error))
	}

	return attrs
}

// LogAuditAttrs returns slog attributes for full audit logging,
// including the complete recipient address.
//
// # Security Warning
//
// This method includes PII. Ensure audit logs are:
//   - Stored securely with appropriate access controls
//   - Not exposed to general monitoring dashboards
//   - Retained according to compliance requirements
func (e *ReplyEvent) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("message_id", e.MessageID),
		slog.String("recipient", e.Recipient),
		slog.Int("candidate_slots", e.SlotCount),
		slog.Duration("duration", e.Duration),
		slog.Bool("success", e.Success),
	}

	if e.ThreadID != "" {
		attrs = append(attrs, slog.String("thread_id", e.ThreadID))
	}
	if e.Account != "" {
		attrs = append(attrs, slog.String("account", e.Account))
	}
	if e.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", e.TraceID))
	}
	if e.Error != "" {
		attrs = append(attrs, slog.String("error", e.Error))
	}

	return attrs
}

// NewReplyEvent creates a ReplyEvent with timing started.
// Call Complete() when the reply attempt finishes.
func NewReplyEvent(messageID, threadID, recipient string) *ReplyEvent {
	return &ReplyEvent{
		MessageID: messageID,
		ThreadID:  threadID,
		Recipient: recipient,
		StartTime: time.Now(),
	}
}

// WithAccount sets the sending account name.
func (e *ReplyEvent) WithAccount(account string) *ReplyEvent {
	e.Account = account
	return e
}

// WithSlotCount sets the number of candidate slots offered in the reply.
func (e *ReplyEvent) WithSlotCount(n int) *ReplyEvent {
	e.SlotCount = n
	return e
}

// WithSpanContext extracts trace context from the current span.
func (e *ReplyEvent) WithSpanContext(ctx context.Context) *ReplyEvent {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		e.TraceID = span.SpanContext().TraceID().String()
	}
	return e
}

// Complete marks the reply attempt as finished and calculates duration.
// Returns the same ReplyEvent for method chaining.
func (e *ReplyEvent) Complete(success bool, err error) *ReplyEvent {
	e.Duration = time.Since(e.StartTime)
	e.Success = success
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// AuditLogger provides structured audit logging for outbound replies.
// It wraps slog.Logger with convenience methods for logging reply
// attempts. A nil *AuditLogger is a no-op.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// By default, PII is not included in logs (anonymized identifiers are used instead).
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: false,
		enabled:    true,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogReply logs one outbound reply attempt. If the logger is configured
// with IncludePII, the full recipient address is logged; otherwise only
// the recipient domain is used.
func (al *AuditLogger) LogReply(e *ReplyEvent) {
	if al == nil || !al.enabled {
		return
	}

	var attrs []slog.Attr
	if al.includePII {
		attrs = e.LogAuditAttrs()
	} else {
		attrs = e.LogAttrs()
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if e.Success {
		al.logger.Info("reply_sent", args...)
	} else {
		al.logger.Warn("reply_failed", args...)
	}
}
