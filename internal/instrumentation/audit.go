package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/mailsense/internal/logging"
)

// OperationRecord captures all information about a completion or mailbox
// operation for audit logging.
//
// # Privacy Considerations
//
// The UserEmail field contains PII. When logging, consider:
//   - Using UserDomain() to get only the domain for metrics/general logs
//   - Only logging the full email when IncludePII is enabled
//   - Ensuring audit logs have appropriate access controls
type OperationRecord struct {
	// Service is the upstream service (completion, mailbox)
	Service string

	// Operation is the operation type (analyze, draft_replies, list, get_body)
	Operation string

	// UserEmail is the authenticated mailbox account, when known
	UserEmail string

	// MessageID is the mailbox message identifier, when applicable
	MessageID string

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// UserDomain returns the domain portion of the user's email for lower-cardinality logging.
func (r *OperationRecord) UserDomain() string {
	return ExtractUserDomain(r.UserEmail)
}

// Status returns "success" or "error" based on the Success field.
func (r *OperationRecord) Status() string {
	if r.Success {
		return StatusSuccess
	}
	return StatusError
}

// NewOperationRecord creates a new OperationRecord with timing started.
// Call Complete() when the operation finishes.
func NewOperationRecord(service, operation string) *OperationRecord {
	return &OperationRecord{
		Service:   service,
		Operation: operation,
		StartTime: time.Now(),
	}
}

// WithUser sets the mailbox account the operation acts on.
func (r *OperationRecord) WithUser(email string) *OperationRecord {
	r.UserEmail = email
	return r
}

// WithMessage sets the mailbox message identifier.
func (r *OperationRecord) WithMessage(id string) *OperationRecord {
	r.MessageID = id
	return r
}

// Complete finalizes the record with the outcome and captures the trace
// context from ctx if a span is active.
func (r *OperationRecord) Complete(ctx context.Context, err error) *OperationRecord {
	r.Duration = time.Since(r.StartTime)
	r.Success = err == nil
	if err != nil {
		r.Error = err.Error()
	}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.TraceID = span.SpanContext().TraceID().String()
		r.SpanID = span.SpanContext().SpanID().String()
	}

	return r
}

// logAttrs returns slog attributes for the record. When includePII is false
// the user email is anonymized to a stable hash.
func (r *OperationRecord) logAttrs(includePII bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String(logging.KeyService, r.Service),
		slog.String(logging.KeyOperation, r.Operation),
		slog.Duration(logging.KeyDuration, r.Duration),
		slog.Bool("success", r.Success),
	}

	if r.UserEmail != "" {
		if includePII {
			attrs = append(attrs, slog.String("user", r.UserEmail))
		} else {
			attrs = append(attrs, logging.UserHash(r.UserEmail))
		}
	}
	if r.MessageID != "" {
		attrs = append(attrs, slog.String(logging.KeyMessageID, r.MessageID))
	}
	if r.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", r.TraceID))
	}
	if r.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", r.SpanID))
	}
	if r.Error != "" {
		attrs = append(attrs, slog.String(logging.KeyError, r.Error))
	}

	return attrs
}

// AuditLogger writes audit records for completion and mailbox operations.
type AuditLogger struct {
	logger *slog.Logger
	config AuditLoggingConfig
}

// NewAuditLogger creates an AuditLogger. If logger is nil, slog.Default() is used.
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger: logger.With(slog.String("log_type", "audit")),
		config: config,
	}
}

// Record writes an audit log entry for a completed operation.
// Audit entries are always written at Info level when enabled, regardless of
// outcome; the success field carries the result.
func (a *AuditLogger) Record(ctx context.Context, record *OperationRecord) {
	if !a.config.Enabled {
		return
	}

	a.logger.LogAttrs(ctx, slog.LevelInfo, "operation completed",
		record.logAttrs(a.config.IncludePII)...)
}
