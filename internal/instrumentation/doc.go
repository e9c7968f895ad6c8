// Package instrumentation provides OpenTelemetry-based observability for
// mailsense.
//
// It contains:
//   - Provider: lifecycle management for meter and tracer providers with
//     prometheus, OTLP, and stdout exporters
//   - Metrics: typed recorders for HTTP, completion API, mailbox API, and
//     OAuth metrics
//   - Span helpers for completion and mailbox operations
//   - AuditLogger: structured audit records for operations that touch user
//     mail, with PII controls
//   - Cardinality helpers to keep metric label values bounded
//
// Configuration comes from environment variables (see Config and
// DefaultConfig). Instrumentation can be disabled entirely with
// INSTRUMENTATION_ENABLED=false, in which case all recorders become no-ops.
package instrumentation
