// Package logging provides structured logging helpers built on log/slog.
//
// It defines canonical attribute keys used across the application so that
// log output is consistent and queryable, plus helpers for PII-safe logging
// of user emails and OAuth tokens. The Logger interface and SlogAdapter
// allow components to depend on a narrow logging surface rather than on
// slog directly.
package logging
