// Package cmd implements the command-line interface for mailsense.
//
// This package provides the following commands:
//   - serve: Start the HTTP server with the browser UI and JSON API
//   - auth: Authorize read-only Gmail access from the terminal
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
