// Package server exposes the HTTP surface of the application.
//
// It serves the browser UI, the JSON API for analysis and reply drafting,
// the mailbox authorization endpoints, and health probes. Prometheus
// metrics run on a dedicated port so operational data stays off the main
// listener.
package server
