// Package gmail provides read-only access to a Gmail mailbox.
//
// The client lists recent messages with metadata-only fetches and retrieves
// a single message body on demand, preferring the text/plain part and
// falling back to a markdown rendering of text/html.
package gmail
