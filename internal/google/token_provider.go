package google

import (
	"context"
	"net/http"
)

// TokenProvider is the part of the authorization flow the rest of the
// application depends on. The abstraction keeps HTTP handlers testable
// without real Google credentials.
type TokenProvider interface {
	// HasToken reports whether a cached token exists.
	HasToken() bool

	// AuthURL returns the user-facing authorization URL.
	AuthURL(state string) string

	// Exchange trades an authorization code for tokens and caches them.
	Exchange(ctx context.Context, authCode string) error

	// HTTPClient returns an HTTP client with OAuth credentials attached.
	HTTPClient(ctx context.Context) (*http.Client, error)
}

var _ TokenProvider = (*Authenticator)(nil)
