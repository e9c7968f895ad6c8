package google

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

// Authenticator drives the OAuth2 authorization-code flow and caches the
// resulting token on disk. Only the gmail.readonly scope is ever requested.
type Authenticator struct {
	config    *oauth2.Config
	tokenPath string
}

// NewAuthenticator builds an Authenticator from an OAuth client credentials
// JSON file (the "credentials.json" downloaded from the Google Cloud
// console). tokenPath may be empty, in which case the token is cached under
// the user cache directory.
func NewAuthenticator(credentialsPath, tokenPath string) (*Authenticator, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read OAuth credentials: %w", err)
	}

	config, err := google.ConfigFromJSON(data, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OAuth credentials: %w", err)
	}

	if tokenPath == "" {
		tokenPath = DefaultTokenPath()
	}

	return &Authenticator{config: config, tokenPath: tokenPath}, nil
}

// DefaultTokenPath returns the default location of the cached token.
func DefaultTokenPath() string {
	return filepath.Join(userCacheDir(), "mailsense", "google.token")
}

// HasToken reports whether a cached token exists on disk.
// It does not verify that the token is still valid.
func (a *Authenticator) HasToken() bool {
	_, err := os.ReadFile(a.tokenPath)
	return err == nil
}

// AuthURL returns the URL the user visits to authorize mailbox access.
// state is echoed back by the authorization server.
func (a *Authenticator) AuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for tokens and caches them.
func (a *Authenticator) Exchange(ctx context.Context, authCode string) error {
	t, err := a.config.Exchange(ctx, strings.TrimSpace(authCode))
	if err != nil {
		return &AuthorizationError{Reason: "failed to exchange authorization code", Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(a.tokenPath), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tokenData := t.AccessToken + " " + t.RefreshToken
	if err := os.WriteFile(a.tokenPath, []byte(tokenData), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// TokenSource returns an auto-refreshing token source backed by the cached
// token. The access token is forced to refresh on first use so a stale cache
// surfaces immediately.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	slurp, err := os.ReadFile(a.tokenPath)
	if err != nil {
		return nil, &AuthorizationError{Reason: "no cached token, authorize the mailbox first"}
	}

	f := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(f) != 2 {
		return nil, &AuthorizationError{Reason: "cached token file is malformed"}
	}

	ts := a.config.TokenSource(ctx, &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	})

	if _, err := ts.Token(); err != nil {
		return nil, &AuthorizationError{Reason: "cached token is invalid", Err: err}
	}

	return ts, nil
}

// HTTPClient returns an HTTP client that attaches OAuth credentials to every
// request. The client uses HTTP/1.1 to avoid HTTP/2 protocol errors seen
// with the Google APIs.
func (a *Authenticator) HTTPClient(ctx context.Context) (*http.Client, error) {
	ts, err := a.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)

	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	return client, nil
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		panic("No Windows TEMP or TMP environment variables found")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
