package server

import (
	"context"
	"sync"

	"github.com/teemow/mailsense/internal/gmail"
	"github.com/teemow/mailsense/internal/google"
)

// MailboxClient is the part of the Gmail client the HTTP handlers use.
type MailboxClient interface {
	ListMessages(ctx context.Context, maxResults int64) ([]gmail.MessageSummary, error)
	GetMessage(ctx context.Context, id string) (*gmail.Message, error)
}

// ServerContext holds the shared dependencies of the HTTP server.
// The mailbox client is created lazily on first use because authorization
// may only happen after the server is already running.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	auth       google.TokenProvider
	mailbox    MailboxClient
	newMailbox func(ctx context.Context) (MailboxClient, error)

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a ServerContext. auth may be nil when no OAuth
// credentials are configured; mailbox endpoints then report unauthorized.
func NewServerContext(ctx context.Context, auth google.TokenProvider) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		auth:   auth,
	}
	sc.newMailbox = sc.dialMailbox

	return sc
}

// Context returns the server lifetime context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Auth returns the configured token provider, or nil.
func (sc *ServerContext) Auth() google.TokenProvider {
	return sc.auth
}

// Authorized reports whether a mailbox token is available.
func (sc *ServerContext) Authorized() bool {
	return sc.auth != nil && sc.auth.HasToken()
}

// MailboxClient returns the cached Gmail client, creating it on first use.
func (sc *ServerContext) MailboxClient(ctx context.Context) (MailboxClient, error) {
	sc.mu.RLock()
	client := sc.mailbox
	sc.mu.RUnlock()
	if client != nil {
		return client, nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.mailbox != nil {
		return sc.mailbox, nil
	}

	client, err := sc.newMailbox(ctx)
	if err != nil {
		return nil, err
	}

	sc.mailbox = client
	return client, nil
}

// SetMailboxClient replaces the cached Gmail client. Passing nil drops the
// cache so the next use redials, which is needed after re-authorization.
func (sc *ServerContext) SetMailboxClient(client MailboxClient) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.mailbox = client
}

func (sc *ServerContext) dialMailbox(ctx context.Context) (MailboxClient, error) {
	if sc.auth == nil {
		return nil, &google.AuthorizationError{Reason: "no OAuth credentials configured"}
	}

	httpClient, err := sc.auth.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}

	return gmail.NewClient(sc.ctx, httpClient)
}

// IsShutdown reports whether the server context has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context. Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
