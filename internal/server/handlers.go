package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/mailsense/internal/assist"
	"github.com/teemow/mailsense/internal/google"
	"github.com/teemow/mailsense/internal/instrumentation"
	"github.com/teemow/mailsense/internal/logging"
)

// MaxRequestBody bounds JSON request bodies. Emails are text; anything
// larger than this is not an email.
const MaxRequestBody = 1 << 20

// API implements the JSON API served on the main listener.
type API struct {
	sc      *ServerContext
	assist  *assist.Service
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger
}

// NewAPI creates the API handler set. logger, metrics, and audit may be nil.
func NewAPI(sc *ServerContext, service *assist.Service, logger *slog.Logger, metrics *instrumentation.Metrics, audit *instrumentation.AuditLogger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	if audit == nil {
		audit = instrumentation.NewAuditLogger(logger, instrumentation.AuditLoggingConfig{})
	}
	return &API{
		sc:      sc,
		assist:  service,
		logger:  logger,
		metrics: metrics,
		audit:   audit,
	}
}

// Register registers all API routes on the given mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.Handle("POST /api/analyze", a.instrument("/api/analyze", a.handleAnalyze))
	mux.Handle("POST /api/replies", a.instrument("/api/replies", a.handleReplies))
	mux.Handle("GET /api/mailbox/status", a.instrument("/api/mailbox/status", a.handleMailboxStatus))
	mux.Handle("GET /api/mailbox/auth-url", a.instrument("/api/mailbox/auth-url", a.handleAuthURL))
	mux.Handle("POST /api/mailbox/exchange", a.instrument("/api/mailbox/exchange", a.handleExchange))
	mux.Handle("GET /api/mailbox/messages", a.instrument("/api/mailbox/messages", a.handleListMessages))
	mux.Handle("GET /api/mailbox/messages/{id}", a.instrument("/api/mailbox/messages/{id}", a.handleGetMessage))
}

// statusRecorder captures the response status for request metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument wraps a handler with request metrics. The route pattern is used
// as the path label to keep cardinality bounded.
func (a *API) instrument(pattern string, handler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		handler(recorder, r)

		a.metrics.RecordHTTPRequest(r.Context(), r.Method, pattern, recorder.status, time.Since(start))
	})
}

// optionsPayload is the wire form of the generation options. Absent fields
// fall back to the defaults.
type optionsPayload struct {
	Tone      string `json:"tone"`
	Length    string `json:"length"`
	Formality string `json:"formality"`
	Variants  int    `json:"variants"`
}

func (p *optionsPayload) toOptions() assist.AnalysisOptions {
	opts := assist.DefaultOptions()
	if p == nil {
		return opts
	}
	if p.Tone != "" {
		opts.Tone = assist.Tone(p.Tone)
	}
	if p.Length != "" {
		opts.Length = assist.Length(p.Length)
	}
	if p.Formality != "" {
		opts.Formality = assist.Formality(p.Formality)
	}
	if p.Variants != 0 {
		opts.Variants = p.Variants
	}
	return opts
}

type emailRequest struct {
	Subject string          `json:"subject"`
	Body    string          `json:"body"`
	Source  string          `json:"source"`
	Options *optionsPayload `json:"options"`
}

func (a *API) decodeEmailRequest(w http.ResponseWriter, r *http.Request) (assist.EmailInput, assist.AnalysisOptions, bool) {
	var req emailRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBody)).Decode(&req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return assist.EmailInput{}, assist.AnalysisOptions{}, false
	}

	input := assist.EmailInput{
		Subject: req.Subject,
		Body:    req.Body,
		Source:  assist.Source(req.Source),
	}
	opts := req.Options.toOptions()

	if err := input.Validate(); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return assist.EmailInput{}, assist.AnalysisOptions{}, false
	}
	if err := opts.Validate(); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return assist.EmailInput{}, assist.AnalysisOptions{}, false
	}

	return input, opts, true
}

func (a *API) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	input, opts, ok := a.decodeEmailRequest(w, r)
	if !ok {
		return
	}

	result, err := a.assist.Analyze(r.Context(), input, opts)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{"analysis": result})
}

func (a *API) handleReplies(w http.ResponseWriter, r *http.Request) {
	input, opts, ok := a.decodeEmailRequest(w, r)
	if !ok {
		return
	}

	candidates, err := a.assist.DraftReplies(r.Context(), input, opts)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{"replies": candidates})
}

func (a *API) handleMailboxStatus(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]any{"authorized": a.sc.Authorized()})
}

func (a *API) handleAuthURL(w http.ResponseWriter, r *http.Request) {
	auth := a.sc.Auth()
	if auth == nil {
		a.writeError(w, r, http.StatusUnauthorized, fmt.Errorf("no OAuth credentials configured"))
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{"url": auth.AuthURL("state")})
}

func (a *API) handleExchange(w http.ResponseWriter, r *http.Request) {
	auth := a.sc.Auth()
	if auth == nil {
		a.writeError(w, r, http.StatusUnauthorized, fmt.Errorf("no OAuth credentials configured"))
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBody)).Decode(&req); err != nil {
		a.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Code == "" {
		a.writeError(w, r, http.StatusBadRequest, fmt.Errorf("authorization code is required"))
		return
	}

	if err := auth.Exchange(r.Context(), req.Code); err != nil {
		a.metrics.RecordOAuthAuth(r.Context(), instrumentation.OAuthResultFailure)
		a.writeServiceError(w, r, err)
		return
	}

	a.metrics.RecordOAuthAuth(r.Context(), instrumentation.OAuthResultSuccess)
	// Drop any cached client so the next mailbox call uses the new token.
	a.sc.SetMailboxClient(nil)

	a.logger.Info("mailbox authorized", logging.Operation("exchange"))
	a.writeJSON(w, http.StatusOK, map[string]any{"authorized": true})
}

func (a *API) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit := int64(0)
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed < 1 {
			a.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = parsed
	}

	ctx, span := instrumentation.StartMailboxSpan(r.Context(), instrumentation.OperationList)
	defer span.End()

	record := instrumentation.NewOperationRecord(instrumentation.ServiceMailbox, instrumentation.OperationList)
	start := time.Now()

	client, err := a.sc.MailboxClient(ctx)
	var summaries any
	if err == nil {
		summaries, err = client.ListMessages(ctx, limit)
	}

	a.finishMailbox(ctx, span, record, instrumentation.OperationList, start, err)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{"messages": summaries})
}

func (a *API) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		a.writeError(w, r, http.StatusBadRequest, fmt.Errorf("message id is required"))
		return
	}

	ctx, span := instrumentation.StartMailboxSpan(r.Context(), instrumentation.OperationGetBody)
	defer span.End()

	record := instrumentation.NewOperationRecord(instrumentation.ServiceMailbox, instrumentation.OperationGetBody).WithMessage(id)
	start := time.Now()

	client, err := a.sc.MailboxClient(ctx)
	var msg any
	if err == nil {
		msg, err = client.GetMessage(ctx, id)
	}

	a.finishMailbox(ctx, span, record, instrumentation.OperationGetBody, start, err)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{"message": msg})
}

// finishMailbox records metrics, audit, and span status for a mailbox
// operation.
func (a *API) finishMailbox(ctx context.Context, span trace.Span, record *instrumentation.OperationRecord, op string, start time.Time, err error) {
	duration := time.Since(start)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}

	a.metrics.RecordMailboxOperation(ctx, op, status, duration)
	a.audit.Record(ctx, record.Complete(ctx, err))
}

// writeJSON writes a JSON response with the given status.
func (a *API) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes an error response with an explicit status.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	a.logger.Warn("request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		logging.Err(err))
	a.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeServiceError maps a service-layer error to an HTTP status.
// Authorization failures are 401, rate limiting is 429, and provider or
// parse failures surface as 502 because the upstream misbehaved.
func (a *API) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var authErr *google.AuthorizationError
	var provErr *assist.ProviderError
	var parseErr *assist.ParseError

	switch {
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
	case errors.As(err, &provErr):
		if provErr.Kind == assist.ProviderRateLimited {
			status = http.StatusTooManyRequests
		} else {
			status = http.StatusBadGateway
		}
	case errors.As(err, &parseErr):
		status = http.StatusBadGateway
	}

	a.writeError(w, r, status, err)
}
