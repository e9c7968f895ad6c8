package assist

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/mailsense/internal/instrumentation"
	"github.com/teemow/mailsense/internal/logging"
)

// Generation temperatures. Analysis wants consistent labels; reply drafting
// wants some variety between candidates.
const (
	analysisTemperature = 0.2
	replyTemperature    = 0.7
)

// CompletionRequest is one call to the hosted completion API.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
}

// CompletionProvider sends a prompt to a hosted completion API and returns
// the raw model output. Implementations classify failures as ProviderError.
type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Service orchestrates prompt construction, the provider call, and response
// parsing. Results are derived purely per call; the service holds no
// cross-request state.
type Service struct {
	provider CompletionProvider
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger
}

// NewService creates a Service. logger, metrics, and audit may be nil; nil
// dependencies are replaced with no-op equivalents.
func NewService(provider CompletionProvider, logger *slog.Logger, metrics *instrumentation.Metrics, audit *instrumentation.AuditLogger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	if audit == nil {
		audit = instrumentation.NewAuditLogger(logger, instrumentation.AuditLoggingConfig{})
	}
	return &Service{
		provider: provider,
		logger:   logger,
		metrics:  metrics,
		audit:    audit,
	}
}

// Analyze runs the analysis pipeline for one email.
func (s *Service) Analyze(ctx context.Context, input EmailInput, opts AnalysisOptions) (*AnalysisResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ctx, span := instrumentation.StartCompletionSpan(ctx, instrumentation.OperationAnalyze)
	defer span.End()

	record := instrumentation.NewOperationRecord(instrumentation.ServiceCompletion, instrumentation.OperationAnalyze)
	start := time.Now()

	raw, err := s.complete(ctx, instrumentation.OperationAnalyze, CompletionRequest{
		System:      SystemPrompt,
		Prompt:      BuildAnalysisPrompt(input),
		Temperature: analysisTemperature,
	})
	var result *AnalysisResult
	if err == nil {
		result, err = ParseAnalysis(raw)
	}

	s.finish(ctx, span, record, instrumentation.OperationAnalyze, start, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DraftReplies runs the reply-generation pipeline for one email, producing
// exactly opts.Variants candidates.
func (s *Service) DraftReplies(ctx context.Context, input EmailInput, opts AnalysisOptions) ([]ReplyCandidate, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ctx, span := instrumentation.StartCompletionSpan(ctx, instrumentation.OperationDraftReplies)
	defer span.End()

	record := instrumentation.NewOperationRecord(instrumentation.ServiceCompletion, instrumentation.OperationDraftReplies)
	start := time.Now()

	raw, err := s.complete(ctx, instrumentation.OperationDraftReplies, CompletionRequest{
		System:      SystemPrompt,
		Prompt:      BuildReplyPrompt(input, opts),
		Temperature: replyTemperature,
	})
	var candidates []ReplyCandidate
	if err == nil {
		candidates, err = ParseReplies(raw, opts.Variants)
	}

	s.finish(ctx, span, record, instrumentation.OperationDraftReplies, start, err)
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// complete issues the provider call with a single bounded retry for
// transient network failures. No further retry or backoff policy exists.
func (s *Service) complete(ctx context.Context, op string, req CompletionRequest) (string, error) {
	raw, err := s.provider.Complete(ctx, req)
	if err == nil {
		return raw, nil
	}

	var perr *ProviderError
	if errors.As(err, &perr) && perr.Transient() && ctx.Err() == nil {
		s.logger.Warn("transient provider failure, retrying once",
			logging.Operation(op), logging.Err(err))
		return s.provider.Complete(ctx, req)
	}

	return "", err
}

// finish records metrics, audit, spans, and logs for a completed operation.
func (s *Service) finish(ctx context.Context, span trace.Span, record *instrumentation.OperationRecord, op string, start time.Time, err error) {
	duration := time.Since(start)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}

	s.metrics.RecordCompletion(ctx, op, status, duration)
	s.audit.Record(ctx, record.Complete(ctx, err))

	if err != nil {
		s.logger.Error("completion operation failed",
			logging.Operation(op),
			logging.Status(status),
			slog.Duration(logging.KeyDuration, duration),
			logging.Err(err))
		return
	}
	s.logger.Info("completion operation finished",
		logging.Operation(op),
		logging.Status(status),
		slog.Duration(logging.KeyDuration, duration))
}
