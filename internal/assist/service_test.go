package assist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider returns queued responses in order. Each call pops one entry.
type fakeProvider struct {
	responses []string
	errs      []error
	requests  []CompletionRequest
}

func (f *fakeProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.requests = append(f.requests, req)
	i := len(f.requests) - 1
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp string
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

const validAnalysisJSON = `{"language":"en","urgency":"medium","sentiment":"neutral","category":"Scheduling","summary":"A meeting request for Tuesday.","action_items":["Confirm the slot"]}`

func TestServiceAnalyze(t *testing.T) {
	provider := &fakeProvider{responses: []string{validAnalysisJSON}}
	svc := NewService(provider, nil, nil, nil)

	result, err := svc.Analyze(context.Background(), EmailInput{Body: "Can we meet Tuesday?"}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "Scheduling", result.Category)
	require.Len(t, provider.requests, 1)
	assert.Equal(t, SystemPrompt, provider.requests[0].System)
	assert.InDelta(t, analysisTemperature, provider.requests[0].Temperature, 0.001)
	assert.Contains(t, provider.requests[0].Prompt, "Can we meet Tuesday?")
}

func TestServiceAnalyzeRejectsInvalidInput(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(provider, nil, nil, nil)

	_, err := svc.Analyze(context.Background(), EmailInput{}, DefaultOptions())
	assert.Error(t, err)
	assert.Empty(t, provider.requests)
}

func TestServiceDraftReplies(t *testing.T) {
	provider := &fakeProvider{responses: []string{repliesJSON(2)}}
	svc := NewService(provider, nil, nil, nil)

	opts := DefaultOptions()
	opts.Variants = 2
	opts.Tone = ToneFriendly

	candidates, err := svc.DraftReplies(context.Background(), EmailInput{Body: "Thanks for the update!"}, opts)
	require.NoError(t, err)

	assert.Len(t, candidates, 2)
	require.Len(t, provider.requests, 1)
	assert.InDelta(t, replyTemperature, provider.requests[0].Temperature, 0.001)
	assert.Contains(t, provider.requests[0].Prompt, "Tone: Friendly")
}

func TestServiceRetriesTransientFailureOnce(t *testing.T) {
	provider := &fakeProvider{
		errs:      []error{&ProviderError{Kind: ProviderNetwork, Op: "complete"}, nil},
		responses: []string{"", validAnalysisJSON},
	}
	svc := NewService(provider, nil, nil, nil)

	result, err := svc.Analyze(context.Background(), EmailInput{Body: "hello"}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Scheduling", result.Category)
	assert.Len(t, provider.requests, 2)
}

func TestServiceDoesNotRetryNonTransientFailure(t *testing.T) {
	for _, kind := range []ProviderErrorKind{ProviderAuth, ProviderRateLimited, ProviderMalformed} {
		t.Run(string(kind), func(t *testing.T) {
			provider := &fakeProvider{errs: []error{&ProviderError{Kind: kind, Op: "complete"}}}
			svc := NewService(provider, nil, nil, nil)

			_, err := svc.Analyze(context.Background(), EmailInput{Body: "hello"}, DefaultOptions())
			require.Error(t, err)

			var perr *ProviderError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, kind, perr.Kind)
			assert.Len(t, provider.requests, 1)
		})
	}
}

func TestServiceStopsAfterSecondFailure(t *testing.T) {
	provider := &fakeProvider{
		errs: []error{
			&ProviderError{Kind: ProviderNetwork, Op: "complete"},
			&ProviderError{Kind: ProviderNetwork, Op: "complete"},
		},
	}
	svc := NewService(provider, nil, nil, nil)

	_, err := svc.Analyze(context.Background(), EmailInput{Body: "hello"}, DefaultOptions())
	require.Error(t, err)
	assert.Len(t, provider.requests, 2)
}

func TestServiceSurfacesParseError(t *testing.T) {
	provider := &fakeProvider{responses: []string{"no JSON here"}}
	svc := NewService(provider, nil, nil, nil)

	_, err := svc.Analyze(context.Background(), EmailInput{Body: "hello"}, DefaultOptions())
	require.Error(t, err)

	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}
