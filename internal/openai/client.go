package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/teemow/mailsense/internal/assist"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// Config holds the settings for the completion client.
type Config struct {
	// APIKey authenticates against the API. Required.
	APIKey string

	// Model selects the chat model. Defaults to DefaultModel.
	Model string

	// BaseURL overrides the API endpoint. Used by tests and proxies.
	BaseURL string
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	return nil
}

// Client calls the OpenAI chat completions API. It implements
// assist.CompletionProvider.
type Client struct {
	client openai.Client
	model  string
}

// New creates a Client from config.
func New(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid completion config: %w", err)
	}

	// Retry policy lives in the assist service; the SDK must not add its own.
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Model returns the configured chat model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends one system+user exchange to the chat completions API and
// returns the raw assistant message. Failures are classified as
// assist.ProviderError so callers can decide on retry and HTTP mapping.
func (c *Client) Complete(ctx context.Context, req assist.CompletionRequest) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(req.System),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(req.Prompt),
					},
				},
			},
		},
		Model:       c.model,
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return "", c.classify(err)
	}

	if len(completion.Choices) == 0 {
		return "", &assist.ProviderError{
			Kind: assist.ProviderMalformed,
			Op:   "chat.completions",
			Err:  fmt.Errorf("response contained no choices"),
		}
	}

	content := completion.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &assist.ProviderError{
			Kind: assist.ProviderMalformed,
			Op:   "chat.completions",
			Err:  fmt.Errorf("response contained an empty message"),
		}
	}

	return content, nil
}

// classify maps an SDK error to an assist.ProviderError kind.
// HTTP 401/403 are authentication failures, 429 is rate limiting, and
// everything else (including transport errors without a status) counts as a
// network failure.
func (c *Client) classify(err error) error {
	kind := assist.ProviderNetwork

	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case 401, 403:
			kind = assist.ProviderAuth
		case 429:
			kind = assist.ProviderRateLimited
		}
	}

	return &assist.ProviderError{
		Kind: kind,
		Op:   "chat.completions",
		Err:  err,
	}
}
