package assist

import "fmt"

// ProviderErrorKind classifies completion provider failures.
type ProviderErrorKind string

// Provider failure kinds.
const (
	ProviderAuth        ProviderErrorKind = "auth"
	ProviderRateLimited ProviderErrorKind = "rate_limited"
	ProviderNetwork     ProviderErrorKind = "network"
	ProviderMalformed   ProviderErrorKind = "malformed_response"
)

// ProviderError reports a failure from the hosted completion API.
// It covers authentication failures, rate limiting, network failures, and
// malformed responses.
type ProviderError struct {
	Kind ProviderErrorKind
	Op   string
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion provider: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("completion provider: %s: %s", e.Op, e.Kind)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is worth a single retry.
// Only network failures qualify; auth and rate-limit failures will not
// resolve by retrying immediately.
func (e *ProviderError) Transient() bool {
	return e.Kind == ProviderNetwork
}

// ParseError reports that the model output did not contain the expected
// structured fields. The caller must treat the result as unusable; a partial
// result is never returned alongside a ParseError.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse model output: " + e.Reason
}
