// Package openai implements assist.CompletionProvider on top of the
// OpenAI chat completions API.
package openai
