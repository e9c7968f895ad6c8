// Package assist turns a raw email into structured insight and reply drafts.
//
// It owns the prompt templates, the parsing of model output into typed
// results, and the orchestration around a CompletionProvider. The package is
// stateless: every analysis is a pure function of the email, the options,
// and the model response for that single call.
package assist
