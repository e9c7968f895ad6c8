package assist

import "fmt"

// Source indicates where an email came from.
type Source string

// Valid email sources.
const (
	SourcePasted  Source = "pasted"
	SourceMailbox Source = "mailbox"
)

// EmailInput is the email under analysis. It is captured once per run and
// never mutated afterwards.
type EmailInput struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Source  Source `json:"source"`
}

// Validate checks that the input carries enough content to analyze.
func (e EmailInput) Validate() error {
	if e.Body == "" {
		return fmt.Errorf("email body is required")
	}
	switch e.Source {
	case SourcePasted, SourceMailbox, "":
	default:
		return fmt.Errorf("invalid source %q", e.Source)
	}
	return nil
}

// Tone controls the voice of generated replies.
type Tone string

// Valid tones.
const (
	ToneProfessional Tone = "Professional"
	ToneFriendly     Tone = "Friendly"
	ToneAssertive    Tone = "Assertive"
	ToneNeutral      Tone = "Neutral"
)

// Length controls how long generated replies should be.
type Length string

// Valid lengths.
const (
	LengthShort  Length = "Short"
	LengthMedium Length = "Medium"
	LengthLong   Length = "Long"
)

// Formality controls the register of generated replies.
type Formality string

// Valid formality levels.
const (
	FormalityCasual   Formality = "Casual"
	FormalityStandard Formality = "Standard"
	FormalityFormal   Formality = "Formal"
)

// MaxVariants bounds the number of reply candidates per request.
const MaxVariants = 5

// AnalysisOptions are the user-chosen generation options. They are supplied
// per invocation and never persisted.
type AnalysisOptions struct {
	Tone      Tone      `json:"tone"`
	Length    Length    `json:"length"`
	Formality Formality `json:"formality"`
	Variants  int       `json:"variants"`
}

// DefaultOptions returns the options used when the user picks nothing.
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		Tone:      ToneProfessional,
		Length:    LengthMedium,
		Formality: FormalityStandard,
		Variants:  1,
	}
}

// Validate rejects options outside the defined sets.
func (o AnalysisOptions) Validate() error {
	switch o.Tone {
	case ToneProfessional, ToneFriendly, ToneAssertive, ToneNeutral:
	default:
		return fmt.Errorf("invalid tone %q", o.Tone)
	}
	switch o.Length {
	case LengthShort, LengthMedium, LengthLong:
	default:
		return fmt.Errorf("invalid length %q", o.Length)
	}
	switch o.Formality {
	case FormalityCasual, FormalityStandard, FormalityFormal:
	default:
		return fmt.Errorf("invalid formality %q", o.Formality)
	}
	if o.Variants < 1 || o.Variants > MaxVariants {
		return fmt.Errorf("variants must be between 1 and %d, got %d", MaxVariants, o.Variants)
	}
	return nil
}

// Urgency labels, ordered low to high.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
	SentimentMixed    = "mixed"
)

// AnalysisResult is the structured outcome of analyzing one email.
// It is derived purely from the email, the options, and the model response
// for that single call; it is never mutated after creation.
type AnalysisResult struct {
	Language    string   `json:"language"`
	Urgency     string   `json:"urgency"`
	Sentiment   string   `json:"sentiment"`
	Category    string   `json:"category"`
	Summary     string   `json:"summary"`
	ActionItems []string `json:"action_items"`
}

// ReplyCandidate is one suggested reply.
type ReplyCandidate struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
