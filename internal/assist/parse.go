package assist

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The model is asked for JSON only, but replies routinely arrive wrapped in
// markdown code fences or with a sentence of prose around them. extractJSON
// locates the first balanced JSON object or array in the raw output.
func extractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &ParseError{Reason: "empty model output"}
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", &ParseError{Reason: "no JSON value found in model output"}
	}

	open := s[start]
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}

	return "", &ParseError{Reason: "unbalanced JSON in model output"}
}

// normalizeLabel lowercases a label and checks it against the allowed set.
func normalizeLabel(value string, allowed ...string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return v, true
		}
	}
	return v, false
}

// analysisPayload mirrors the JSON shape requested from the model.
type analysisPayload struct {
	Language    string   `json:"language"`
	Urgency     string   `json:"urgency"`
	Sentiment   string   `json:"sentiment"`
	Category    string   `json:"category"`
	Summary     string   `json:"summary"`
	ActionItems []string `json:"action_items"`
}

// ParseAnalysis extracts an AnalysisResult from raw model output.
// Missing or out-of-set required fields yield a ParseError; a partial result
// is never returned.
func ParseAnalysis(raw string) (*AnalysisResult, error) {
	doc, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(doc), &payload); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if strings.TrimSpace(payload.Summary) == "" {
		return nil, &ParseError{Reason: "missing summary"}
	}
	if strings.TrimSpace(payload.Category) == "" {
		return nil, &ParseError{Reason: "missing category"}
	}

	urgency, ok := normalizeLabel(payload.Urgency, UrgencyLow, UrgencyMedium, UrgencyHigh)
	if !ok {
		return nil, &ParseError{Reason: fmt.Sprintf("urgency %q not in {low, medium, high}", payload.Urgency)}
	}

	sentiment, ok := normalizeLabel(payload.Sentiment,
		SentimentPositive, SentimentNeutral, SentimentNegative, SentimentMixed)
	if !ok {
		return nil, &ParseError{Reason: fmt.Sprintf("sentiment %q not in {positive, neutral, negative, mixed}", payload.Sentiment)}
	}

	language := strings.ToLower(strings.TrimSpace(payload.Language))
	if language == "" {
		language = "und" // ISO 639-2 "undetermined"
	}

	items := make([]string, 0, len(payload.ActionItems))
	for _, item := range payload.ActionItems {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}

	return &AnalysisResult{
		Language:    language,
		Urgency:     urgency,
		Sentiment:   sentiment,
		Category:    strings.TrimSpace(payload.Category),
		Summary:     strings.TrimSpace(payload.Summary),
		ActionItems: items,
	}, nil
}

// replyPayload mirrors one element of the JSON array requested from the model.
type replyPayload struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ParseReplies extracts exactly want reply candidates from raw model output.
// Surplus candidates are dropped; a shortfall or an empty subject/body is a
// ParseError.
func ParseReplies(raw string, want int) ([]ReplyCandidate, error) {
	doc, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var payload []replyPayload
	if err := json.Unmarshal([]byte(doc), &payload); err != nil {
		// Some models wrap the array in an object; tolerate {"replies": [...]}.
		var wrapped struct {
			Replies []replyPayload `json:"replies"`
		}
		if err2 := json.Unmarshal([]byte(doc), &wrapped); err2 != nil || wrapped.Replies == nil {
			return nil, &ParseError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
		}
		payload = wrapped.Replies
	}

	if len(payload) < want {
		return nil, &ParseError{Reason: fmt.Sprintf("requested %d reply candidates, model returned %d", want, len(payload))}
	}

	candidates := make([]ReplyCandidate, 0, want)
	for _, p := range payload[:want] {
		subject := strings.TrimSpace(p.Subject)
		body := strings.TrimSpace(p.Body)
		if subject == "" {
			return nil, &ParseError{Reason: "reply candidate with empty subject"}
		}
		if body == "" {
			return nil, &ParseError{Reason: "reply candidate with empty body"}
		}
		candidates = append(candidates, ReplyCandidate{Subject: subject, Body: body})
	}

	return candidates, nil
}
