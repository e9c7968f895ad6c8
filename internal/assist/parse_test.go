package assist

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysis(t *testing.T) {
	raw := `{
		"language": "en",
		"urgency": "high",
		"sentiment": "negative",
		"category": "Billing",
		"summary": "The customer reports a double charge and asks for a refund.",
		"action_items": ["Refund the duplicate charge", "Confirm by email"]
	}`

	result, err := ParseAnalysis(raw)
	require.NoError(t, err)

	assert.Equal(t, "en", result.Language)
	assert.Equal(t, UrgencyHigh, result.Urgency)
	assert.Equal(t, SentimentNegative, result.Sentiment)
	assert.Equal(t, "Billing", result.Category)
	assert.Len(t, result.ActionItems, 2)
}

func TestParseAnalysisMarkdownFenced(t *testing.T) {
	raw := "Here is the analysis:\n```json\n" +
		`{"language":"de","urgency":"low","sentiment":"neutral","category":"Scheduling","summary":"A meeting proposal.","action_items":[]}` +
		"\n```\n"

	result, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "de", result.Language)
	assert.Equal(t, UrgencyLow, result.Urgency)
	assert.Empty(t, result.ActionItems)
}

func TestParseAnalysisNormalizesLabels(t *testing.T) {
	raw := `{"language":"EN","urgency":"Medium","sentiment":"MIXED","category":"Support","summary":"Mixed feedback.","action_items":null}`

	result, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "en", result.Language)
	assert.Equal(t, UrgencyMedium, result.Urgency)
	assert.Equal(t, SentimentMixed, result.Sentiment)
}

func TestParseAnalysisDefaultsLanguage(t *testing.T) {
	raw := `{"urgency":"low","sentiment":"neutral","category":"Other","summary":"Short note.","action_items":[]}`

	result, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "und", result.Language)
}

func TestParseAnalysisErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty output", raw: ""},
		{name: "prose only", raw: "I could not analyze this email."},
		{name: "unbalanced JSON", raw: `{"urgency":"low"`},
		{name: "missing summary", raw: `{"urgency":"low","sentiment":"neutral","category":"Other","summary":"","action_items":[]}`},
		{name: "missing category", raw: `{"urgency":"low","sentiment":"neutral","summary":"A note.","action_items":[]}`},
		{name: "urgency out of set", raw: `{"urgency":"critical","sentiment":"neutral","category":"Other","summary":"A note.","action_items":[]}`},
		{name: "sentiment out of set", raw: `{"urgency":"low","sentiment":"angry","category":"Other","summary":"A note.","action_items":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseAnalysis(tt.raw)
			assert.Nil(t, result)

			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func repliesJSON(n int) string {
	out := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"subject":"Re: request %d","body":"Thanks, reply number %d."}`, i, i)
	}
	return out + "]"
}

func TestParseReplies(t *testing.T) {
	for _, want := range []int{1, 3, 5} {
		t.Run(fmt.Sprintf("variants_%d", want), func(t *testing.T) {
			candidates, err := ParseReplies(repliesJSON(want), want)
			require.NoError(t, err)
			require.Len(t, candidates, want)
			for _, c := range candidates {
				assert.NotEmpty(t, c.Subject)
				assert.NotEmpty(t, c.Body)
			}
		})
	}
}

func TestParseRepliesTrimsSurplus(t *testing.T) {
	candidates, err := ParseReplies(repliesJSON(5), 2)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestParseRepliesWrappedObject(t *testing.T) {
	raw := `{"replies":[{"subject":"Re: hi","body":"Hello back."}]}`
	candidates, err := ParseReplies(raw, 1)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Re: hi", candidates[0].Subject)
}

func TestParseRepliesErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "empty output", raw: "", want: 1},
		{name: "shortfall", raw: repliesJSON(2), want: 3},
		{name: "empty subject", raw: `[{"subject":"","body":"hello"}]`, want: 1},
		{name: "empty body", raw: `[{"subject":"Re: hi","body":"  "}]`, want: 1},
		{name: "not an array", raw: `{"subject":"Re: hi","body":"hello"}`, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates, err := ParseReplies(tt.raw, tt.want)
			assert.Nil(t, candidates)

			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestExtractJSONHandlesStringsWithBraces(t *testing.T) {
	raw := `Sure: {"summary":"Use {curly} braces and a \" quote","category":"Other","urgency":"low","sentiment":"neutral"} done.`

	doc, err := extractJSON(raw)
	require.NoError(t, err)
	assert.Contains(t, doc, `{curly}`)
	assert.True(t, doc[0] == '{' && doc[len(doc)-1] == '}')
}
