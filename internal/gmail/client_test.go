package gmail

import (
	"encoding/base64"
	"strings"
	"testing"

	gmail "google.golang.org/api/gmail/v1"
)

func encodeBody(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestWalkParts(t *testing.T) {
	tests := []struct {
		name          string
		part          *gmail.MessagePart
		expectedParts int
	}{
		{
			name:          "nil part",
			part:          nil,
			expectedParts: 0,
		},
		{
			name:          "single part",
			part:          &gmail.MessagePart{MimeType: "text/plain"},
			expectedParts: 1,
		},
		{
			name: "nested multipart",
			part: &gmail.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/plain"},
					{
						MimeType: "multipart/related",
						Parts: []*gmail.MessagePart{
							{MimeType: "text/html"},
						},
					},
				},
			},
			expectedParts: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count := 0
			walkParts(tt.part, func(part *gmail.MessagePart) {
				count++
			})
			if count != tt.expectedParts {
				t.Errorf("walkParts() visited %d parts, want %d", count, tt.expectedParts)
			}
		})
	}
}

func TestHeaderValue(t *testing.T) {
	headers := []*gmail.MessagePartHeader{
		{Name: "From", Value: "alice@example.com"},
		{Name: "subject", Value: "Hello"},
		{Name: "Date", Value: "Mon, 2 Jun 2025 10:00:00 +0000"},
	}

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"exact case", "From", "alice@example.com"},
		{"case insensitive", "Subject", "Hello"},
		{"missing", "Reply-To", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := headerValue(headers, tt.header); got != tt.want {
				t.Errorf("headerValue(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "base64url",
			input: base64.URLEncoding.EncodeToString([]byte("hello world")),
			want:  "hello world",
		},
		{
			name:  "standard base64 fallback",
			input: base64.StdEncoding.EncodeToString([]byte{0xfb, 0xff, 0x00}),
			want:  string([]byte{0xfb, 0xff, 0x00}),
		},
		{
			name:    "garbage",
			input:   "!!not base64!!",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBody(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeBody() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("decodeBody() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBodyPrefersPlainText(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "text/html",
				Body:     &gmail.MessagePartBody{Data: encodeBody("<p>HTML version</p>")},
			},
			{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: encodeBody("Plain version")},
			},
		},
	}

	body, err := extractBody(payload)
	if err != nil {
		t.Fatalf("extractBody() error = %v", err)
	}
	if body != "Plain version" {
		t.Errorf("extractBody() = %q, want the text/plain part", body)
	}
}

func TestExtractBodyFallsBackToHTML(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "text/html",
		Body:     &gmail.MessagePartBody{Data: encodeBody("<p>Hello <strong>there</strong></p>")},
	}

	body, err := extractBody(payload)
	if err != nil {
		t.Fatalf("extractBody() error = %v", err)
	}
	if strings.Contains(body, "<p>") {
		t.Errorf("extractBody() = %q, should not contain HTML tags", body)
	}
	if !strings.Contains(body, "Hello") {
		t.Errorf("extractBody() = %q, should contain the text content", body)
	}
}

func TestExtractBodyDeeplyNested(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "text/plain",
						Body:     &gmail.MessagePartBody{Data: encodeBody("nested body")},
					},
				},
			},
		},
	}

	body, err := extractBody(payload)
	if err != nil {
		t.Fatalf("extractBody() error = %v", err)
	}
	if body != "nested body" {
		t.Errorf("extractBody() = %q, want %q", body, "nested body")
	}
}

func TestExtractBodyNoTextPart(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{MimeType: "application/pdf", Body: &gmail.MessagePartBody{AttachmentId: "att1"}},
		},
	}

	if _, err := extractBody(payload); err == nil {
		t.Error("extractBody() should fail when no text part exists")
	}

	if _, err := extractBody(nil); err == nil {
		t.Error("extractBody() should fail for a nil payload")
	}
}

func TestSummaryFromMessage(t *testing.T) {
	msg := &gmail.Message{
		Id:       "msg-1",
		ThreadId: "thread-1",
		Snippet:  "Quick note about...",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "bob@example.com"},
				{Name: "Subject", Value: "Quick note"},
				{Name: "Date", Value: "Tue, 3 Jun 2025 09:30:00 +0000"},
			},
		},
	}

	summary := summaryFromMessage(msg)

	if summary.ID != "msg-1" || summary.ThreadID != "thread-1" {
		t.Errorf("summaryFromMessage() identifiers = %q/%q", summary.ID, summary.ThreadID)
	}
	if summary.From != "bob@example.com" {
		t.Errorf("summaryFromMessage() From = %q", summary.From)
	}
	if summary.Subject != "Quick note" {
		t.Errorf("summaryFromMessage() Subject = %q", summary.Subject)
	}
	if summary.Snippet != "Quick note about..." {
		t.Errorf("summaryFromMessage() Snippet = %q", summary.Snippet)
	}
}

func TestSummaryFromMessageNilPayload(t *testing.T) {
	summary := summaryFromMessage(&gmail.Message{Id: "msg-2"})
	if summary.ID != "msg-2" || summary.From != "" || summary.Subject != "" {
		t.Errorf("summaryFromMessage() = %+v, want empty headers", summary)
	}
}
