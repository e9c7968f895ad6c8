package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/mailsense/internal/logging"
)

// DefaultListLimit bounds how many messages a listing fetches when the
// caller does not say otherwise.
const DefaultListLimit = 25

// Client wraps the Gmail Users service with read-only operations.
type Client struct {
	svc    *gmail.UsersService
	logger logging.Logger
}

// NewClient creates a Gmail client on top of an OAuth-authenticated HTTP
// client.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{svc: svc.Users, logger: logging.DefaultLogger()}, nil
}

// SetLogger replaces the client's logger.
func (c *Client) SetLogger(logger logging.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// ListMessages returns up to maxResults recent inbox messages, newest first.
// Only metadata headers are fetched; bodies require GetMessage.
func (c *Client) ListMessages(ctx context.Context, maxResults int64) ([]MessageSummary, error) {
	if maxResults <= 0 {
		maxResults = DefaultListLimit
	}

	var summaries []MessageSummary
	pageToken := ""
	for {
		req := c.svc.Messages.List("me").Q("in:inbox").MaxResults(maxResults).Context(ctx)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		for _, m := range res.Messages {
			if int64(len(summaries)) >= maxResults {
				break
			}
			summary, err := c.fetchSummary(ctx, m.Id)
			if err != nil {
				return nil, err
			}
			summaries = append(summaries, *summary)
		}

		if res.NextPageToken == "" || int64(len(summaries)) >= maxResults {
			break
		}
		pageToken = res.NextPageToken
	}

	c.logger.Debug("listed inbox messages", "count", len(summaries))
	return summaries, nil
}

// fetchSummary fetches the metadata headers for one message.
func (c *Client) fetchSummary(ctx context.Context, id string) (*MessageSummary, error) {
	msg, err := c.svc.Messages.Get("me", id).
		Format("metadata").
		MetadataHeaders("From", "Subject", "Date").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	summary := summaryFromMessage(msg)
	return &summary, nil
}

// GetMessage fetches one message in full and extracts its plain-text body.
func (c *Client) GetMessage(ctx context.Context, id string) (*Message, error) {
	msg, err := c.svc.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	body, err := extractBody(msg.Payload)
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", id, err)
	}

	c.logger.Debug("fetched message body", logging.KeyMessageID, id, "bytes", len(body))

	return &Message{
		MessageSummary: summaryFromMessage(msg),
		Body:           body,
	}, nil
}

func summaryFromMessage(msg *gmail.Message) MessageSummary {
	var headers []*gmail.MessagePartHeader
	if msg.Payload != nil {
		headers = msg.Payload.Headers
	}

	return MessageSummary{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		From:     headerValue(headers, "From"),
		Subject:  headerValue(headers, "Subject"),
		Date:     headerValue(headers, "Date"),
		Snippet:  msg.Snippet,
	}
}

// headerValue returns the first header with the given name, ignoring case.
func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractBody pulls a plain-text body out of a message payload. A text/plain
// part wins; otherwise a text/html part is converted to markdown.
func extractBody(payload *gmail.MessagePart) (string, error) {
	plain := findPartData(payload, "text/plain")
	if plain != "" {
		decoded, err := decodeBody(plain)
		if err != nil {
			return "", err
		}
		return decoded, nil
	}

	html := findPartData(payload, "text/html")
	if html != "" {
		decoded, err := decodeBody(html)
		if err != nil {
			return "", err
		}
		return htmlToText(decoded), nil
	}

	return "", fmt.Errorf("no text body found")
}

// findPartData returns the base64 body data of the first part with the given
// MIME type, checking the payload itself before walking nested parts.
func findPartData(payload *gmail.MessagePart, mimeType string) string {
	if payload == nil {
		return ""
	}

	if payload.MimeType == mimeType && payload.Body != nil && payload.Body.Data != "" {
		return payload.Body.Data
	}

	var data string
	walkParts(payload, func(part *gmail.MessagePart) {
		if data == "" && part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
			data = part.Body.Data
		}
	})
	return data
}

// walkParts recursively visits a message part and all nested parts.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// decodeBody decodes base64url body data (Gmail uses RFC 4648 base64url),
// falling back to standard base64 for noncompliant producers.
func decodeBody(data string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", fmt.Errorf("failed to decode message body: %w", err)
		}
	}
	return string(decoded), nil
}
