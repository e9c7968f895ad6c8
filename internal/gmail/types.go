package gmail

// MessageSummary is the listing view of a mailbox message. Only metadata
// headers are fetched for it; the body requires a separate GetMessage call.
type MessageSummary struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	From     string `json:"from"`
	Subject  string `json:"subject"`
	Date     string `json:"date"`
	Snippet  string `json:"snippet"`
}

// Message is a fully fetched mailbox message, including the plain-text body.
type Message struct {
	MessageSummary
	Body string `json:"body"`
}
