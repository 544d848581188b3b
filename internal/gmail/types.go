package gmail

import (
	"errors"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

// Message is the simplified view of an inbound email the pipeline works
// with: identity, threading headers and a plain-text snippet.
type Message struct {
	// ID is the Gmail message id (opaque, unique, never reused).
	ID string

	// ThreadID groups the message with its conversation.
	ThreadID string

	// MessageID is the RFC 822 Message-ID header, used for In-Reply-To
	// threading on outbound replies.
	MessageID string

	// References is the RFC 822 References header of the original.
	References string

	From    string
	Subject string

	// Snippet is Gmail's short plain-text extract of the body.
	Snippet string
}

// IsPermanent reports whether a Gmail API error is permanent (bad
// request or unknown id) rather than transient (auth, rate limit,
// server or network trouble). Transient failures are worth retrying on
// a later poll; permanent ones are not.
func IsPermanent(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 400, 404:
			return true
		}
	}
	return false
}

// headerValue returns the value of a named header from a Gmail message
// payload, or the empty string when absent.
func headerValue(m *gmail.Message, name string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}
