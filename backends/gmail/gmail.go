// Package gmail defines the narrow mail capability the tool layer needs:
// send, draft, list inbox, get. The Gmail SDK is bound behind it so tests
// can substitute a double implementing the same verbs.
//
// Raw messages are base64url-encoded MIME documents built by BuildMessage
// and BuildMessageWithAttachments.
package gmail

import "context"

// Header is one RFC 822 message header.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Message is the backend record shape the tool layer consumes.
type Message struct {
	ID      string   `json:"id"`
	Snippet string   `json:"snippet"`
	Headers []Header `json:"headers,omitempty"`
}

// Header returns the value of the named header, or "" when absent.
// Matching is exact, as the backend returns canonical header names.
func (m *Message) Header(name string) string {
	for _, h := range m.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

// Service is the mail backend capability.
type Service interface {
	// Send sends a raw base64url-encoded MIME message and returns the
	// message id.
	Send(ctx context.Context, raw string) (string, error)

	// CreateDraft saves a raw message as a draft and returns the draft id.
	CreateDraft(ctx context.Context, raw string) (string, error)

	// ListInbox returns inbox message ids, newest first.
	ListInbox(ctx context.Context) ([]string, error)

	// Get fetches one message's metadata.
	Get(ctx context.Context, id string) (*Message, error)
}
