package gmail

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Scopes are the OAuth scopes the mail backend requires.
var Scopes = []string{
	gmail.GmailSendScope,
	gmail.GmailReadonlyScope,
	gmail.GmailComposeScope,
}

// All operations run against the authorized user's own mailbox.
const userID = "me"

// GoogleService implements Service over the Gmail API.
type GoogleService struct {
	svc *gmail.Service
}

// NewGoogle builds a GoogleService from an authorized HTTP client.
func NewGoogle(ctx context.Context, client *http.Client) (*GoogleService, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("gmail: creating gmail service: %w", err)
	}
	return &GoogleService{svc: svc}, nil
}

// Send sends a raw message and returns its id.
func (g *GoogleService) Send(ctx context.Context, raw string) (string, error) {
	msg, err := g.svc.Users.Messages.Send(userID, &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail: send: %w", err)
	}
	return msg.Id, nil
}

// CreateDraft saves a raw message as a draft and returns the draft id.
func (g *GoogleService) CreateDraft(ctx context.Context, raw string) (string, error) {
	draft, err := g.svc.Users.Drafts.Create(userID, &gmail.Draft{
		Message: &gmail.Message{Raw: raw},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail: create draft: %w", err)
	}
	return draft.Id, nil
}

// ListInbox returns inbox message ids.
func (g *GoogleService) ListInbox(ctx context.Context) ([]string, error) {
	res, err := g.svc.Users.Messages.List(userID).LabelIds("INBOX").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail: list inbox: %w", err)
	}
	ids := make([]string, 0, len(res.Messages))
	for _, m := range res.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// Get fetches one message's metadata.
func (g *GoogleService) Get(ctx context.Context, id string) (*Message, error) {
	msg, err := g.svc.Users.Messages.Get(userID, id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail: get %s: %w", id, err)
	}

	out := &Message{ID: msg.Id, Snippet: msg.Snippet}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			out.Headers = append(out.Headers, Header{Name: h.Name, Value: h.Value})
		}
	}
	return out, nil
}
