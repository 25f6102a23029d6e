// Package mailtools exposes email to the model: sending, drafting and
// reading the inbox.
//
// Recipient addresses are shape-checked before any backend contact, so a
// hallucinated address becomes an immediate correction prompt instead of a
// backend 400. A missing attachment file, by contrast, is an error the
// middleware surfaces distinctly: the user must know the send did not
// happen.
package mailtools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mfalcone/eva"
	"github.com/mfalcone/eva/backends/gmail"
	"github.com/mfalcone/eva/schema"
)

// invalidAddress is the domain-failure string for malformed recipients.
const invalidAddress = "Error: Invalid email address format"

// addressPattern is deliberately conservative: one @, non-empty local part,
// no spaces, domain with an interior dot. Full RFC 5322 parsing is not the
// goal; catching model typos before the backend is.
var addressPattern = regexp.MustCompile(
	`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9][A-Za-z0-9.\-]*\.[A-Za-z]{2,}$`)

// ValidAddress reports whether addr passes the conservative shape check.
func ValidAddress(addr string) bool {
	if strings.Count(addr, "@") != 1 {
		return false
	}
	return addressPattern.MatchString(addr)
}

// Group is the mail tool group. The backend client is constructed once and
// reused for the group's lifetime; sender is the configured From address.
type Group struct {
	svc    gmail.Service
	sender string
}

// New creates the mail tool group over the given backend.
func New(svc gmail.Service, sender string) *Group {
	return &Group{svc: svc, sender: sender}
}

// Tools returns the group's tools.
func (g *Group) Tools() []eva.Tool {
	return []eva.Tool{
		g.sendTool(),
		g.sendWithAttachmentTool(),
		g.draftTool(),
		g.draftWithAttachmentTool(),
		g.latestEmailsTool(),
	}
}

func recipientSchema() map[string]*schema.Property {
	return map[string]*schema.Property{
		"to":      schema.String("Recipient email address"),
		"subject": schema.String("Email subject"),
		"body":    schema.String("Email body text"),
	}
}

func (g *Group) sendTool() eva.Tool {
	return eva.NewTool(
		"send_email",
		"Sends an email. The sender address is the configured account.",
		schema.Object(recipientSchema(), "to", "subject", "body"),
		func(ctx context.Context, args map[string]any) (string, error) {
			to := eva.StringArg(args, "to", "")
			if !ValidAddress(to) {
				return invalidAddress, nil
			}

			raw := gmail.BuildMessage(g.sender, to,
				eva.StringArg(args, "subject", ""),
				eva.StringArg(args, "body", ""))
			if _, err := g.svc.Send(ctx, raw); err != nil {
				return "", err
			}
			return "Email sent successfully to " + to, nil
		},
	)
}

func (g *Group) sendWithAttachmentTool() eva.Tool {
	props := recipientSchema()
	props["file_paths"] = schema.Array("Paths of files to attach",
		map[string]any{"type": "string"})
	return eva.NewTool(
		"send_email_with_attachment",
		"Sends an email with one or more file attachments. All file paths "+
			"must exist on disk.",
		schema.Object(props, "to", "subject", "body", "file_paths"),
		func(ctx context.Context, args map[string]any) (string, error) {
			to := eva.StringArg(args, "to", "")
			if !ValidAddress(to) {
				return invalidAddress, nil
			}

			raw, err := gmail.BuildMessageWithAttachments(g.sender, to,
				eva.StringArg(args, "subject", ""),
				eva.StringArg(args, "body", ""),
				eva.StringsArg(args, "file_paths"))
			if err != nil {
				return "", err
			}
			if _, err := g.svc.Send(ctx, raw); err != nil {
				return "", err
			}
			return "Email with attachment sent successfully to " + to, nil
		},
	)
}

func (g *Group) draftTool() eva.Tool {
	return eva.NewTool(
		"draft_email",
		"Creates an email draft without sending it.",
		schema.Object(recipientSchema(), "to", "subject", "body"),
		func(ctx context.Context, args map[string]any) (string, error) {
			to := eva.StringArg(args, "to", "")
			if !ValidAddress(to) {
				return invalidAddress, nil
			}

			raw := gmail.BuildMessage(g.sender, to,
				eva.StringArg(args, "subject", ""),
				eva.StringArg(args, "body", ""))
			id, err := g.svc.CreateDraft(ctx, raw)
			if err != nil {
				return "", err
			}
			return "Draft created with ID: " + id, nil
		},
	)
}

func (g *Group) draftWithAttachmentTool() eva.Tool {
	props := recipientSchema()
	props["file_paths"] = schema.Array("Paths of files to attach",
		map[string]any{"type": "string"})
	return eva.NewTool(
		"draft_email_with_attachment",
		"Creates an email draft with file attachments without sending it. "+
			"All file paths must exist on disk.",
		schema.Object(props, "to", "subject", "body", "file_paths"),
		func(ctx context.Context, args map[string]any) (string, error) {
			to := eva.StringArg(args, "to", "")
			if !ValidAddress(to) {
				return invalidAddress, nil
			}

			raw, err := gmail.BuildMessageWithAttachments(g.sender, to,
				eva.StringArg(args, "subject", ""),
				eva.StringArg(args, "body", ""),
				eva.StringsArg(args, "file_paths"))
			if err != nil {
				return "", err
			}
			id, err := g.svc.CreateDraft(ctx, raw)
			if err != nil {
				return "", err
			}
			return "Draft created with ID: " + id, nil
		},
	)
}

func (g *Group) latestEmailsTool() eva.Tool {
	return eva.NewTool(
		"get_latest_emails",
		"Retrieves the latest emails from the inbox.",
		schema.Object(map[string]*schema.Property{
			"count": schema.Integer("Number of emails to retrieve").Min(1),
		}, "count"),
		func(ctx context.Context, args map[string]any) (string, error) {
			ids, err := g.svc.ListInbox(ctx)
			if err != nil {
				return "", err
			}

			count := eva.IntArg(args, "count", 5)
			if count < len(ids) {
				ids = ids[:count]
			}
			if len(ids) == 0 {
				return "No messages found.", nil
			}

			lines := make([]string, 0, len(ids))
			for _, id := range ids {
				msg, err := g.svc.Get(ctx, id)
				if err != nil {
					return "", err
				}
				sender := msg.Header("From")
				if sender == "" {
					sender = "Unknown"
				}
				lines = append(lines, fmt.Sprintf(
					"Message ID: %s, From: %s, Subject: %s",
					msg.ID, sender, msg.Snippet))
			}
			return strings.Join(lines, "\n"), nil
		},
	)
}

var _ eva.Group = (*Group)(nil)
