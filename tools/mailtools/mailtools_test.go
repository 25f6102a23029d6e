package mailtools

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfalcone/eva"
	"github.com/mfalcone/eva/backends/gmail"
)

// fakeMail counts backend calls and records the last raw message.
type fakeMail struct {
	sends    int
	drafts   int
	lists    int
	gets     int
	lastRaw  string
	inbox    []string
	messages map[string]*gmail.Message
	sendErr  error
}

func (f *fakeMail) Send(ctx context.Context, raw string) (string, error) {
	f.sends++
	f.lastRaw = raw
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return "msg-1", nil
}

func (f *fakeMail) CreateDraft(ctx context.Context, raw string) (string, error) {
	f.drafts++
	f.lastRaw = raw
	return "draft-1", nil
}

func (f *fakeMail) ListInbox(ctx context.Context) ([]string, error) {
	f.lists++
	return f.inbox, nil
}

func (f *fakeMail) Get(ctx context.Context, id string) (*gmail.Message, error) {
	f.gets++
	msg, ok := f.messages[id]
	if !ok {
		return nil, fmt.Errorf("no message %s", id)
	}
	return msg, nil
}

var _ gmail.Service = (*fakeMail)(nil)

func findTool(t *testing.T, g *Group, name string) eva.Tool {
	t.Helper()
	for _, tool := range g.Tools() {
		if tool.Name() == name {
			return tool
		}
	}
	t.Fatalf("tool %s not found", name)
	return nil
}

func TestValidAddress(t *testing.T) {
	valid := []string{
		"test@domain.com",
		"first.last@sub.domain.org",
		"user+tag@domain.co",
		"a_b%c@domain.io",
	}
	for _, addr := range valid {
		assert.True(t, ValidAddress(addr), "address %q", addr)
	}

	invalid := []string{
		"test@",
		"@domain.com",
		"test@domain",
		"",
		"test@@domain.com",
		"test @domain.com",
		"test@.com",
	}
	for _, addr := range invalid {
		assert.False(t, ValidAddress(addr), "address %q", addr)
	}
}

func TestSendEmail_Success(t *testing.T) {
	fake := &fakeMail{}
	g := New(fake, "eva@example.com")
	tool := findTool(t, g, "send_email")

	result, err := tool.Call(context.Background(), map[string]any{
		"to":      "friend@example.com",
		"subject": "Dinner",
		"body":    "See you at 8.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Email sent successfully to friend@example.com", result)
	assert.Equal(t, 1, fake.sends)

	decoded, err := base64.URLEncoding.DecodeString(fake.lastRaw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "From: eva@example.com")
	assert.Contains(t, string(decoded), "To: friend@example.com")
	assert.Contains(t, string(decoded), "Subject: Dinner")
	assert.Contains(t, string(decoded), "See you at 8.")
}

func TestSendEmail_InvalidAddressSkipsBackend(t *testing.T) {
	addresses := []string{
		"test@", "@domain.com", "test@domain", "",
		"test@@domain.com", "test @domain.com",
	}

	for _, addr := range addresses {
		fake := &fakeMail{}
		g := New(fake, "eva@example.com")
		tool := findTool(t, g, "send_email")

		result, err := tool.Call(context.Background(), map[string]any{
			"to": addr, "subject": "s", "body": "b",
		})
		require.NoError(t, err, "address %q", addr)
		assert.Contains(t, result, "Invalid email address format", "address %q", addr)
		assert.Equal(t, 0, fake.sends, "address %q", addr)
	}
}

func TestSendEmail_BackendErrorPropagates(t *testing.T) {
	fake := &fakeMail{sendErr: errors.New("quota exceeded")}
	g := New(fake, "eva@example.com")
	tool := findTool(t, g, "send_email")

	_, err := tool.Call(context.Background(), map[string]any{
		"to": "friend@example.com", "subject": "s", "body": "b",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestSendEmailWithAttachment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("attachment body"), 0644))

	fake := &fakeMail{}
	g := New(fake, "eva@example.com")
	tool := findTool(t, g, "send_email_with_attachment")

	result, err := tool.Call(context.Background(), map[string]any{
		"to":         "friend@example.com",
		"subject":    "Files",
		"body":       "Attached.",
		"file_paths": []any{path},
	})
	require.NoError(t, err)
	assert.Equal(t, "Email with attachment sent successfully to friend@example.com", result)
	assert.Equal(t, 1, fake.sends)
}

func TestSendEmailWithAttachment_MissingFile(t *testing.T) {
	fake := &fakeMail{}
	g := New(fake, "eva@example.com")
	tool := findTool(t, g, "send_email_with_attachment")

	_, err := tool.Call(context.Background(), map[string]any{
		"to":         "friend@example.com",
		"subject":    "Files",
		"body":       "Attached.",
		"file_paths": []any{"/nowhere/gone.txt"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attachment file '/nowhere/gone.txt' not found")
	assert.Equal(t, 0, fake.sends)
}

func TestSendEmailWithAttachment_InvalidAddressBeforeFileCheck(t *testing.T) {
	fake := &fakeMail{}
	g := New(fake, "eva@example.com")
	tool := findTool(t, g, "send_email_with_attachment")

	result, err := tool.Call(context.Background(), map[string]any{
		"to":         "not-an-address",
		"subject":    "Files",
		"body":       "Attached.",
		"file_paths": []any{"/nowhere/gone.txt"},
	})
	require.NoError(t, err)
	assert.Contains(t, result, "Invalid email address format")
	assert.Equal(t, 0, fake.sends)
}

func TestDraftEmail(t *testing.T) {
	fake := &fakeMail{}
	g := New(fake, "eva@example.com")
	tool := findTool(t, g, "draft_email")

	result, err := tool.Call(context.Background(), map[string]any{
		"to": "friend@example.com", "subject": "s", "body": "b",
	})
	require.NoError(t, err)
	assert.Equal(t, "Draft created with ID: draft-1", result)
	assert.Equal(t, 1, fake.drafts)
	assert.Equal(t, 0, fake.sends)
}

func TestDraftEmailWithAttachment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("quarterly numbers"), 0644))

	fake := &fakeMail{}
	g := New(fake, "eva@example.com")
	tool := findTool(t, g, "draft_email_with_attachment")

	result, err := tool.Call(context.Background(), map[string]any{
		"to":         "friend@example.com",
		"subject":    "Report",
		"body":       "Draft with file.",
		"file_paths": []any{path},
	})
	require.NoError(t, err)
	assert.Equal(t, "Draft created with ID: draft-1", result)
	assert.Equal(t, 1, fake.drafts)
}

func TestGetLatestEmails(t *testing.T) {
	fake := &fakeMail{
		inbox: []string{"m1", "m2", "m3"},
		messages: map[string]*gmail.Message{
			"m1": {
				ID:      "m1",
				Snippet: "Lunch tomorrow?",
				Headers: []gmail.Header{{Name: "From", Value: "alice@example.com"}},
			},
			"m2": {
				ID:      "m2",
				Snippet: "Invoice attached",
			},
			"m3": {
				ID:      "m3",
				Snippet: "Weekly digest",
				Headers: []gmail.Header{{Name: "From", Value: "news@example.com"}},
			},
		},
	}
	g := New(fake, "eva@example.com")
	tool := findTool(t, g, "get_latest_emails")

	result, err := tool.Call(context.Background(), map[string]any{"count": float64(2)})
	require.NoError(t, err)
	assert.Equal(t,
		"Message ID: m1, From: alice@example.com, Subject: Lunch tomorrow?\n"+
			"Message ID: m2, From: Unknown, Subject: Invoice attached",
		result)
	assert.Equal(t, 2, fake.gets)
}

func TestGetLatestEmails_Empty(t *testing.T) {
	fake := &fakeMail{}
	g := New(fake, "eva@example.com")
	tool := findTool(t, g, "get_latest_emails")

	result, err := tool.Call(context.Background(), map[string]any{"count": float64(5)})
	require.NoError(t, err)
	assert.Equal(t, "No messages found.", result)
}
