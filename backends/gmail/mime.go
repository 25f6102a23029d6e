package gmail

import (
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// BuildMessage builds a plain-text MIME message and returns it base64url
// encoded, ready for Service.Send.
func BuildMessage(from, to, subject, body string) string {
	var sb strings.Builder
	writeHeaders(&sb, from, to, subject)
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return base64.URLEncoding.EncodeToString([]byte(sb.String()))
}

// BuildMessageWithAttachments builds a multipart MIME message with the given
// file attachments, base64url encoded.
//
// A missing attachment file is an error, not a formatted string: the user
// must see it distinctly, so it propagates to the middleware instead of
// being swallowed here.
func BuildMessageWithAttachments(from, to, subject, body string, filePaths []string) (string, error) {
	var sb strings.Builder
	writeHeaders(&sb, from, to, subject)

	var parts strings.Builder
	w := multipart.NewWriter(&parts)

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=\"UTF-8\"")
	textPart, err := w.CreatePart(textHeader)
	if err != nil {
		return "", fmt.Errorf("gmail: building message body: %w", err)
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return "", fmt.Errorf("gmail: building message body: %w", err)
	}

	for _, path := range filePaths {
		if err := attachFile(w, path); err != nil {
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gmail: finalizing message: %w", err)
	}

	sb.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n", w.Boundary()))
	sb.WriteString("\r\n")
	sb.WriteString(parts.String())

	return base64.URLEncoding.EncodeToString([]byte(sb.String())), nil
}

func writeHeaders(sb *strings.Builder, from, to, subject string) {
	fmt.Fprintf(sb, "From: %s\r\n", from)
	fmt.Fprintf(sb, "To: %s\r\n", to)
	fmt.Fprintf(sb, "Subject: %s\r\n", subject)
	sb.WriteString("MIME-Version: 1.0\r\n")
}

func attachFile(w *multipart.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("attachment file '%s' not found", path)
		}
		return fmt.Errorf("reading attachment '%s': %w", path, err)
	}

	filename := filepath.Base(path)
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType)
	header.Set("Content-Transfer-Encoding", "base64")
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("gmail: attaching '%s': %w", path, err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	// Wrap base64 payload at 76 columns per RFC 2045.
	for len(encoded) > 76 {
		if _, err := part.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return fmt.Errorf("gmail: attaching '%s': %w", path, err)
		}
		encoded = encoded[76:]
	}
	if _, err := part.Write([]byte(encoded + "\r\n")); err != nil {
		return fmt.Errorf("gmail: attaching '%s': %w", path, err)
	}
	return nil
}
