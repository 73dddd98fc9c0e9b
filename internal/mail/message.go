// Package mail sends outbound email through the Gmail API, with an optional
// SMTP relay as fallback.
package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"
)

// ErrNoRecipients a message needs at least one To address.
var ErrNoRecipients = errors.New("mail: no recipients")

// Attachment a file carried by a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message an outbound email. Text is derived from HTML when empty.
type Message struct {
	From        string
	To          []string
	CC          []string
	ReplyTo     string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Sender delivers a message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

// Recipients To followed by CC.
func (m *Message) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.CC))
	out = append(out, m.To...)
	return append(out, m.CC...)
}

var htmlBreaks = strings.NewReplacer(
	"<br>", "\n", "<br/>", "\n", "<br />", "\n",
	"</p>", "\n\n", "<p>", "", "&nbsp;", " ",
)

// plainFromHTML a crude text alternative; the HTML part is authoritative.
func plainFromHTML(html string) string {
	return strings.TrimSpace(htmlBreaks.Replace(html))
}

// Build renders the message as RFC 5322 bytes: multipart/mixed wrapping a
// text/html alternative and any attachments.
func (m *Message) Build(now time.Time) ([]byte, error) {
	if len(m.To) == 0 {
		return nil, ErrNoRecipients
	}

	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	header := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
		}
	}
	header("From", m.From)
	header("To", strings.Join(m.To, ", "))
	header("Cc", strings.Join(m.CC, ", "))
	header("Reply-To", m.ReplyTo)
	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "multipart/mixed; boundary="+mixed.Boundary())
	buf.WriteString("\r\n")

	altHeader := textproto.MIMEHeader{}
	var alt bytes.Buffer
	altWriter := multipart.NewWriter(&alt)
	altHeader.Set("Content-Type", "multipart/alternative; boundary="+altWriter.Boundary())

	text := m.Text
	if text == "" {
		text = plainFromHTML(m.HTML)
	}
	if err := writePart(altWriter, "text/plain; charset=UTF-8", []byte(text)); err != nil {
		return nil, err
	}
	if m.HTML != "" {
		if err := writePart(altWriter, "text/html; charset=UTF-8", []byte(m.HTML)); err != nil {
			return nil, err
		}
	}
	if err := altWriter.Close(); err != nil {
		return nil, err
	}
	part, err := mixed.CreatePart(altHeader)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(alt.Bytes()); err != nil {
		return nil, err
	}

	for _, a := range m.Attachments {
		h := textproto.MIMEHeader{}
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		h.Set("Content-Transfer-Encoding", "base64")
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
		w, err := mixed.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(wrapBase64(a.Data)); err != nil {
			return nil, err
		}
	}

	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePart(w *multipart.Writer, contentType string, body []byte) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	p, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = p.Write(body)
	return err
}

// wrapBase64 standard base64 folded at 76 columns.
func wrapBase64(data []byte) []byte {
	enc := base64.StdEncoding.EncodeToString(data)
	var out bytes.Buffer
	for len(enc) > 76 {
		out.WriteString(enc[:76])
		out.WriteString("\r\n")
		enc = enc[76:]
	}
	out.WriteString(enc)
	return out.Bytes()
}
