package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tcollier/portfolio-report/internal/report"
)

// SMTPSender delivers reports through a plain SMTP relay
type SMTPSender struct {
	host       string
	port       int
	user       string
	password   string
	from       string
	fromName   string
	recipients []string
	log        zerolog.Logger
}

func (s *SMTPSender) Send(ctx context.Context, p report.Payload) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("smtp send aborted: %w", err)
	}

	msg, err := buildMessage(s.fromName, s.from, s.recipients, p)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	auth := smtp.PlainAuth("", s.user, s.password, s.host)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	if err := smtp.SendMail(addr, auth, s.from, s.recipients, msg); err != nil {
		s.log.Error().Err(err).Strs("to", s.recipients).Msg("failed to send report via SMTP")
		return fmt.Errorf("failed to send report via SMTP: %w", err)
	}

	s.log.Info().Strs("to", s.recipients).Str("subject", p.Subject).Msg("report sent via SMTP")
	return nil
}

// buildMessage assembles a multipart/mixed MIME message: an alternative part
// carrying the text and HTML bodies, then one base64 part per attachment
func buildMessage(fromName, from string, to []string, p report.Payload) ([]byte, error) {
	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s <%s>\r\n", fromName, from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", p.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", mixed.Boundary())
	buf.WriteString("\r\n")

	var altBuf bytes.Buffer
	alt := multipart.NewWriter(&altBuf)

	textPart, err := alt.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/plain; charset="UTF-8"`},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create text part: %w", err)
	}
	if _, err := textPart.Write([]byte(p.Text)); err != nil {
		return nil, fmt.Errorf("failed to write text part: %w", err)
	}

	htmlPart, err := alt.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="UTF-8"`},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create html part: %w", err)
	}
	if _, err := htmlPart.Write([]byte(p.HTML)); err != nil {
		return nil, fmt.Errorf("failed to write html part: %w", err)
	}
	if err := alt.Close(); err != nil {
		return nil, fmt.Errorf("failed to close alternative part: %w", err)
	}

	body, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", alt.Boundary())},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create body part: %w", err)
	}
	if _, err := body.Write(altBuf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to write body part: %w", err)
	}

	for _, att := range p.Attachments {
		part, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf("%s; name=%q", att.ContentType, att.Filename)},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", att.Filename)},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment part for %s: %w", att.Filename, err)
		}
		if err := writeBase64(part, att.Data); err != nil {
			return nil, fmt.Errorf("failed to write attachment %s: %w", att.Filename, err)
		}
	}

	if err := mixed.Close(); err != nil {
		return nil, fmt.Errorf("failed to close message: %w", err)
	}
	return buf.Bytes(), nil
}

// writeBase64 encodes data with RFC 2045 line wrapping
func writeBase64(w io.Writer, data []byte) error {
	enc := base64.StdEncoding.EncodeToString(data)
	const lineLen = 76
	for i := 0; i < len(enc); i += lineLen {
		end := i + lineLen
		if end > len(enc) {
			end = len(enc)
		}
		if _, err := fmt.Fprintf(w, "%s\r\n", enc[i:end]); err != nil {
			return err
		}
	}
	return nil
}
