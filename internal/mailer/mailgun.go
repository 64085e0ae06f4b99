package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/rs/zerolog"

	"github.com/tcollier/portfolio-report/internal/report"
)

const mailgunSendTimeout = 20 * time.Second

// MailgunSender delivers reports through the Mailgun API
type MailgunSender struct {
	mg         mailgun.Mailgun
	from       string
	fromName   string
	recipients []string
	log        zerolog.Logger
}

func (s *MailgunSender) Send(ctx context.Context, p report.Payload) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.from)

	message := s.mg.NewMessage(from, p.Subject, p.Text, s.recipients...)
	message.SetHtml(p.HTML)
	for _, att := range p.Attachments {
		message.AddBufferAttachment(att.Filename, att.Data)
	}

	ctx, cancel := context.WithTimeout(ctx, mailgunSendTimeout)
	defer cancel()

	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		s.log.Error().Err(err).Str("mailgunResp", resp).Str("mailgunId", id).Msg("failed to send report via Mailgun")
		return fmt.Errorf("mailgun send failed: %w", err)
	}

	s.log.Info().Strs("to", s.recipients).Str("id", id).Str("mailgunResp", resp).Msg("report sent via Mailgun")
	return nil
}
