package mailer

import (
	"context"
	"strings"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/rs/zerolog"

	"github.com/tcollier/portfolio-report/internal/config"
	"github.com/tcollier/portfolio-report/internal/report"
)

// Sender delivers a rendered report to the configured recipients
type Sender interface {
	Send(ctx context.Context, p report.Payload) error
}

// NewSender selects a sender implementation from the configured provider.
// Incomplete provider configuration falls back to the mock sender so a run
// never fails on a misconfigured mailbox.
func NewSender(cfg config.EmailConfig, log zerolog.Logger) Sender {
	provider := strings.ToLower(cfg.Provider)
	log.Info().Str("provider", provider).Msg("initializing email sender")

	switch provider {
	case "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.From == "" || len(cfg.Recipients) == 0 {
			log.Warn().Msg("mailgun configuration incomplete, falling back to mock sender")
			return &MockSender{log: log}
		}
		mg := mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey)
		return &MailgunSender{
			mg:         mg,
			from:       cfg.From,
			fromName:   cfg.FromName,
			recipients: cfg.Recipients,
			log:        log,
		}
	case "smtp":
		if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPassword == "" || cfg.From == "" || len(cfg.Recipients) == 0 {
			log.Warn().Msg("smtp configuration incomplete, falling back to mock sender")
			return &MockSender{log: log}
		}
		return &SMTPSender{
			host:       cfg.SMTPHost,
			port:       cfg.SMTPPort,
			user:       cfg.SMTPUser,
			password:   cfg.SMTPPassword,
			from:       cfg.From,
			fromName:   cfg.FromName,
			recipients: cfg.Recipients,
			log:        log,
		}
	default:
		return &MockSender{log: log}
	}
}

// MockSender logs the report instead of delivering it
type MockSender struct {
	log zerolog.Logger
}

func (m *MockSender) Send(_ context.Context, p report.Payload) error {
	m.log.Info().
		Str("subject", p.Subject).
		Int("attachments", len(p.Attachments)).
		Msg("mock sender: would send report")
	return nil
}
