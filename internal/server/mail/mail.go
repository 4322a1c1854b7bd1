// Package mail delivers account activation links.
package mail

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/tentech-me/tentech-api/internal/logging"
	"github.com/tentech-me/tentech-api/internal/server/config"
)

// ErrCannotSend is returned when a provider rejects or fails a delivery.
var ErrCannotSend = errors.New("cannot send email")

const activationSubject = "Hi, access to this link to activate your account."

// Sender delivers an activation link to one recipient.
type Sender interface {
	Send(ctx context.Context, toEmail, toName, link string) error
}

type message struct {
	Subject string
	Text    string
	HTML    string
}

// activationHTML escapes the nickname, which is chosen by the registrant.
var activationHTML = template.Must(template.New("activation").Parse(
	`<p>Hello {{.Name}},</p><p><a href="{{.Link}}">Activate your account</a></p>`))

func activationMessage(toName, link string) message {
	var html strings.Builder
	// Writes to a strings.Builder cannot fail.
	_ = activationHTML.Execute(&html, struct{ Name, Link string }{toName, link})

	return message{
		Subject: activationSubject,
		Text:    fmt.Sprintf("Hello %s,\n\nactivate your account: %s\n", toName, link),
		HTML:    html.String(),
	}
}

// New picks the sender named by cfg.MailProvider.
func New(cfg *config.Config, logger logging.Logger) (Sender, error) {
	switch cfg.MailProvider {
	case "smtp":
		return NewSMTPSender(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	case "sendgrid":
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.MailFrom)
	case "mailgun":
		return NewMailgunSender(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailFrom)
	case "log", "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}

// LogSender only records that a mail would have been sent. The link is not
// logged since it carries a token.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger.With("module", "mail")}
}

func (s *LogSender) Send(ctx context.Context, toEmail, toName, link string) error {
	s.logger.Info(ctx, "activation mail skipped", "to", toEmail, "provider", "log")
	return nil
}
