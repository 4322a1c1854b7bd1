package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"
)

// mailgunSend is a seam for tests.
var mailgunSend = func(ctx context.Context, domain, key, from, to, subject, text string) (string, error) {
	mg := mailgun.NewMailgun(domain, key)
	message := mg.NewMessage(from, subject, text)
	if err := message.AddRecipient(to); err != nil {
		return "", err
	}
	_, id, err := mg.Send(ctx, message)
	return id, err
}

type MailgunSender struct {
	domain string
	key    string
	from   string
}

func NewMailgunSender(domain, key, from string) (*MailgunSender, error) {
	if domain == "" || key == "" || from == "" {
		return nil, errors.New("invalid Mailgun configuration")
	}
	return &MailgunSender{domain: domain, key: key, from: from}, nil
}

func (s *MailgunSender) Send(ctx context.Context, toEmail, toName, link string) error {
	m := activationMessage(toName, link)
	if _, err := mailgunSend(ctx, s.domain, s.key, s.from, toEmail, m.Subject, m.Text); err != nil {
		return fmt.Errorf("%w: %v", ErrCannotSend, err)
	}
	return nil
}
