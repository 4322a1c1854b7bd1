package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridHost = "https://api.sendgrid.com"

type SendGridSender struct {
	key  string
	from string
	host string
}

func NewSendGridSender(key, from string) (*SendGridSender, error) {
	if key == "" || from == "" {
		return nil, errors.New("invalid SendGrid configuration")
	}
	return &SendGridSender{key: key, from: from, host: sendGridHost}, nil
}

// Send posts one message. A client is built per call because the SendGrid
// client keeps the request body in its own state.
func (s *SendGridSender) Send(ctx context.Context, toEmail, toName, link string) error {
	m := activationMessage(toName, link)
	msg := sgmail.NewSingleEmail(
		sgmail.NewEmail("tentech", s.from), m.Subject, sgmail.NewEmail(toName, toEmail), m.Text, m.HTML)

	req := sendgrid.GetRequest(s.key, "/v3/mail/send", s.host)
	req.Method = http.MethodPost
	client := &sendgrid.Client{Request: req}

	resp, err := client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCannotSend, err)
	}
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: sendgrid status %d", ErrCannotSend, resp.StatusCode)
	}
	return nil
}
