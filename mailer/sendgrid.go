package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

type SendGridSender struct {
	apiKey string
	host   string
	from   Identity
}

func NewSendGridSender(apiKey string, from Identity) (*SendGridSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: SendGrid API key is required", ErrInvalidConfig)
	}
	return &SendGridSender{apiKey: apiKey, host: sendGridHost, from: from}, nil
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	from := sgmail.NewEmail(s.from.Name, s.from.Email)
	to := sgmail.NewEmail("", msg.To)
	message := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)
	if s.from.ReplyTo != "" {
		message.SetReplyTo(sgmail.NewEmail("", s.from.ReplyTo))
	}
	if msg.Tag != "" {
		message.AddCategories(msg.Tag)
	}

	req := sendgrid.GetRequest(s.apiKey, sendGridEndpoint, s.host)
	req.Method = "POST"
	req.Body = sgmail.GetRequestBody(message)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: sendgrid: %v", ErrSendFailed, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: sendgrid returned status %d: %s", ErrSendFailed, resp.StatusCode, resp.Body)
	}
	return nil
}
