package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"
)

type ResendSender struct {
	client *resend.Client
	from   Identity
}

func NewResendSender(apiKey string, from Identity) (*ResendSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Resend API key is required", ErrInvalidConfig)
	}
	return &ResendSender{client: resend.NewClient(apiKey), from: from}, nil
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	req := &resend.SendEmailRequest{
		From:    s.from.Address(),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: s.from.ReplyTo,
	}
	if msg.Tag != "" {
		req.Tags = []resend.Tag{{Name: "category", Value: msg.Tag}}
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("%w: resend: %v", ErrSendFailed, err)
	}
	return nil
}
