package mailer

import (
	"context"
	"fmt"

	mailjet "github.com/mailjet/mailjet-apiv3-go"
)

type MailjetSender struct {
	client *mailjet.Client
	from   Identity
}

func NewMailjetSender(publicKey, privateKey string, from Identity) (*MailjetSender, error) {
	if publicKey == "" || privateKey == "" {
		return nil, fmt.Errorf("%w: Mailjet public and private keys are required", ErrInvalidConfig)
	}
	return &MailjetSender{
		client: mailjet.NewMailjetClient(publicKey, privateKey),
		from:   from,
	}, nil
}

// Send uses the v3.1 send API. The Mailjet client has no context support, so
// ctx only guards against starting a send after cancellation.
func (s *MailjetSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	info := mailjet.InfoMessagesV31{
		From:     &mailjet.RecipientV31{Email: s.from.Email, Name: s.from.Name},
		To:       &mailjet.RecipientsV31{mailjet.RecipientV31{Email: msg.To}},
		Subject:  msg.Subject,
		HTMLPart: msg.HTML,
		TextPart: msg.Text,
		CustomID: msg.Tag,
	}
	if s.from.ReplyTo != "" {
		info.ReplyTo = &mailjet.RecipientV31{Email: s.from.ReplyTo}
	}

	if _, err := s.client.SendMailV31(&mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{info}}); err != nil {
		return fmt.Errorf("%w: mailjet: %v", ErrSendFailed, err)
	}
	return nil
}
