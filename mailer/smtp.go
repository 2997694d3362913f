package mailer

import (
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"
)

// SMTPSender delivers through an authenticated SMTP relay such as Gmail.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     Identity
}

func NewSMTPSender(host string, port int, username, password string, from Identity) (*SMTPSender, error) {
	if host == "" || username == "" || password == "" {
		return nil, fmt.Errorf("%w: SMTP host, username and password are required", ErrInvalidConfig)
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.buildMsg(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	client, err := mail.NewClient(s.host,
		mail.WithPort(s.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.username),
		mail.WithPassword(s.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("%w: smtp client: %v", ErrSendFailed, err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%w: smtp: %v", ErrSendFailed, err)
	}
	return nil
}

func (s *SMTPSender) buildMsg(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(s.from.Name, s.from.Email); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if s.from.ReplyTo != "" {
		if err := m.ReplyTo(s.from.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	if msg.Text != "" {
		m.AddAlternativeString(mail.TypeTextPlain, msg.Text)
	}
	return m, nil
}
