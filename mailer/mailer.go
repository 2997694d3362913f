// Package mailer sends transactional email through a pluggable transport.
// Every transport implements Sender, so callers never know which provider is
// behind it. Transports make exactly one delivery attempt per call.
package mailer

import (
	"context"
	"errors"
	"net/mail"
)

var (
	ErrSendFailed    = errors.New("failed to send email")
	ErrInvalidConfig = errors.New("invalid mailer configuration")
)

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
	Tag     string // Optional, used for provider analytics
}

// Identity is who outbound mail claims to come from.
type Identity struct {
	Email   string
	Name    string
	ReplyTo string
}

// Address renders the identity as an RFC 5322 address, e.g. "Ledgerly Team" <team@example.com>.
func (i Identity) Address() string {
	if i.Name == "" {
		return i.Email
	}
	return (&mail.Address{Name: i.Name, Address: i.Email}).String()
}
