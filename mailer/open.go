package mailer

import (
	"fmt"
	"log/slog"

	"ledgerly/config"
)

// Open builds the transport selected by cfg.Transport.
func Open(cfg config.MailConfig, log *slog.Logger) (Sender, error) {
	from := Identity{Email: cfg.FromEmail, Name: cfg.FromName, ReplyTo: cfg.ReplyTo}

	switch cfg.Transport {
	case config.TransportLog, "":
		return NewLogSender(log), nil
	case config.TransportDev:
		return NewDevSender(cfg.DevDir, from), nil
	case config.TransportSMTP:
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, from)
	case config.TransportSendGrid:
		return NewSendGridSender(cfg.SendGridAPIKey, from)
	case config.TransportPostmark:
		return NewPostmarkSender(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, from)
	case config.TransportResend:
		return NewResendSender(cfg.ResendAPIKey, from)
	case config.TransportMailjet:
		return NewMailjetSender(cfg.MailjetPublicKey, cfg.MailjetPrivateKey, from)
	default:
		return nil, fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, cfg.Transport)
	}
}
