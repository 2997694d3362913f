package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrInvalid = errors.New("invalid configuration")

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

const (
	TransportLog      = "log"
	TransportDev      = "dev"
	TransportSMTP     = "smtp"
	TransportSendGrid = "sendgrid"
	TransportPostmark = "postmark"
	TransportResend   = "resend"
	TransportMailjet  = "mailjet"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	Store StoreConfig
	Mail  MailConfig
}

// StoreConfig selects and configures the subscriber backend.
type StoreConfig struct {
	Backend  string `env:"STORE_BACKEND" envDefault:"file"`
	DataFile string `env:"DATA_FILE" envDefault:"data/subscribers.json"`

	DatabaseURL     string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`

	RedisURL string `env:"REDIS_URL"`
	RedisKey string `env:"REDIS_KEY" envDefault:"ledgerly:subscribers"`
}

// MailConfig selects the welcome email transport. Only the credentials of the
// selected transport are required.
type MailConfig struct {
	Transport string `env:"MAIL_TRANSPORT" envDefault:"log"`
	FromEmail string `env:"MAIL_FROM_EMAIL" envDefault:"ledgerlysass@gmail.com"`
	FromName  string `env:"MAIL_FROM_NAME" envDefault:"Ledgerly Team"`
	ReplyTo   string `env:"MAIL_REPLY_TO"`
	SurveyURL string `env:"SURVEY_URL" envDefault:"https://forms.gle/ew7G3xbBcJfqHxck7"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	SendGridAPIKey string `env:"SENDGRID_API_KEY"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	ResendAPIKey string `env:"RESEND_API_KEY"`

	MailjetPublicKey  string `env:"MAILJET_API_KEY_PUBLIC"`
	MailjetPrivateKey string `env:"MAILJET_API_KEY_PRIVATE"`

	DevDir string `env:"DEV_MAIL_DIR" envDefault:"data/outbox"`
}

// Load reads an optional .env file and parses the environment.
func Load() (Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.DataFile == "" {
			return fmt.Errorf("%w: DATA_FILE is required for the file backend", ErrInvalid)
		}
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for the postgres backend", ErrInvalid)
		}
	case BackendRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("%w: REDIS_URL is required for the redis backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown STORE_BACKEND %q", ErrInvalid, c.Store.Backend)
	}

	return c.Mail.Validate()
}

func (m MailConfig) Validate() error {
	if m.FromEmail == "" {
		return fmt.Errorf("%w: MAIL_FROM_EMAIL is required", ErrInvalid)
	}

	var missing string
	switch m.Transport {
	case TransportLog:
	case TransportDev:
		if m.DevDir == "" {
			missing = "DEV_MAIL_DIR"
		}
	case TransportSMTP:
		switch {
		case m.SMTPHost == "":
			missing = "SMTP_HOST"
		case m.SMTPUsername == "":
			missing = "SMTP_USERNAME"
		case m.SMTPPassword == "":
			missing = "SMTP_PASSWORD"
		}
	case TransportSendGrid:
		if m.SendGridAPIKey == "" {
			missing = "SENDGRID_API_KEY"
		}
	case TransportPostmark:
		if m.PostmarkServerToken == "" {
			missing = "POSTMARK_SERVER_TOKEN"
		}
	case TransportResend:
		if m.ResendAPIKey == "" {
			missing = "RESEND_API_KEY"
		}
	case TransportMailjet:
		switch {
		case m.MailjetPublicKey == "":
			missing = "MAILJET_API_KEY_PUBLIC"
		case m.MailjetPrivateKey == "":
			missing = "MAILJET_API_KEY_PRIVATE"
		}
	default:
		return fmt.Errorf("%w: unknown MAIL_TRANSPORT %q", ErrInvalid, m.Transport)
	}

	if missing != "" {
		return fmt.Errorf("%w: %s is required for the %s mail transport", ErrInvalid, missing, m.Transport)
	}
	return nil
}
