package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ledgerly/config"
	"ledgerly/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIdentity = Identity{Email: "ledgerlysass@gmail.com", Name: "Ledgerly Team"}

var testMessage = Message{
	To:      "a@b.com",
	Subject: "Welcome to Ledgerly Early Access",
	HTML:    "<p>hi</p>",
	Text:    "hi",
	Tag:     "welcome",
}

func TestIdentity_Address(t *testing.T) {
	assert.Equal(t, `"Ledgerly Team" <ledgerlysass@gmail.com>`, testIdentity.Address())
	assert.Equal(t, "team@example.com", Identity{Email: "team@example.com"}.Address())
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(logging.New("production", "info", &buf))

	require.NoError(t, sender.Send(context.Background(), testMessage))
	assert.Contains(t, buf.String(), `"to":"a@b.com"`)
	assert.Contains(t, buf.String(), "skipping email")
}

func TestDevSender_WritesHTMLAndMetadata(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outbox")
	sender := NewDevSender(dir, testIdentity)
	sender.now = func() time.Time { return time.Date(2026, 4, 1, 12, 30, 45, 0, time.UTC) }

	require.NoError(t, sender.Send(context.Background(), testMessage))

	html, err := os.ReadFile(filepath.Join(dir, "2026_04_01_123045.000_a_at_b.com.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(html))

	raw, err := os.ReadFile(filepath.Join(dir, "2026_04_01_123045.000_a_at_b.com.json"))
	require.NoError(t, err)

	var meta devMetadata
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "a@b.com", meta.To)
	assert.Equal(t, testMessage.Subject, meta.Subject)
	assert.Equal(t, `"Ledgerly Team" <ledgerlysass@gmail.com>`, meta.From)
	assert.Equal(t, "welcome", meta.Tag)
}

func TestDevSender_FailsWhenDirIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "outbox")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := NewDevSender(blocker, testIdentity).Send(context.Background(), testMessage)
	assert.ErrorIs(t, err, ErrSendFailed)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "first.last_at_example.com", sanitizeFilename("First.Last@Example.com"))
	assert.Equal(t, "email", sanitizeFilename("<>"))
	assert.Len(t, sanitizeFilename(strings.Repeat("a", 300)), 100)
}

func TestSendGridSender_PostsMessage(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender, err := NewSendGridSender("SG.test", testIdentity)
	require.NoError(t, err)
	sender.host = srv.URL

	require.NoError(t, sender.Send(context.Background(), testMessage))

	assert.Equal(t, "Bearer SG.test", gotAuth)
	assert.Equal(t, "/v3/mail/send", gotPath)
	assert.Equal(t, "Welcome to Ledgerly Early Access", gotBody["subject"])
	from, _ := gotBody["from"].(map[string]any)
	assert.Equal(t, "ledgerlysass@gmail.com", from["email"])
	assert.Equal(t, "Ledgerly Team", from["name"])
}

func TestSendGridSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	sender, err := NewSendGridSender("SG.bad", testIdentity)
	require.NoError(t, err)
	sender.host = srv.URL

	err = sender.Send(context.Background(), testMessage)
	require.ErrorIs(t, err, ErrSendFailed)
	assert.Contains(t, err.Error(), "401")
}

func TestSMTPSender_BuildMsg(t *testing.T) {
	sender, err := NewSMTPSender("smtp.gmail.com", 587, "user", "app-password", Identity{
		Email:   "ledgerlysass@gmail.com",
		Name:    "Ledgerly Team",
		ReplyTo: "support@example.com",
	})
	require.NoError(t, err)

	m, err := sender.buildMsg(testMessage)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: Welcome to Ledgerly Early Access")
	assert.Contains(t, raw, "To: <a@b.com>")
	assert.Contains(t, raw, `"Ledgerly Team" <ledgerlysass@gmail.com>`)
	assert.Contains(t, raw, "Reply-To: <support@example.com>")
}

func TestSMTPSender_BuildMsgRejectsBadRecipient(t *testing.T) {
	sender, err := NewSMTPSender("smtp.gmail.com", 587, "user", "pw", testIdentity)
	require.NoError(t, err)

	_, err = sender.buildMsg(Message{To: "not an address", Subject: "x", HTML: "x"})
	assert.Error(t, err)
}

func TestConstructorsRequireCredentials(t *testing.T) {
	_, err := NewSendGridSender("", testIdentity)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewPostmarkSender("", "", testIdentity)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewResendSender("", testIdentity)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewMailjetSender("pub", "", testIdentity)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSMTPSender("smtp.gmail.com", 587, "user", "", testIdentity)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMailjetSender_RespectsCancelledContext(t *testing.T) {
	sender, err := NewMailjetSender("pub", "priv", testIdentity)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sender.Send(ctx, testMessage), ErrSendFailed)
}

func TestOpen(t *testing.T) {
	base := config.MailConfig{
		FromEmail:            "ledgerlysass@gmail.com",
		FromName:             "Ledgerly Team",
		DevDir:               t.TempDir(),
		SMTPHost:             "smtp.gmail.com",
		SMTPPort:             587,
		SMTPUsername:         "user",
		SMTPPassword:         "pw",
		SendGridAPIKey:       "SG.key",
		PostmarkServerToken:  "server",
		PostmarkAccountToken: "account",
		ResendAPIKey:         "re_key",
		MailjetPublicKey:     "pub",
		MailjetPrivateKey:    "priv",
	}

	tests := []struct {
		transport string
		want      Sender
	}{
		{config.TransportLog, &LogSender{}},
		{config.TransportDev, &DevSender{}},
		{config.TransportSMTP, &SMTPSender{}},
		{config.TransportSendGrid, &SendGridSender{}},
		{config.TransportPostmark, &PostmarkSender{}},
		{config.TransportResend, &ResendSender{}},
		{config.TransportMailjet, &MailjetSender{}},
	}

	for _, tt := range tests {
		t.Run(tt.transport, func(t *testing.T) {
			cfg := base
			cfg.Transport = tt.transport

			sender, err := Open(cfg, logging.Discard())
			require.NoError(t, err)
			assert.IsType(t, tt.want, sender)
		})
	}

	_, err := Open(config.MailConfig{Transport: "pigeon"}, logging.Discard())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
