package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"sync"
	texttemplate "text/template"

	"ledgerly/mailer"
)

const (
	WelcomeSubject = "Welcome to Ledgerly Early Access"
	welcomeTag     = "welcome"
)

//go:embed templates/welcome.html templates/welcome.txt
var templateFS embed.FS

var (
	welcomeHTML = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/welcome.html"))
	welcomeText = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/welcome.txt"))
)

type WelcomeContent struct {
	Product   string
	SurveyURL string
	Signature string
}

// RenderWelcome returns the HTML and plain text bodies of the welcome email.
func RenderWelcome(content WelcomeContent) (string, string, error) {
	var html, text bytes.Buffer
	if err := welcomeHTML.Execute(&html, content); err != nil {
		return "", "", fmt.Errorf("failed to render welcome html: %w", err)
	}
	if err := welcomeText.Execute(&text, content); err != nil {
		return "", "", fmt.Errorf("failed to render welcome text: %w", err)
	}
	return html.String(), text.String(), nil
}

// WelcomeNotifier sends the welcome email on a best-effort basis: one
// attempt per signup, failures are logged and never returned.
type WelcomeNotifier struct {
	sender  mailer.Sender
	content WelcomeContent
	log     *slog.Logger
	wg      sync.WaitGroup
}

func NewWelcomeNotifier(sender mailer.Sender, content WelcomeContent, log *slog.Logger) *WelcomeNotifier {
	return &WelcomeNotifier{sender: sender, content: content, log: log}
}

// SendWelcome makes a single delivery attempt and swallows any failure.
func (n *WelcomeNotifier) SendWelcome(ctx context.Context, email string) {
	n.log.InfoContext(ctx, "sending welcome email", "email", email)

	html, text, err := RenderWelcome(n.content)
	if err != nil {
		n.log.ErrorContext(ctx, "welcome email not sent, subscriber was saved", "email", email, "error", err)
		return
	}

	err = n.sender.Send(ctx, mailer.Message{
		To:      email,
		Subject: WelcomeSubject,
		HTML:    html,
		Text:    text,
		Tag:     welcomeTag,
	})
	if err != nil {
		n.log.ErrorContext(ctx, "welcome email failed, subscriber was saved", "email", email, "error", err)
		return
	}

	n.log.InfoContext(ctx, "welcome email sent", "email", email)
}

// Dispatch runs SendWelcome in the background. The send outlives the request
// that triggered it; panics in the transport are recovered and logged.
func (n *WelcomeNotifier) Dispatch(ctx context.Context, email string) {
	ctx = context.WithoutCancel(ctx)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.log.ErrorContext(ctx, "welcome email panic recovered", "email", email, "panic", r)
			}
		}()
		n.SendWelcome(ctx, email)
	}()
}

// Wait blocks until every dispatched send has finished.
func (n *WelcomeNotifier) Wait() {
	n.wg.Wait()
}
