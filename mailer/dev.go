package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DevSender writes each message to disk as an .html body plus a .json
// metadata file instead of sending it. For local development.
type DevSender struct {
	dir  string
	from Identity
	now  func() time.Time
}

func NewDevSender(dir string, from Identity) *DevSender {
	return &DevSender{dir: dir, from: from, now: time.Now}
}

type devMetadata struct {
	Timestamp string `json:"timestamp"`
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Tag       string `json:"tag,omitempty"`
}

func (s *DevSender) Send(_ context.Context, msg Message) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create outbox: %v", ErrSendFailed, err)
	}

	now := s.now()
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405.000"), sanitizeFilename(msg.To))

	if err := os.WriteFile(filepath.Join(s.dir, base+".html"), []byte(msg.HTML), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write html: %v", ErrSendFailed, err)
	}

	meta, err := json.MarshalIndent(devMetadata{
		Timestamp: now.Format(time.RFC3339),
		From:      s.from.Address(),
		To:        msg.To,
		Subject:   msg.Subject,
		Tag:       msg.Tag,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode metadata: %v", ErrSendFailed, err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, base+".json"), meta, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write metadata: %v", ErrSendFailed, err)
	}
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, "@", "_at_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
