package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"ledgerly/models"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 10 * time.Millisecond

// FileStore keeps all subscribers as one JSON array in a single file.
// Writes go to a temp file that is renamed over the original, so readers only
// ever see a complete array. Read-modify-write cycles are serialised by a
// mutex within the process and by an advisory lock file across processes.
type FileStore struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Init creates the data directory and an empty array file if they are missing.
// Call it once at startup before serving requests.
func (s *FileStore) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat subscribers file: %w", err)
	}

	return s.writeAll([]models.Subscriber{})
}

func (s *FileStore) Exists(_ context.Context, email string) (bool, error) {
	subs, err := s.readAll()
	if err != nil {
		return false, err
	}
	return containsEmail(subs, email), nil
}

func (s *FileStore) Add(ctx context.Context, sub models.Subscriber) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return false, fmt.Errorf("failed to lock subscribers file: %w", err)
	}
	if !locked {
		return false, errors.New("failed to lock subscribers file")
	}
	defer s.lock.Unlock()

	subs, err := s.readAll()
	if err != nil {
		return false, err
	}
	if containsEmail(subs, sub.Email) {
		return false, nil
	}

	if err := s.writeAll(append(subs, sub)); err != nil {
		return false, err
	}
	return true, nil
}

// All returns subscribers in insertion order.
func (s *FileStore) All(_ context.Context) ([]models.Subscriber, error) {
	return s.readAll()
}

func (s *FileStore) Ping(_ context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("subscribers file unavailable: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return s.lock.Close()
}

func (s *FileStore) readAll() ([]models.Subscriber, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Subscriber{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read subscribers file: %w", err)
	}

	subs := []models.Subscriber{}
	if len(data) == 0 {
		return subs, nil
	}
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("failed to decode subscribers file: %w", err)
	}
	return subs, nil
}

func (s *FileStore) writeAll(subs []models.Subscriber) error {
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode subscribers: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".subscribers-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write subscribers: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync subscribers: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace subscribers file: %w", err)
	}
	return nil
}

func containsEmail(subs []models.Subscriber, email string) bool {
	return slices.ContainsFunc(subs, func(s models.Subscriber) bool {
		return s.Email == email
	})
}
