// Package assets stores synthesized audio on the local filesystem.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/heartmarshall/japanese-cards/internal/domain"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
	extension = ".mp3"
)

// Store writes assets as <dir>/<key>.mp3. Writes are atomic: a reader never
// sees a partial file.
type Store struct {
	dir string
	log *slog.Logger
}

// NewStore creates a Store rooted at dir. The directory is created on first save.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		dir: dir,
		log: logger.With("adapter", "assets"),
	}
}

// Save writes data under key, replacing any previous asset with that key.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, dirPerms); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write asset %s: %w", key, err)
	}
	// atomic.WriteFile keeps the temp file's mode for new files
	if err := os.Chmod(path, filePerms); err != nil {
		return fmt.Errorf("chmod asset %s: %w", key, err)
	}

	s.log.DebugContext(ctx, "asset saved", slog.String("path", path), slog.Int("bytes", len(data)))
	return nil
}

// Ping reports whether the store directory can be written.
func (s *Store) Ping(_ context.Context) error {
	if err := os.MkdirAll(s.dir, dirPerms); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}
	f, err := os.CreateTemp(s.dir, ".ping-*")
	if err != nil {
		return fmt.Errorf("asset dir not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// Load reads a previously saved asset.
func (s *Store) Load(key string) ([]byte, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("asset %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", key, err)
	}
	return data, nil
}

// Path returns the file path for key. Keys that would escape the store
// directory are rejected.
func (s *Store) Path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return "", domain.NewValidationError("key", fmt.Sprintf("invalid asset key %q", key))
	}
	return filepath.Join(s.dir, key+extension), nil
}
