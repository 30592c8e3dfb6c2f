package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// Store persists uploaded syllabus files and hands back an opaque path
// string. The path is advisory: the database row is authoritative and file
// removal is best effort.
type Store interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
	Remove(ctx context.Context, path string) error
}

var reUnsafe = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

type fsStore struct {
	dir    string
	logger *slog.Logger
}

// NewFSStore returns a Store writing under dir, creating it on first use.
func NewFSStore(dir string, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &fsStore{dir: dir, logger: logger}
}

func (s *fsStore) Save(_ context.Context, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), reUnsafe.ReplaceAllString(filepath.Base(filename), "_"))
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	s.logger.Info("storage.save", "path", path, "bytes", len(data))
	return path, nil
}

// Remove deletes a stored file. A missing file is not an error: the row
// referencing it may outlive the file or never have had one.
func (s *fsStore) Remove(_ context.Context, path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove upload: %w", err)
	}
	s.logger.Info("storage.remove", "path", path)
	return nil
}
