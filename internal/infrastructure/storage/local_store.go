package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"go.uber.org/zap"
)

// LocalFileStore writes export files into a directory served under MediaURL
type LocalFileStore struct {
	dir      string
	mediaURL string
	logger   *zap.Logger
}

// NewLocalFileStore creates the directory and returns the store
func NewLocalFileStore(dir, mediaURL string, logger *zap.Logger) (*LocalFileStore, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if mediaURL != "" && !strings.HasSuffix(mediaURL, "/") {
		mediaURL += "/"
	}
	return &LocalFileStore{dir: dir, mediaURL: mediaURL, logger: logger}, nil
}

// Store writes data under name or the first free variant of it. The file is
// created exclusively so concurrent exports cannot clobber each other.
func (s *LocalFileStore) Store(ctx context.Context, name string, data []byte, _ string) (*appinv.StoredFile, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	for attempt := range maxNameAttempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidate := candidateName(name, attempt)
		f, err := os.OpenFile(filepath.Join(s.dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create export file: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(f.Name())
			return nil, fmt.Errorf("failed to write export file: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(f.Name())
			return nil, fmt.Errorf("failed to write export file: %w", err)
		}

		s.logger.Info("Export file stored", zap.String("name", candidate), zap.Int("size", len(data)))
		return &appinv.StoredFile{Name: candidate, URL: s.mediaURL + candidate}, nil
	}
	return nil, fmt.Errorf("%w for %s", ErrNoFreeName, name)
}

var _ appinv.FileStore = (*LocalFileStore)(nil)
