package printing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileSystemPDFStoreConfig contains configuration for file system storage
type FileSystemPDFStoreConfig struct {
	// BasePath is the root directory for invoice PDFs
	// Default: data/invoices
	BasePath string
	// Logger for operations
	Logger *zap.Logger
}

// FileSystemPDFStore keeps invoice PDFs as flat files under BasePath
type FileSystemPDFStore struct {
	basePath string
	logger   *zap.Logger
}

// NewFileSystemPDFStore creates the base directory and returns the store
func NewFileSystemPDFStore(config FileSystemPDFStoreConfig) (*FileSystemPDFStore, error) {
	if config.BasePath == "" {
		config.BasePath = "data/invoices"
	}
	if err := os.MkdirAll(config.BasePath, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", config.BasePath), err)
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSystemPDFStore{basePath: config.BasePath, logger: logger}, nil
}

// Save writes the file, replacing an existing one atomically
func (s *FileSystemPDFStore) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	if len(data) == 0 {
		return NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}
	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.basePath, ".pdf-*")
	if err != nil {
		return NewRenderError(ErrCodeStorageFailed, "failed to create temporary file", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}
	if err := tmp.Close(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "failed to move PDF file into place", err)
	}

	s.logger.Info("PDF stored", zap.String("path", path), zap.Int("size", len(data)))
	return nil
}

// Load reads a stored file
func (s *FileSystemPDFStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewRenderError(ErrCodeStorageFailed, "PDF not found", err)
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to read PDF file", err)
	}
	return data, nil
}

// Exists reports whether a file with the name has been stored
func (s *FileSystemPDFStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	path, err := s.resolve(name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, NewRenderError(ErrCodeStorageFailed, "failed to stat PDF file", err)
	}
	return !info.IsDir(), nil
}

// resolve maps a file name to a path directly under basePath
func (s *FileSystemPDFStore) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		s.logger.Warn("blocked potentially malicious file name", zap.String("name", name))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid file name", nil)
	}
	return filepath.Join(s.basePath, name), nil
}
