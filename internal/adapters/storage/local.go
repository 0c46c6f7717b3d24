package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jobrunner/locus/internal/domain"
	"github.com/jobrunner/locus/internal/ports/output"
)

// LocalStorage implements ObjectStorage for local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage adapter.
func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{basePath: filepath.Clean(basePath)}
}

// List returns all collection documents below the base directory.
func (s *LocalStorage) List(ctx context.Context) ([]output.StorageObject, error) {
	var objects []output.StorageObject

	err := filepath.Walk(s.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if info.IsDir() || !IsCollectionKey(info.Name()) {
			return nil
		}

		key, err := s.KeyFor(path)
		if err != nil {
			return err
		}

		objects = append(objects, output.StorageObject{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime().Unix(),
		})

		return nil
	})

	if err != nil {
		return nil, &domain.StorageError{Operation: "list", Key: s.basePath, Err: err}
	}

	return objects, nil
}

// GetReader returns a reader for the given object.
func (s *LocalStorage) GetReader(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) //#nosec G304 -- path is confined to basePath
	if err != nil {
		return nil, &domain.StorageError{Operation: "read", Key: key, Err: err}
	}
	return f, nil
}

// Exists checks if a file exists.
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	path, err := s.resolve(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, &domain.StorageError{Operation: "stat", Key: key, Err: err}
}

// FullPath returns the full path for a key.
func (s *LocalStorage) FullPath(key string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(key))
}

// KeyFor maps a filesystem path below the base directory to its key.
func (s *LocalStorage) KeyFor(path string) (string, error) {
	rel, err := filepath.Rel(s.basePath, path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s: %w", path, s.basePath, domain.ErrInvalidInput)
	}
	return filepath.ToSlash(rel), nil
}

// resolve maps a key to a path and rejects keys escaping the base directory.
func (s *LocalStorage) resolve(key string) (string, error) {
	path := s.FullPath(key)
	if _, err := s.KeyFor(path); err != nil {
		return "", &domain.StorageError{Operation: "resolve", Key: key, Err: err}
	}
	return path, nil
}
