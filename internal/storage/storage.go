package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// File is an uploaded file pending storage.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Store abstracts attachment blob storage. The workflow engine only touches
// it through this interface; metadata lives in the database.
type Store interface {
	Save(ctx context.Context, f File) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// LocalStore writes attachments to a directory on disk.
type LocalStore struct {
	root string
}

// NewLocalStore creates the store rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{root: dir}
}

// Save streams the file under the storage root, keyed by a fresh UUID so
// concurrent uploads of identically named files never collide.
func (s *LocalStore) Save(ctx context.Context, f File) (string, error) {
	rel := uuid.NewString() + "_" + filepath.Base(f.Name)
	abs := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create attachment dir: %w", err)
	}
	dst, err := os.Create(abs)
	if err != nil {
		return "", fmt.Errorf("create attachment file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, f.Content); err != nil {
		os.Remove(abs)
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return rel, nil
}

// Open returns a reader over a stored file.
func (s *LocalStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.root, path))
}

// Delete removes a stored file.
func (s *LocalStore) Delete(ctx context.Context, path string) error {
	err := os.Remove(filepath.Join(s.root, path))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Exists reports whether the file is present.
func (s *LocalStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.root, path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
