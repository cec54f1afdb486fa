// Package storage persists uploaded documentation files and returns an
// opaque reference to the stored object. Uploads are a side effect with no
// rollback: a file whose deposit update later fails simply remains stored.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Store saves an uploaded file and returns its reference.
type Store interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
}

// objectKey builds a date-partitioned key preserving the original extension.
func objectKey(originalName string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("docs/%d/%d/%d/%s%s", d.Year(), d.Month(), d.Day(), uuid.NewString(), filepath.Ext(originalName))
}

// DiskStore writes uploads to a local directory.
type DiskStore struct {
	dir string
}

// NewDiskStore ensures the upload directory exists and returns a disk store.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save streams the upload to a uniquely named file and returns its path.
func (s *DiskStore) Save(_ context.Context, originalName string, r io.Reader) (string, error) {
	name := uuid.NewString() + filepath.Ext(originalName)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}

	return path, nil
}
