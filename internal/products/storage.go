package products

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore saves uploaded product photos and returns their public URL.
type ImageStore interface {
	Save(filename string, src io.Reader) (string, error)
}

// DiskImageStore writes uploads under a local directory served at a public
// base path, the storage backend the back office runs with by default.
type DiskImageStore struct {
	dir      string
	basePath string
}

// NewDiskImageStore constructs a DiskImageStore, creating the directory.
func NewDiskImageStore(dir, basePath string) (*DiskImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("products/storage: mkdir: %w", err)
	}
	return &DiskImageStore{dir: dir, basePath: strings.TrimRight(basePath, "/")}, nil
}

// Save stores the upload under a random name, keeping the extension.
func (s *DiskImageStore) Save(filename string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("products/storage: create: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("products/storage: write: %w", err)
	}
	return s.basePath + "/" + name, nil
}
