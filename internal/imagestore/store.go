package imagestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const uploadDir = "workorder_images"

// Store writes product images under the media root with random filenames, so
// uploads with the same original name never clash.
type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

// Save writes r to disk and returns the path relative to the media root.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext
	rel := filepath.Join(uploadDir, name)

	dir := filepath.Join(s.root, uploadDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("imagestore: mkdir: %w", err)
	}
	f, err := os.Create(filepath.Join(s.root, rel))
	if err != nil {
		return "", fmt.Errorf("imagestore: create: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("imagestore: write: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// Remove deletes a previously saved file. A missing file is not an error.
func (s *Store) Remove(rel string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("imagestore: remove: %w", err)
	}
	return nil
}

// Root returns the media root directory (served statically).
func (s *Store) Root() string { return s.root }
