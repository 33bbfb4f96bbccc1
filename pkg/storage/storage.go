// Package storage keeps uploaded files on local disk under a root directory
// that is also served over HTTP.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidPath = errors.New("storage: path escapes the upload root")

// Store saves and removes files. Paths are slash separated and relative to the root.
type Store interface {
	Save(dir, originalName string, r io.Reader) (string, error)
	Delete(relPath string) error
	URL(relPath string) string
}

// LocalStore writes under Root and builds URLs under BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{Root: filepath.Clean(root), BaseURL: strings.TrimRight(baseURL, "/")}
}

// Save stores r as dir/<uuid><ext> and returns the relative path.
func (s *LocalStore) Save(dir, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if len(ext) > 10 {
		ext = ""
	}
	rel := path.Join(path.Clean("/" + filepath.ToSlash(dir))[1:], uuid.NewString()+ext)

	full, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage: create dir: %w", err)
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("storage: close file: %w", err)
	}
	return rel, nil
}

// Delete removes the file. A missing file is not an error.
func (s *LocalStore) Delete(relPath string) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	return nil
}

func (s *LocalStore) URL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return s.BaseURL + "/" + strings.TrimLeft(relPath, "/")
}

func (s *LocalStore) resolve(relPath string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(relPath))
	if clean == "/" {
		return "", ErrInvalidPath
	}
	full := filepath.Join(s.Root, filepath.FromSlash(clean))
	if !strings.HasPrefix(full, s.Root+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return full, nil
}
