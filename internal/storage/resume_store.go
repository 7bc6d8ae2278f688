package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no resume exists for a key.
var ErrNotFound = errors.New("resume not found")

// ErrInvalidKey is returned for keys that could escape the storage root.
var ErrInvalidKey = errors.New("invalid resume key")

// ResumeStore keeps uploaded resume files addressable by an opaque key.
type ResumeStore interface {
	Save(ctx context.Context, fileName string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// LocalResumeStore writes resumes below a directory on local disk.
type LocalResumeStore struct {
	dir string
}

// NewLocalResumeStore creates dir when missing.
func NewLocalResumeStore(dir string) (*LocalResumeStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create resume dir: %w", err)
	}
	return &LocalResumeStore{dir: dir}, nil
}

// Save stores the content under a fresh key that keeps the file extension.
func (s *LocalResumeStore) Save(ctx context.Context, fileName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
	path := filepath.Join(s.dir, key)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("create resume: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write resume: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close resume: %w", err)
	}
	return key, nil
}

// Open returns the stored content for key.
func (s *LocalResumeStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Delete removes the stored content. Missing keys are not an error.
func (s *LocalResumeStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalResumeStore) path(key string) (string, error) {
	if !ValidKey(key) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.dir, key), nil
}

// ValidKey reports whether key is a bare file name.
func ValidKey(key string) bool {
	return key != "" && key != "." && key != ".." &&
		filepath.Base(key) == key && !strings.ContainsAny(key, `/\`)
}

// DownloadURL derives the public download address for a stored resume.
func DownloadURL(baseURL, key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/api/resumes/" + url.PathEscape(key)
}
