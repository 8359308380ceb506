// Package storage implements the local uploads store backing /uploads. Files
// live on a single disk (or a mounted volume) under one flat directory per
// upload date; the public URL path maps 1:1 onto the directory layout. All
// entry points validate the requested path against directory traversal before
// touching the filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidPath is returned for any requested path that escapes the uploads
// root (absolute paths, "..", backslashes, empty names).
var ErrInvalidPath = errors.New("invalid uploads path")

// UploadStore stores and serves uploaded files under a base directory.
type UploadStore struct {
	basePath   string
	publicPath string
}

// NewUploadStore creates the store and its base directory.
func NewUploadStore(basePath, publicPath string) (*UploadStore, error) {
	if err := os.MkdirAll(basePath, 0750); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}
	return &UploadStore{
		basePath:   abs,
		publicPath: strings.TrimSuffix(publicPath, "/"),
	}, nil
}

// cleanRelative validates p as a relative path inside the store and returns
// its slash-separated form.
func (s *UploadStore) cleanRelative(p string) (string, error) {
	p = strings.TrimPrefix(p, "/")
	if p == "" || strings.Contains(p, "\\") || strings.Contains(p, "\x00") {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || path.IsAbs(cleaned) {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

// Resolve maps a public request path (relative to /uploads) to an absolute
// filesystem path, rejecting traversal attempts with ErrInvalidPath.
func (s *UploadStore) Resolve(p string) (string, error) {
	cleaned, err := s.cleanRelative(p)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.basePath, filepath.FromSlash(cleaned))
	// Belt and braces: the joined path must still be inside the root.
	if full != s.basePath && !strings.HasPrefix(full, s.basePath+string(os.PathSeparator)) {
		return "", ErrInvalidPath
	}
	return full, nil
}

// Save writes the file contents under a generated unique name carrying the
// given extension (".avif", ".webp", …) and returns the public URL path.
// Files are grouped into one directory per day to keep listings manageable.
func (s *UploadStore) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	rel := path.Join(time.Now().Format("2006-01"), uuid.New().String()+ext)
	full, err := s.Resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0750); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", err
	}

	return s.publicPath + "/" + rel, nil
}

// Delete removes a stored file by its public URL path. Deleting a file that
// is already gone is not an error. URLs outside the uploads prefix (external
// images) are ignored.
func (s *UploadStore) Delete(ctx context.Context, publicURL string) error {
	rel, ok := s.TrimPublicPrefix(publicURL)
	if !ok {
		return nil
	}
	full, err := s.Resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}

// Exists reports whether the file behind a public request path is present.
func (s *UploadStore) Exists(p string) (bool, error) {
	full, err := s.Resolve(p)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// TrimPublicPrefix strips the public uploads prefix from a URL, reporting
// whether the URL pointed into this store at all.
func (s *UploadStore) TrimPublicPrefix(url string) (string, bool) {
	if !strings.HasPrefix(url, s.publicPath+"/") {
		return "", false
	}
	return strings.TrimPrefix(url, s.publicPath+"/"), true
}

// PublicPath returns the URL prefix files are served under (e.g. "/uploads").
func (s *UploadStore) PublicPath() string {
	return s.publicPath
}

// BasePath returns the absolute filesystem root of the store.
func (s *UploadStore) BasePath() string {
	return s.basePath
}
