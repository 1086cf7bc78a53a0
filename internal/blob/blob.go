// Package blob stores uploaded media files.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

var ErrInvalidPath = errors.New("invalid blob path")

type Object struct {
	URL         string `json:"url"`
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

type Store interface {
	Upload(ctx context.Context, data []byte, objectPath, contentType string) (*Object, error)
	// Delete reports whether an object existed at objectPath.
	Delete(ctx context.Context, objectPath string) (bool, error)
}

// FSStore keeps objects on an afero filesystem; the OS filesystem rooted at
// a directory in production and a MemMapFs in tests. Objects are stored
// under rooted keys, the form http.FileServer opens.
type FSStore struct {
	fs        afero.Fs
	publicURL string
}

// Ensure FSStore implements Store
var _ Store = (*FSStore)(nil)

func NewFSStore(fs afero.Fs, publicURL string) *FSStore {
	return &FSStore{fs: afero.NewBasePathFs(fs, "/"), publicURL: strings.TrimRight(publicURL, "/")}
}

// NewOSStore roots the store at dir, creating it if needed.
func NewOSStore(dir, publicURL string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return NewFSStore(afero.NewBasePathFs(afero.NewOsFs(), dir), publicURL), nil
}

// FS exposes the store's rooted view of its filesystem; object paths open
// the same file with or without a leading slash.
func (s *FSStore) FS() afero.Fs {
	return s.fs
}

func (s *FSStore) Upload(ctx context.Context, data []byte, objectPath, contentType string) (*Object, error) {
	clean, err := cleanPath(objectPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.fs.MkdirAll(path.Dir(clean), 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, clean, data, 0o644); err != nil {
		return nil, fmt.Errorf("write blob %s: %w", clean, err)
	}
	return &Object{
		URL:         s.publicURL + "/" + clean,
		Path:        clean,
		ContentType: contentType,
		Size:        len(data),
	}, nil
}

func (s *FSStore) Delete(ctx context.Context, objectPath string) (bool, error) {
	clean, err := cleanPath(objectPath)
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	exists, err := afero.Exists(s.fs, clean)
	if err != nil {
		return false, fmt.Errorf("stat blob %s: %w", clean, err)
	}
	if !exists {
		return false, nil
	}
	if err := s.fs.Remove(clean); err != nil {
		return false, fmt.Errorf("remove blob %s: %w", clean, err)
	}
	return true, nil
}

// cleanPath keeps object paths relative and inside the store.
func cleanPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}
	clean := strings.TrimPrefix(path.Clean("/"+p), "/")
	if clean == "" {
		return "", ErrInvalidPath
	}
	return clean, nil
}
