// Package local stores receipt images on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/everything/internal/domain"
)

var extByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store keeps images under basePath/<prefix>/<yyyy-mm>/<uuid><ext>. The key
// is the slash-separated path below basePath.
type Store struct {
	basePath string
	now      func() time.Time
	logger   *slog.Logger
}

func New(basePath string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Store{basePath: basePath, now: time.Now, logger: logger}, nil
}

// Save writes r to a temporary file and renames it into place so readers
// never observe a partial image.
func (s *Store) Save(ctx context.Context, prefix, mimeType string, r io.Reader) (string, error) {
	ext, ok := extByMIME[mimeType]
	if !ok {
		ext = ".jpg"
	}
	key := path.Join(prefix, s.now().UTC().Format("2006-01"), uuid.NewString()+ext)
	dest, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := func() {
		if rerr := os.Remove(tmp.Name()); rerr != nil && !os.IsNotExist(rerr) {
			s.logger.Error("failed to remove partial image", "path", tmp.Name(), "error", rerr)
		}
	}

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to close image: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	s.logger.Debug("image saved", "key", key)
	return key, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(p)
	if os.IsNotExist(err) {
		return nil, "", fmt.Errorf("image %q: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	return f, mimeForKey(key), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if os.IsNotExist(err) {
		return fmt.Errorf("image %q: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// resolve maps key to a path inside basePath, rejecting keys that escape it.
func (s *Store) resolve(key string) (string, error) {
	if key == "" || filepath.IsAbs(key) || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", domain.Invalid("key", "must be a relative path inside the image directory")
	}
	return filepath.Join(s.basePath, filepath.FromSlash(key)), nil
}

func mimeForKey(key string) string {
	ext := strings.ToLower(path.Ext(key))
	for mime, e := range extByMIME {
		if e == ext {
			return mime
		}
	}
	return "image/jpeg"
}
