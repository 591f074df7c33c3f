package local

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/everything/internal/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2030, 3, 14, 8, 0, 0, 0, time.UTC) }
	return s, dir
}

func TestSaveAndGet(t *testing.T) {
	s, dir := newTestStore(t)
	ctx := context.Background()
	imageData := []byte("fake png data")

	key, err := s.Save(ctx, "receipt", "image/png", bytes.NewReader(imageData))
	require.NoError(t, err)
	assert.Regexp(t, `^receipt/2030-03/[0-9a-f-]{36}\.png$`, key)
	assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(key)))

	rc, mimeType, err := s.Get(ctx, key)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	assert.Equal(t, "image/png", mimeType)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, imageData, data)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s, dir := newTestStore(t)
	key, err := s.Save(context.Background(), "receipt", "image/webp", bytes.NewReader([]byte("a")))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "receipt", "2030-03"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(key), entries[0].Name())
}

func TestUnknownMIMEDefaultsToJPEG(t *testing.T) {
	s, _ := newTestStore(t)
	key, err := s.Save(context.Background(), "receipt", "application/octet-stream", bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(key))

	rc, mimeType, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	_ = rc.Close()
	assert.Equal(t, "image/jpeg", mimeType)
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	key, err := s.Save(ctx, "receipt", "image/jpeg", bytes.NewReader([]byte("test data")))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, key))

	_, _, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, key), domain.ErrNotFound)
}

func TestRejectsKeysOutsideBase(t *testing.T) {
	s, _ := newTestStore(t)
	for _, key := range []string{"../../etc/passwd", "/etc/passwd", ""} {
		_, _, err := s.Get(context.Background(), key)
		assert.True(t, domain.IsValidation(err), key)
	}
}
