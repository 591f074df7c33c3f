package sysinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/everything/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestListOrdersDirectoriesFirst(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "b")
	writeFile(t, filepath.Join(dir, "A.txt"), "a")
	writeFile(t, filepath.Join(dir, ".hidden"), "h")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "zdir"), 0o755))

	got, err := List(dir, false)
	require.NoError(t, err)
	var names []string
	for _, f := range got {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"zdir", "A.txt", "b.txt"}, names)
	assert.Equal(t, "directory", got[0].Type)
	assert.Equal(t, "644", got[1].Permissions)

	withHidden, err := List(dir, true)
	require.NoError(t, err)
	assert.Len(t, withHidden, 4)
}

func TestListErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := List(filepath.Join(dir, "missing"), false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	file := filepath.Join(dir, "f")
	writeFile(t, file, "x")
	_, err = List(file, false)
	assert.True(t, domain.IsValidation(err))

	_, err = List("", false)
	assert.True(t, domain.IsValidation(err))
}

func TestStat(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	writeFile(t, file, "hello")

	info, err := Stat(file)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", info.Name)
	assert.Equal(t, file, info.Path)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, "5 B", info.HumanSize)

	_, err = Stat(filepath.Join(dir, "nope"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMkdir(t *testing.T) {
	dir := t.TempDir()

	info, err := Mkdir(filepath.Join(dir, "new"), false)
	require.NoError(t, err)
	assert.Equal(t, "directory", info.Type)

	_, err = Mkdir(filepath.Join(dir, "new"), false)
	assert.True(t, domain.IsValidation(err))

	_, err = Mkdir(filepath.Join(dir, "a", "b"), false)
	assert.True(t, domain.IsValidation(err))

	_, err = Mkdir(filepath.Join(dir, "a", "b"), true)
	require.NoError(t, err)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, filepath.Join(sub, "f"), "x")

	_, err := Remove(sub, false)
	assert.True(t, domain.IsValidation(err))

	msg, err := Remove(sub, true)
	require.NoError(t, err)
	assert.Equal(t, "Successfully removed "+sub, msg)
	assert.NoDirExists(t, sub)

	_, err = Remove(sub, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0o755))
	writeFile(t, filepath.Join(src, "top.txt"), "top")
	writeFile(t, filepath.Join(src, "nested", "deep.txt"), "deep")

	dst := filepath.Join(dir, "dst")
	info, err := Copy(src, dst, false)
	require.NoError(t, err)
	assert.Equal(t, "directory", info.Type)

	data, err := os.ReadFile(filepath.Join(dst, "nested", "deep.txt"))
	require.NoError(t, err)
	assert.Equal(t, "deep", string(data))

	_, err = Copy(src, dst, false)
	assert.True(t, domain.IsValidation(err))

	writeFile(t, filepath.Join(src, "top.txt"), "changed")
	_, err = Copy(filepath.Join(src, "top.txt"), filepath.Join(dst, "top.txt"), true)
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(dst, "top.txt"))
	require.NoError(t, err)
	assert.Equal(t, "changed", string(data))

	_, err = Copy(filepath.Join(dir, "missing"), filepath.Join(dir, "x"), false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
