package sysinfo

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/vbonduro/everything/internal/domain"
)

type FileInfo struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Type        string    `json:"type"`
	Size        int64     `json:"size"`
	HumanSize   string    `json:"human_size"`
	Modified    time.Time `json:"modified"`
	Permissions string    `json:"permissions"`
}

// pathError reports a missing path as a not-found error naming it.
func pathError(what, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s %q: %w", what, path, domain.ErrNotFound)
	}
	return fmt.Errorf("failed to stat %s: %w", path, err)
}

func resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", domain.Invalid("path", "is required")
	}
	if rest, ok := strings.CutPrefix(path, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand home directory: %w", err)
		}
		path = home + rest
	}
	return filepath.Abs(path)
}

func describeFile(path string, fi fs.FileInfo) FileInfo {
	info := FileInfo{
		Name:        fi.Name(),
		Path:        path,
		Type:        "file",
		Size:        fi.Size(),
		HumanSize:   humanize.Bytes(uint64(max(fi.Size(), 0))),
		Modified:    fi.ModTime().UTC(),
		Permissions: fmt.Sprintf("%03o", fi.Mode().Perm()),
	}
	if fi.IsDir() {
		info.Type = "directory"
	}
	return info
}

// List returns the entries of dir, directories first, then by
// case-insensitive name.
func List(dir string, showHidden bool) ([]FileInfo, error) {
	dir, err := resolve(dir)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, pathError("directory", dir, err)
	}
	if !fi.IsDir() {
		return nil, domain.Invalid("path", "%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	out := []FileInfo{}
	for _, e := range entries {
		if !showHidden && hidden(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, describeFile(filepath.Join(dir, e.Name()), fi))
	}
	slices.SortFunc(out, func(a, b FileInfo) int {
		if a.Type != b.Type {
			if a.Type == "directory" {
				return -1
			}
			return 1
		}
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out, nil
}

func Stat(path string) (*FileInfo, error) {
	path, err := resolve(path)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, pathError("path", path, err)
	}
	info := describeFile(path, fi)
	return &info, nil
}

func Mkdir(path string, parents bool) (*FileInfo, error) {
	path, err := resolve(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		return nil, domain.Invalid("path", "directory already exists")
	}
	if parents {
		err = os.MkdirAll(path, 0o755)
	} else {
		err = os.Mkdir(path, 0o755)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.Invalid("path", "parent directory does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return Stat(path)
}

// Remove deletes a file, an empty directory, or with recursive any directory.
func Remove(path string, recursive bool) (string, error) {
	abs, err := resolve(path)
	if err != nil {
		return "", err
	}
	fi, err := os.Lstat(abs)
	if err != nil {
		return "", pathError("path", abs, err)
	}
	if fi.IsDir() && recursive {
		err = os.RemoveAll(abs)
	} else {
		err = os.Remove(abs)
	}
	if err != nil {
		if fi.IsDir() && !recursive {
			return "", domain.Invalid("path", "directory not empty, use recursive=true to remove")
		}
		return "", fmt.Errorf("failed to remove %s: %w", abs, err)
	}
	return "Successfully removed " + path, nil
}

// Copy copies a file or directory tree. An existing destination is an error
// unless overwrite is set, in which case files are replaced in place.
func Copy(source, destination string, overwrite bool) (*FileInfo, error) {
	src, err := resolve(source)
	if err != nil {
		return nil, err
	}
	dst, err := resolve(destination)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(src)
	if err != nil {
		return nil, pathError("source path", src, err)
	}
	if _, err := os.Stat(dst); err == nil && !overwrite {
		return nil, domain.Invalid("destination", "already exists")
	}

	if fi.IsDir() {
		err = copyTree(src, dst)
	} else {
		err = copyFile(src, dst, fi.Mode().Perm())
	}
	if err != nil {
		return nil, err
	}
	return Stat(dst)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		fi, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, fi.Mode().Perm())
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		return copyFile(path, target, fi.Mode().Perm())
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
