// Package backup saves the files of a run to a zip archive before they are
// rewritten, and restores the latest archive on request.
//
// Archives live under dir/<key>/, where key is derived from the absolute
// root path, so backups of different trees do not mix.
package backup

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ErrNoBackup is returned by Restore when root has never been backed up.
var ErrNoBackup = errors.New("no backup found")

const stampLayout = "20060102T150405.000000000"

// Key names the backup directory for root.
func Key(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(xxhash.Sum64String(filepath.Clean(abs)), 16), nil
}

// Create archives files, which must lie under root, and returns the archive
// path.
func Create(dir, root string, files []string) (string, error) {
	key, err := Key(root)
	if err != nil {
		return "", err
	}
	target := filepath.Join(dir, key)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	path := filepath.Join(target, time.Now().UTC().Format(stampLayout)+".zip")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	if err := write(f, root, files); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("create backup: %w", err)
	}
	return path, nil
}

func write(w io.Writer, root string, files []string) error {
	zw := zip.NewWriter(w)
	for _, file := range files {
		name, err := entryName(root, file)
		if err != nil {
			return err
		}
		info, err := os.Stat(file)
		if err != nil {
			return fmt.Errorf("back up %s: %w", file, err)
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = name
		header.Method = zip.Deflate
		dst, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		src, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("back up %s: %w", file, err)
		}
		_, err = io.Copy(dst, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("back up %s: %w", file, err)
		}
	}
	return zw.Close()
}

func entryName(root, file string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("back up %s: file is outside %s", file, root)
	}
	return filepath.ToSlash(rel), nil
}

// Latest returns the newest archive for root.
func Latest(dir, root string) (string, error) {
	key, err := Key(root)
	if err != nil {
		return "", err
	}
	matches, err := filepath.Glob(filepath.Join(dir, key, "*.zip"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w for %s", ErrNoBackup, root)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// Restore writes the files of the newest archive for root back to their
// places and returns their paths.
func Restore(dir, root string) ([]string, error) {
	path, err := Latest(dir, root)
	if err != nil {
		return nil, err
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer zr.Close()

	var restored []string
	for _, entry := range zr.File {
		name := filepath.FromSlash(entry.Name)
		if !filepath.IsLocal(name) {
			return restored, fmt.Errorf("backup %s: invalid entry %q", path, entry.Name)
		}
		target := filepath.Join(root, name)
		if err := extract(entry, target); err != nil {
			return restored, err
		}
		restored = append(restored, target)
	}
	return restored, nil
}

func extract(entry *zip.File, target string) error {
	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("restore %s: %w", entry.Name, err)
	}
	defer src.Close()
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("restore %s: %w", entry.Name, err)
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, entry.Mode().Perm())
	if err != nil {
		return fmt.Errorf("restore %s: %w", entry.Name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("restore %s: %w", entry.Name, err)
	}
	return dst.Close()
}
