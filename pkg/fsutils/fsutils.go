// Package fsutils holds small filesystem helpers shared by the stores,
// exporters and repositories. Every helper works on an afero.Fs so callers
// can run against the OS or an in-memory filesystem.
package fsutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// CreateDir creates a directory (and parents) if it doesn't exist.
func CreateDir(fs afero.Fs, path string) error {
	return fs.MkdirAll(path, 0755)
}

// CreateFile creates an empty file. Fails if it already exists.
func CreateFile(fs afero.Fs, path string) error {
	f, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		return err
	}
	return f.Close()
}

// WriteToFile writes content to a file, overwriting if it exists.
func WriteToFile(fs afero.Fs, path string, content []byte) error {
	return afero.WriteFile(fs, path, content, 0644)
}

// WriteFileAtomic writes content to a sibling temp file and renames it over path,
// so readers never observe a half-written file.
func WriteFileAtomic(fs afero.Fs, path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := CreateDir(fs, dir); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %q: %w", path, err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(content)
	err = multierr.Append(err, tmp.Close())
	if err == nil {
		err = fs.Rename(tmpName, path)
	}
	if err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}

// FileExists checks if a path exists and is a regular file (not a directory).
func FileExists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a path exists and is a directory.
func DirExists(fs afero.Fs, path string) bool {
	ok, err := afero.DirExists(fs, path)
	return err == nil && ok
}

// ListDirs returns the names of the directories directly under path.
// A missing path yields an empty list.
func ListDirs(fs afero.Fs, path string) ([]string, error) {
	entries, err := afero.ReadDir(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read directory %q: %w", path, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// CopyDir recursively copies a directory from src to dst.
// It creates the destination directory if it doesn't exist.
// Existing files in the destination will be overwritten.
func CopyDir(fs afero.Fs, src, dst string) error {
	srcInfo, err := fs.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source directory %q: %w", src, err)
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("source %q is not a directory", src)
	}

	if err := fs.MkdirAll(dst, srcInfo.Mode().Perm()|0700); err != nil {
		return fmt.Errorf("failed to create destination directory %q: %w", dst, err)
	}

	entries, err := afero.ReadDir(fs, src)
	if err != nil {
		return fmt.Errorf("failed to read source directory %q: %w", src, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := CopyDir(fs, srcPath, dstPath); err != nil {
				return fmt.Errorf("failed to copy subdirectory %q to %q: %w", srcPath, dstPath, err)
			}
			continue
		}
		if err := CopyFile(fs, srcPath, dstPath); err != nil {
			return fmt.Errorf("failed to copy file %q to %q: %w", srcPath, dstPath, err)
		}
	}

	return nil
}

// CopyFile copies a single file from src to dst, overwriting dst.
func CopyFile(fs afero.Fs, src, dst string) (err error) {
	srcFile, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file %q: %w", src, err)
	}
	defer srcFile.Close()

	dstFile, err := fs.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file %q: %w", dst, err)
	}
	defer func() { err = multierr.Append(err, dstFile.Close()) }()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy data from %q to %q: %w", src, dst, err)
	}
	return nil
}
