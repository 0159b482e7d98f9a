// Package filesys provides a small collection of utility functions for
// the file system operations the disk-backed cache provider needs:
// creating its root directory, listing, reading, writing and deleting
// entry files, and checking existence. Functions the teacher's original
// package offered but nothing in this repository calls — CopyDir,
// CopyFile, SearchFiles, SearchFileExtensions, Pwd, Cd, CreateFile — were
// dropped rather than carried as dead weight.
package filesys

import (
	"errors"
	"os"
	"path/filepath"
)

var (
	ErrIsNotDir = errors.New("path isn't a directory")
)

// CreateDir creates a directory at the specified path with the given permissions.
//
// If the directory already exists:
//   - If 'force' is true, it proceeds without error.
//   - If 'force' is false, it returns an error.
//
// It also returns an error if the existing path is a file (not a directory).
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	if !force {
		if err == nil {
			return os.ErrExist
		}
		if !os.IsNotExist(err) {
			return err
		}
	}

	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}

	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}

	return os.Chmod(dirPath, permission)
}

// ReadDir reads the directory specified by `dirName` and returns a list of matching file paths.
// It uses `filepath.Glob` which means `dirName` can contain glob patterns (e.g., "mydir/*.txt").
func ReadDir(dirName string) ([]string, error) {
	return filepath.Glob(dirName)
}

// WriteFile writes the provided `contents` to the file at `filePath` with the given `permission`.
// If the file does not exist, it will be created. If it exists, it will be truncated.
func WriteFile(filePath string, permission os.FileMode, contents []byte) error {
	return os.WriteFile(filePath, contents, permission)
}

// ReadFile reads the entire content of the file at `filePath` into a byte slice.
func ReadFile(filePath string) ([]byte, error) {
	return os.ReadFile(filePath)
}

// DeleteFile deletes the file at the specified `filePath`. A missing
// file is not an error.
func DeleteFile(filePath string) error {
	err := os.Remove(filePath)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// Exists checks if a file or directory at the given `file` path exists.
func Exists(file string) (bool, error) {
	_, err := os.Stat(file)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
