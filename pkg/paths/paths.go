// Package paths provides centralized path handling for typewriter.
// Every path that enters the system from a document is cleaned here:
// home-directory expansion, resolution against the owning document's
// directory, and canonicalization for link-graph deduplication.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/typewriter/pkg/errors"
)

// GetHomeDirectory returns the user's home directory.
// It first tries os.UserHomeDir(), then falls back to the HOME environment
// variable. If both fail, it returns an error rather than using dangerous
// defaults.
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err == nil && homeDir != "" {
		return homeDir, nil
	}

	homeDir = os.Getenv("HOME")
	if homeDir != "" {
		return homeDir, nil
	}

	return "", errors.New(errors.ErrFileAccess, "unable to determine home directory: neither os.UserHomeDir() nor HOME environment variable are available")
}

// ExpandHome expands the ~ character to the user's home directory.
// Returns an error if home directory cannot be determined.
func ExpandHome(path string) (string, error) {
	if path == "~" {
		return GetHomeDirectory()
	}

	if strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		homeDir, err := GetHomeDirectory()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, path[2:]), nil
	}

	return path, nil
}

// Clean expands ~ in path and makes it absolute. Relative paths are
// resolved against baseDir (the directory of the document that declared
// them), not the process working directory. The result is lexically
// cleaned but symlinks are not resolved.
func Clean(path, baseDir string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "path must not be empty")
	}

	expanded, err := ExpandHome(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "expanding path %q", path)
	}

	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(baseDir, expanded)
	}

	return filepath.Clean(expanded), nil
}

// Canonical cleans path and resolves symlinks, producing the one true
// spelling used as the identity of a document in the link graph. The
// target must exist.
func Canonical(path, baseDir string) (string, error) {
	cleaned, err := Clean(path, baseDir)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(cleaned)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileNotFound, "resolving path %q", cleaned)
	}

	return resolved, nil
}
