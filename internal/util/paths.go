// Package util holds small path helpers shared across packages.
package util

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// ConfigDir returns the cacsync configuration directory
func ConfigDir() string {
	return filepath.Join(HomeDir(), ".config", "cacsync")
}

// ExpandPath expands a leading ~ to the home directory and resolves relative
// paths against baseDir. Returns "" for an empty input.
func ExpandPath(path, baseDir string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(HomeDir(), path[2:])
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}

// ExpandPaths expands every path in the list, dropping empty entries.
func ExpandPaths(paths []string, baseDir string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if expanded := ExpandPath(p, baseDir); expanded != "" {
			out = append(out, expanded)
		}
	}
	return out
}
