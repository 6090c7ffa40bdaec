// Package cac provides a read-only query surface over a CaC-style content
// repository: benchmark rule trees, variable files, product profiles, and
// policy control files with their security levels.
package cac

import (
	"path/filepath"
)

// Benchmarks are the content subtrees walked when discovering rules and
// variables.
var Benchmarks = []string{"linux_os", "applications"}

// Store queries a CaC content checkout rooted at Root.
type Store struct {
	Root string
}

// NewStore returns a Store rooted at root.
func NewStore(root string) *Store {
	return &Store{Root: root}
}

// ControlFile returns the control file path for a policy id.
func (s *Store) ControlFile(policyID string) string {
	return filepath.Join(s.Root, "controls", policyID+".yml")
}

// ProfilePath returns the path of a product profile file.
func (s *Store) ProfilePath(product, profileID string) string {
	return filepath.Join(s.Root, "products", product, "profiles", profileID+".profile")
}
