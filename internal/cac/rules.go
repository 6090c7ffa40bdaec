package cac

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// RuleIDs returns every rule id discoverable in the content tree. A rule is
// a directory containing a rule.yml anywhere under a benchmark subtree; its
// id is the directory name.
func (s *Store) RuleIDs() ([]string, error) {
	var ids []string
	for _, benchmark := range Benchmarks {
		root := filepath.Join(s.Root, benchmark)
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && d.Name() == "rule.yml" {
				ids = append(ids, filepath.Base(filepath.Dir(path)))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk benchmark %s: %w", benchmark, err)
		}
	}
	return ids, nil
}
