package cac

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// VariableFiles returns the paths of every .var file under the benchmark
// subtrees.
func (s *Store) VariableFiles() ([]string, error) {
	var files []string
	for _, benchmark := range Benchmarks {
		root := filepath.Join(s.Root, benchmark)
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(d.Name()) == ".var" {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk benchmark %s: %w", benchmark, err)
		}
	}
	return files, nil
}

// VariableFile returns the definition file path for a variable id, or "" if
// the variable does not exist in the content tree.
func (s *Store) VariableFile(varID string) (string, error) {
	files, err := s.VariableFiles()
	if err != nil {
		return "", err
	}
	want := varID + ".var"
	for _, f := range files {
		if filepath.Base(f) == want {
			return f, nil
		}
	}
	return "", nil
}

// VariableOptions returns the legal option set declared in a variable's
// definition file. A missing variable yields (nil, nil); a file that cannot
// be parsed (some carry templating directives) yields an error the caller
// may choose to skip over.
func (s *Store) VariableOptions(varID string) (map[string]string, error) {
	path, err := s.VariableFile(varID)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc struct {
		Options map[string]any `yaml:"options"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	options := make(map[string]string, len(doc.Options))
	for k, v := range doc.Options {
		options[k] = fmt.Sprint(v)
	}
	return options, nil
}
