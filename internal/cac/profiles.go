package cac

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProfileSelections is the parsed view of one product profile: its selection
// tokens classified into the three shapes a selections list mixes.
type ProfileSelections struct {
	ProfileID string
	Product   string
	Title     string
	// Rules are plain rule-id selections.
	Rules []string
	// Variables maps a variable id to its single currently-active value.
	Variables map[string]string
	// Policies are the policy ids referenced by policy_id:level tokens.
	Policies []string
}

// ProfilesForProduct parses every .profile file of a product.
func (s *Store) ProfilesForProduct(product string) ([]ProfileSelections, error) {
	dir := filepath.Join(s.Root, "products", product, "profiles")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles for product %s: %w", product, err)
	}

	var profiles []ProfileSelections
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".profile") {
			continue
		}
		p, err := s.parseProfile(product, filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (s *Store) parseProfile(product, path string) (ProfileSelections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ProfileSelections{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc struct {
		Title      string   `yaml:"title"`
		Selections []string `yaml:"selections"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ProfileSelections{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	p := ProfileSelections{
		ProfileID: strings.TrimSuffix(filepath.Base(path), ".profile"),
		Product:   product,
		Title:     doc.Title,
		Variables: make(map[string]string),
	}
	for _, token := range doc.Selections {
		switch {
		case strings.Contains(token, ":"):
			p.Policies = append(p.Policies, strings.SplitN(token, ":", 2)[0])
		case strings.Contains(token, "="):
			parts := strings.SplitN(token, "=", 2)
			p.Variables[parts[0]] = parts[1]
		default:
			p.Rules = append(p.Rules, token)
		}
	}
	return p, nil
}
