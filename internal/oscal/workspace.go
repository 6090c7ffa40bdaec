package oscal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Model directory names inside a workspace, one per top-level OSCAL type.
const (
	ModelDirCatalog             = "catalogs"
	ModelDirProfile             = "profiles"
	ModelDirComponentDefinition = "component-definitions"
)

// Workspace is a read-only view over a trestle-style OSCAL workspace:
// <root>/<model-dir>/<name>/<model>.json.
type Workspace struct {
	Root string
}

// NewWorkspace returns a Workspace rooted at root.
func NewWorkspace(root string) *Workspace {
	return &Workspace{Root: root}
}

// CatalogPath returns the JSON path for a named catalog.
func (w *Workspace) CatalogPath(name string) string {
	return filepath.Join(w.Root, ModelDirCatalog, name, "catalog.json")
}

// ProfilePath returns the JSON path for a named profile.
func (w *Workspace) ProfilePath(name string) string {
	return filepath.Join(w.Root, ModelDirProfile, name, "profile.json")
}

// ComponentDefinitionPath returns the JSON path for a named component
// definition. Names may contain path separators (product/profile layouts).
func (w *Workspace) ComponentDefinitionPath(name string) string {
	return filepath.Join(w.Root, ModelDirComponentDefinition, filepath.FromSlash(name), "component-definition.json")
}

// ProfileNames lists the profile directories present in the workspace.
func (w *Workspace) ProfileNames() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(w.Root, ModelDirProfile))
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles in %s: %w", w.Root, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ReadCatalog loads a named catalog.
func (w *Workspace) ReadCatalog(name string) (*Catalog, error) {
	return w.readCatalogFile(w.CatalogPath(name))
}

func (w *Workspace) readCatalogFile(path string) (*Catalog, error) {
	var doc struct {
		Catalog Catalog `json:"catalog"`
	}
	if err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	return &doc.Catalog, nil
}

// ReadProfile loads a named profile.
func (w *Workspace) ReadProfile(name string) (*Profile, error) {
	return w.readProfileFile(w.ProfilePath(name))
}

func (w *Workspace) readProfileFile(path string) (*Profile, error) {
	var doc struct {
		Profile Profile `json:"profile"`
	}
	if err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	return &doc.Profile, nil
}

// ReadComponentDefinition loads a named component definition.
func (w *Workspace) ReadComponentDefinition(name string) (*ComponentDefinition, error) {
	var doc struct {
		ComponentDefinition ComponentDefinition `json:"component-definition"`
	}
	if err := readJSON(w.ComponentDefinitionPath(name), &doc); err != nil {
		return nil, err
	}
	return &doc.ComponentDefinition, nil
}

// ResolveProfileCatalog resolves a control-implementation source reference
// into a catalog. A source naming a catalog is loaded directly; a source
// naming a profile is resolved by following its imports recursively and
// keeping only the controls selected by include-controls with-ids (an import
// with no with-ids includes everything). Sub-controls of excluded parents are
// promoted so label mappings survive filtering.
func (w *Workspace) ResolveProfileCatalog(source string) (*Catalog, error) {
	path := w.sourcePath(source)
	if strings.HasSuffix(path, "catalog.json") {
		return w.readCatalogFile(path)
	}

	profile, err := w.readProfileFile(path)
	if err != nil {
		return nil, err
	}

	resolved := &Catalog{Metadata: profile.Metadata}
	for _, imp := range profile.Imports {
		imported, err := w.ResolveProfileCatalog(imp.Href)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve import %s: %w", imp.Href, err)
		}

		include := make(map[string]bool)
		for _, sel := range imp.IncludeControls {
			for _, id := range sel.WithIDs {
				include[id] = true
			}
		}
		includeAll := len(include) == 0

		all := append([]Control{}, imported.Controls...)
		for _, g := range flattenGroups(imported.Groups) {
			all = append(all, g.Controls...)
		}
		resolved.Controls = append(resolved.Controls, filterControls(all, include, includeAll)...)
	}
	return resolved, nil
}

// sourcePath maps a source href to a filesystem path. Trestle writes hrefs
// as trestle://<model-dir>/<name>/<file>.json; plain relative paths are
// resolved against the workspace root.
func (w *Workspace) sourcePath(source string) string {
	s := strings.TrimPrefix(source, "trestle://")
	if filepath.IsAbs(s) {
		return s
	}
	return filepath.Join(w.Root, filepath.FromSlash(s))
}

func flattenGroups(groups []Group) []Group {
	var out []Group
	for _, g := range groups {
		out = append(out, g)
		out = append(out, flattenGroups(g.Groups)...)
	}
	return out
}

func filterControls(controls []Control, include map[string]bool, includeAll bool) []Control {
	var out []Control
	for _, c := range controls {
		children := filterControls(c.Controls, include, includeAll)
		if includeAll || include[c.ID] {
			kept := c
			kept.Controls = children
			out = append(out, kept)
		} else {
			out = append(out, children...)
		}
	}
	return out
}
