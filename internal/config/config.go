// Package config provides configuration management for cacsync.
// It supports a TOML configuration file, environment variables, and sensible
// defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/complytools/cacsync/internal/util"
)

// Config represents the complete cacsync configuration.
type Config struct {
	// Workspace configures the OSCAL workspace location
	Workspace WorkspaceConfig `toml:"workspace"`

	// Content configures the CaC content repository location
	Content ContentConfig `toml:"content"`

	// Sync configures default synchronization scope
	Sync SyncConfig `toml:"sync"`

	// Output configures display preferences
	Output OutputConfig `toml:"output"`
}

// WorkspaceConfig holds OSCAL workspace settings.
type WorkspaceConfig struct {
	// Root is the trestle-style workspace directory. ~ expands to the home
	// directory; relative paths resolve against the working directory.
	Root string `toml:"root"`
}

// ContentConfig holds CaC content repository settings.
type ContentConfig struct {
	// Root is the content repository checkout
	Root string `toml:"root"`
}

// SyncConfig holds default synchronization scope.
type SyncConfig struct {
	// Product is the default product to sync (e.g. rhel10)
	Product string `toml:"product"`
	// PolicyID is the default policy id for catalog and profile sync
	PolicyID string `toml:"policy_id"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never)
	Color string `toml:"color"`
	// Verbose enables verbose output
	Verbose bool `toml:"verbose"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Root: ".",
		},
		Content: ContentConfig{
			Root: "",
		},
		Output: OutputConfig{
			Color:   "auto",
			Verbose: false,
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "cacsync.toml"

// FilePath returns the path to the config file.
func FilePath() string {
	return filepath.Join(util.ConfigDir(), configFileName)
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(FilePath())
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvironment()
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern CACSYNC_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("CACSYNC_WORKSPACE_ROOT"); v != "" {
		c.Workspace.Root = v
	}
	if v := os.Getenv("CACSYNC_CONTENT_ROOT"); v != "" {
		c.Content.Root = v
	}
	if v := os.Getenv("CACSYNC_SYNC_PRODUCT"); v != "" {
		c.Sync.Product = v
	}
	if v := os.Getenv("CACSYNC_SYNC_POLICY_ID"); v != "" {
		c.Sync.PolicyID = v
	}
	if v := os.Getenv("CACSYNC_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("CACSYNC_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WorkspaceRoot returns the expanded workspace root.
func (c *Config) WorkspaceRoot(baseDir string) string {
	return util.ExpandPath(c.Workspace.Root, baseDir)
}

// ContentRoot returns the expanded content repository root.
func (c *Config) ContentRoot(baseDir string) string {
	return util.ExpandPath(c.Content.Root, baseDir)
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
