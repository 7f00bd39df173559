// Package config handles takeskip.toml host configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents a takeskip.toml file. All fields are optional; the
// library itself never requires a configuration file, this exists for
// hosts (such as the bundled CLI) that want stable defaults.
type Config struct {
	Execute ExecuteConfig `toml:"execute"`
	Cache   CacheConfig   `toml:"cache"`

	// Dir is the directory containing the takeskip.toml file (set at
	// load time).
	Dir string `toml:"-"`
}

// ExecuteConfig carries execution defaults.
type ExecuteConfig struct {
	// Remnant is the default remnant policy name: remove, keep, or pad.
	Remnant string `toml:"remnant"`
}

// CacheConfig configures the parse cache.
type CacheConfig struct {
	// Size bounds the in-memory LRU cache.
	Size int `toml:"size"`
	// Path enables the persistent SQLite store when non-empty.
	Path string `toml:"path"`
}

// Default returns the configuration used in the absence of a file.
func Default() *Config {
	return &Config{
		Execute: ExecuteConfig{Remnant: "remove"},
		Cache:   CacheConfig{Size: 128},
	}
}

// Load parses a takeskip.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "takeskip.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if c.Execute.Remnant == "" {
		c.Execute.Remnant = "remove"
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = 128
	}

	return &c, nil
}

// FindAndLoad walks up from startDir to find a takeskip.toml file, then
// loads and returns it. Returns the defaults if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "takeskip.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}
