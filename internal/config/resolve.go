package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPaths returns the search order for config files.
func DefaultConfigPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "pullwatch", "config.yaml"))
	}
	paths = append(paths, "/etc/pullwatch/config.yaml")
	return paths
}

// Resolve loads the config from the given explicit path, or searches the
// default locations, then fills in defaults: the file state backend under
// ~/.pullwatch/state, and master as the pull branch.
func Resolve(explicit string) (*Config, error) {
	path, err := findConfig(explicit)
	if err != nil {
		return nil, err
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) error {
	if cfg.Options.StateBackend == "" {
		cfg.Options.StateBackend = "file"
	}
	if cfg.Options.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home dir: %w", err)
		}
		cfg.Options.StateDir = filepath.Join(home, ".pullwatch", "state")
	}

	for i := range cfg.Pipelines {
		if cfg.Pipelines[i].Branch == "" {
			cfg.Pipelines[i].Branch = "master"
		}
	}
	return nil
}

func findConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultConfigPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched %v)", DefaultConfigPaths())
}
