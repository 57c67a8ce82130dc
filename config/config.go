// Package config persists editor preferences between sessions.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the preferences the editor remembers across runs.
type Config struct {
	// DefaultPort is assigned to tracks that have no output routed yet.
	DefaultPort string `yaml:"default_port,omitempty"`
	// AutosaveFile is where edit bursts are debounce-saved.
	AutosaveFile string `yaml:"autosave_file,omitempty"`
	// LastFile is the sequence most recently saved or loaded explicitly.
	LastFile string `yaml:"last_file,omitempty"`
	// Tempo restores the BPM of the previous session.
	Tempo int `yaml:"tempo,omitempty"`
}

// Dir returns the configuration directory, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "grid-seq")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// DefaultPath is the standard config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads a config file. A missing file yields defaults, not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
