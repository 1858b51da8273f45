// Package config loads and saves the splitpilot.yaml file: server
// settings plus the test definition table handed to the registry at
// startup. Validation of the definitions themselves happens at
// registration, so a bad weight sum fails startup, not here.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/splitpilot/splitpilot/internal/abtest"
)

const DefaultPath = "./splitpilot.yaml"

type Server struct {
	Port      int    `yaml:"port"`
	BeaconURL string `yaml:"beacon_url,omitempty"`
	DataDir   string `yaml:"data_dir,omitempty"`
}

type File struct {
	Server Server        `yaml:"server"`
	Tests  []abtest.Test `yaml:"tests"`
}

// Load reads a config file. A missing file yields a usable default so
// the server can start before any test is defined.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	f := defaults()
	if err := yaml.Unmarshal(raw, f); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return f, nil
}

// Save writes the config back, preserving test order.
func Save(path string, f *File) error {
	raw, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Test returns the definition with the given id, if present.
func (f *File) Test(id string) (abtest.Test, bool) {
	for _, t := range f.Tests {
		if t.ID == id {
			return t, true
		}
	}
	return abtest.Test{}, false
}

// Upsert replaces the definition with the same id or appends a new one.
// Returns true when an existing definition was replaced.
func (f *File) Upsert(t abtest.Test) bool {
	for i, existing := range f.Tests {
		if existing.ID == t.ID {
			f.Tests[i] = t
			return true
		}
	}
	f.Tests = append(f.Tests, t)
	return false
}

func defaults() *File {
	return &File{
		Server: Server{
			Port:    8080,
			DataDir: "./splitpilot-data",
		},
	}
}

// EnvOrDefault reads an environment variable with a fallback, the same
// convention the CLI flags use.
func EnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
