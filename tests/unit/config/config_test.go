package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/splitpilot/splitpilot/internal/abtest"
	"github.com/splitpilot/splitpilot/internal/config"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "splitpilot.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.DataDir == "" {
		t.Error("default data dir is empty")
	}
	if len(cfg.Tests) != 0 {
		t.Errorf("default config has %d tests, want 0", len(cfg.Tests))
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splitpilot.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splitpilot.yaml")

	cfg := &config.File{
		Server: config.Server{Port: 9090, DataDir: "./data"},
		Tests: []abtest.Test{
			{
				ID:     "cta_test",
				Name:   "CTA wording",
				Active: true,
				Variants: []abtest.Variant{
					{ID: "control", Name: "Buy now", Weight: 0.5},
					{ID: "variant", Name: "Get started", Weight: 0.5},
				},
				TargetMetric: "conversion",
			},
			{
				ID:     "second",
				Active: false,
				Variants: []abtest.Variant{
					{ID: "a", Weight: 0.7},
					{ID: "b", Weight: 0.3},
				},
			},
		},
	}

	if err := config.Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Server.Port != 9090 {
		t.Errorf("port %d, want 9090", loaded.Server.Port)
	}
	if len(loaded.Tests) != 2 {
		t.Fatalf("got %d tests, want 2", len(loaded.Tests))
	}
	// Order and fields survive.
	if loaded.Tests[0].ID != "cta_test" || loaded.Tests[1].ID != "second" {
		t.Errorf("test order lost: %s, %s", loaded.Tests[0].ID, loaded.Tests[1].ID)
	}
	got := loaded.Tests[0]
	if !got.Active || got.TargetMetric != "conversion" || len(got.Variants) != 2 {
		t.Errorf("test fields lost: %+v", got)
	}
	if got.Variants[1].Weight != 0.5 || got.Variants[1].Name != "Get started" {
		t.Errorf("variant fields lost: %+v", got.Variants[1])
	}
}

func TestUpsert(t *testing.T) {
	cfg := &config.File{}
	a := abtest.Test{ID: "a", Name: "first"}
	b := abtest.Test{ID: "b"}

	if replaced := cfg.Upsert(a); replaced {
		t.Error("insert reported as replace")
	}
	cfg.Upsert(b)

	a.Name = "renamed"
	if replaced := cfg.Upsert(a); !replaced {
		t.Error("replace reported as insert")
	}

	if len(cfg.Tests) != 2 {
		t.Fatalf("got %d tests, want 2", len(cfg.Tests))
	}
	// Replace keeps position.
	if cfg.Tests[0].ID != "a" || cfg.Tests[0].Name != "renamed" {
		t.Errorf("replaced test wrong: %+v", cfg.Tests[0])
	}

	if got, ok := cfg.Test("b"); !ok || got.ID != "b" {
		t.Errorf("lookup failed: (%+v, %v)", got, ok)
	}
	if _, ok := cfg.Test("missing"); ok {
		t.Error("lookup found a missing test")
	}
}

func TestConfiguredTestsFailRegistrationOnBadWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splitpilot.yaml")
	raw := `server:
  port: 8080
tests:
  - id: broken
    active: true
    variants:
      - id: a
        weight: 0.5
      - id: b
        weight: 0.2
`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load itself must not validate: %v", err)
	}

	registry := abtest.NewRegistry()
	if err := registry.RegisterAll(cfg.Tests); err == nil {
		t.Error("expected registration to reject the bad weight sum")
	}
}
