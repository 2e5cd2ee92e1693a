package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Version != 1 {
		t.Errorf("Expected version 1, got %d", cfg.Version)
	}
	if cfg.Logging.Format != "human" || cfg.Logging.Level != "info" {
		t.Errorf("Unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("Expected defaults for missing config, got error: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Expected default version, got %d", cfg.Version)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.Analysis.RootPackages = []string{"com.acme.shop"}
	cfg.Universe.Snapshot = "universe.yaml.zst"
	cfg.Store.Enabled = true

	if err := cfg.Save(root); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, ConfigDir, "config.json")); err != nil {
		t.Fatalf("Expected config file on disk: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if len(loaded.Analysis.RootPackages) != 1 || loaded.Analysis.RootPackages[0] != "com.acme.shop" {
		t.Errorf("Unexpected root packages %v", loaded.Analysis.RootPackages)
	}
	if loaded.Universe.Snapshot != "universe.yaml.zst" {
		t.Errorf("Unexpected snapshot path %q", loaded.Universe.Snapshot)
	}
	if !loaded.Store.Enabled {
		t.Error("Expected store to stay enabled")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(root); err == nil {
		t.Fatal("Expected error for malformed config")
	}
}

func TestValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.Analysis.RootPackages = []string{"com.acme.shop"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"wrong version", func(c *Config) { c.Version = 2 }, "version"},
		{"no roots", func(c *Config) { c.Analysis.RootPackages = nil }, "analysis.rootPackages"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Analysis.RootPackages = []string{"com.acme.shop"}
		tt.mutate(cfg)

		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", tt.name)
			continue
		}
		ce, ok := err.(*ConfigError)
		if !ok || ce.Field != tt.field {
			t.Errorf("%s: expected error on field %s, got %v", tt.name, tt.field, err)
		}
	}
}
