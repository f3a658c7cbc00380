package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: localhost
  port: 9000
storage:
  database_path: ./data/statistics.db
corpus:
  path: ./statistics.json
embedding:
  dimensions: 8
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if cfg.Embedding.Dimensions != 8 {
		t.Errorf("dimensions: got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Storage.DatabasePath != filepath.Join(dir, "data/statistics.db") {
		t.Errorf("database path not expanded: %s", cfg.Storage.DatabasePath)
	}
	if cfg.Corpus.Path != filepath.Join(dir, "statistics.json") {
		t.Errorf("corpus path not expanded: %s", cfg.Corpus.Path)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Port != 8000 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default dimensions: got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Corpus.Path == "" {
		t.Error("default corpus path not set")
	}
	if cfg.Embedding.MaxTokens != 256 || cfg.Embedding.CacheSize != 10000 {
		t.Errorf("embedding defaults: %+v", cfg.Embedding)
	}
}
