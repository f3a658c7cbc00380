package main

import (
	"testing"

	"github.com/tooxie/statista-demo-app/internal/config"
)

func TestBuildFindQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"inflation"}, "inflation"},
		{"multiple words", []string{"consumer", "price", "inflation"}, "consumer price inflation"},
		{"single quoted phrase", []string{"consumer price inflation"}, "consumer price inflation"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildFindQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildFindQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("STATSEARCH_PORT", "9001")
	t.Setenv("STATSEARCH_DB_PATH", "/tmp/override.db")
	t.Setenv("STATSEARCH_CORPUS_PATH", "/tmp/corpus.json")

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9001 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if cfg.Storage.DatabasePath != "/tmp/override.db" {
		t.Errorf("db path: got %q", cfg.Storage.DatabasePath)
	}
	if cfg.Corpus.Path != "/tmp/corpus.json" {
		t.Errorf("corpus path: got %q", cfg.Corpus.Path)
	}
}

func TestApplyEnvOverrides_InvalidPortIgnored(t *testing.T) {
	t.Setenv("STATSEARCH_PORT", "not-a-port")

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	port := cfg.Server.Port
	applyEnvOverrides(cfg)

	if cfg.Server.Port != port {
		t.Errorf("port changed on invalid value: got %d", cfg.Server.Port)
	}
}
