package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  address: rtmp.example.com:1935\n  app: live\npublish:\n  stream_key: abc123\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Publish.ChunkSize != defaultChunkSize {
		t.Fatalf("ChunkSize = %d, want default %d", cfg.Publish.ChunkSize, defaultChunkSize)
	}
	if cfg.Publish.CompositionOffsetMillis != defaultCompositionOffsetMillis {
		t.Fatalf("CompositionOffsetMillis = %d, want default %d", cfg.Publish.CompositionOffsetMillis, defaultCompositionOffsetMillis)
	}
	if cfg.Server.App != "live" {
		t.Fatalf("App = %q, want %q", cfg.Server.App, "live")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  address: rtmp.example.com:1935\n  app: live\n  bogus_field: true\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown field, got nil")
	}
}
