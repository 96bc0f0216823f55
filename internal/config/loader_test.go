package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func checkConfig(t *testing.T, cfg Config) {
	t.Helper()
	if cfg.Host != "127.0.0.1" || cfg.Port != 0 {
		t.Fatalf("addr: %+v", cfg)
	}
	if len(cfg.Models) != 2 || cfg.Models[0] != "gemma-3-270m" {
		t.Fatalf("models: %v", cfg.Models)
	}
	if cfg.Aliases["GPT-X"] != "qwen-2.5-coder-3b" {
		t.Fatalf("aliases: %v", cfg.Aliases)
	}
	if cfg.StartupTimeoutSeconds != 120 {
		t.Fatalf("timeout: %d", cfg.StartupTimeoutSeconds)
	}
}

func TestLoadYAML(t *testing.T) {
	p := writeTemp(t, "c.yaml", `
host: 127.0.0.1
port: 0
models:
  - gemma-3-270m
  - qwen-2.5-coder-3b
aliases:
  GPT-X: qwen-2.5-coder-3b
startup_timeout_seconds: 120
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	checkConfig(t, cfg)
}

func TestLoadTOML(t *testing.T) {
	p := writeTemp(t, "c.toml", `
host = "127.0.0.1"
port = 0
models = ["gemma-3-270m", "qwen-2.5-coder-3b"]
startup_timeout_seconds = 120

[aliases]
"GPT-X" = "qwen-2.5-coder-3b"
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	checkConfig(t, cfg)
}

func TestLoadJSON(t *testing.T) {
	p := writeTemp(t, "c.json", `{
  "host": "127.0.0.1",
  "port": 0,
  "models": ["gemma-3-270m", "qwen-2.5-coder-3b"],
  "aliases": {"GPT-X": "qwen-2.5-coder-3b"},
  "startup_timeout_seconds": 120
}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	checkConfig(t, cfg)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	p := writeTemp(t, "c.ini", "host=127.0.0.1")
	if _, err := Load(p); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
