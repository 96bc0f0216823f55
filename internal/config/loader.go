// Package config loads daemon configuration files. The embedded library
// API takes plain options; files only matter for the standalone binary.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the standalone daemon.
// Zero values mean "unspecified" and are replaced by defaults in the CLI.
type Config struct {
	Host                  string            `json:"host" yaml:"host" toml:"host"`
	Port                  int               `json:"port" yaml:"port" toml:"port"`
	Models                []string          `json:"models" yaml:"models" toml:"models"`
	Aliases               map[string]string `json:"aliases" yaml:"aliases" toml:"aliases"`
	CacheDir              string            `json:"cache_dir" yaml:"cache_dir" toml:"cache_dir"`
	StartupTimeoutSeconds int               `json:"startup_timeout_seconds" yaml:"startup_timeout_seconds" toml:"startup_timeout_seconds"`
	LogLevel              string            `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
