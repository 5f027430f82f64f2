// Package config loads application settings from defaults, an optional
// YAML file and FIELDMAP_* environment variables, in that precedence
// order.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full application configuration.
type Config struct {
	Elevation Elevation `koanf:"elevation"`
	Map       Map       `koanf:"map"`
	Log       Log       `koanf:"log"`
}

// Elevation configures the elevation profile client.
type Elevation struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// Map configures the initial viewport.
type Map struct {
	CenterLat float64 `koanf:"center_lat"`
	CenterLng float64 `koanf:"center_lng"`
	Zoom      float64 `koanf:"zoom"`
}

// Log configures file logging. The TUI owns the terminal, so logs go to
// a file rather than stderr.
type Log struct {
	File  string `koanf:"file"`
	Level string `koanf:"level"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"elevation.base_url": "https://data.geopf.fr",
		"elevation.timeout":  10 * time.Second,
		"map.center_lat":     45.764,
		"map.center_lng":     4.8357,
		"map.zoom":           1.0,
		"log.file":           "fieldmap.log",
		"log.level":          "info",
	}
}

// Load builds the configuration. path may be empty or point to a YAML
// file; a missing file at the given path is an error, but an empty path
// is not.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// FIELDMAP_ELEVATION_API_KEY -> elevation.api_key
	err := k.Load(env.Provider("FIELDMAP_", ".", func(s string) string {
		return strings.Replace(
			strings.ToLower(strings.TrimPrefix(s, "FIELDMAP_")), "_", ".", 1)
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
