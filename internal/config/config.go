package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the server configuration, read from
// <data>/config/server.toml. A missing file means defaults; a file
// that fails to parse or validate is a startup error.
type Config struct {
	HTTPAddr string   `toml:"http_addr"`
	LogLevel string   `toml:"log_level"`
	Database Database `toml:"database"`
}

type Database struct {
	File string `toml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		HTTPAddr: ":8096",
		LogLevel: "info",
		Database: Database{File: "lumen.db"},
	}
}

// Load reads a TOML config file into a Config, applying defaults for
// absent fields and validating the document against the server schema.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	var generic map[string]any
	if err := toml.Unmarshal(b, &generic); err == nil {
		if err := validateServerMap(generic); err != nil {
			return cfg, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}
	return cfg, nil
}
