// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Bridge   BridgeConfig   `toml:"bridge"`
}

// PracticeConfig maps drill-related settings.
type PracticeConfig struct {
	Levels     *int    `toml:"levels"`
	Policy     *string `toml:"policy"`
	DwellMs    *int    `toml:"dwell-ms"`
	CooldownMs *int    `toml:"cooldown-ms"`
}

// BridgeConfig maps hardware bridge settings.
type BridgeConfig struct {
	URL     *string `toml:"url"`
	RetryMs *int    `toml:"retry-ms"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
