package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds environment overrides. They sit between the config file
// and CLI flags in precedence: file < env < flag.
type EnvConfig struct {
	BridgeURL string `env:"PRESSHOLD_BRIDGE_URL"`
}

// ParseEnv loads configuration overrides from environment variables.
func ParseEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
