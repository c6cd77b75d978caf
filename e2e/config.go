package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_REDIS_URL points at a live Redis; the suite is skipped when empty.
	RedisURL string `envconfig:"E2E_REDIS_URL"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("E2E", &cfg)
	return cfg, err
}
