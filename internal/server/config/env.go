package config

import (
	"github.com/caarlos0/env/v11"
)

const envPrefix = "JOURNAL_"

// parseEnv overlays variables such as JOURNAL_DATABASE_DSN. Unset variables
// leave the current value in place.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: envPrefix}); err != nil {
		panic(err)
	}
}
