package config

import "github.com/caarlos0/env/v11"

const envPrefix = "JOURNAL_"

// parseEnv overlays variables such as JOURNAL_SERVER_ADDR. Unset variables
// leave the current value in place.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		panic(err)
	}
}
