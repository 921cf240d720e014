package config

import "time"

// Config holds runtime settings for the journal CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - DataDir: directory holding the local SQLite database (session mirror).
//   - RequestTimeout: deadline applied to every remote call.
//   - LogLevel / LogFormat: diagnostics written to stderr.
type Config struct {
	ServerEndpointAddr string        `env:"SERVER_ADDR"`
	DataDir            string        `env:"DATA_DIR"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT"`
	LogLevel           string        `env:"LOG_LEVEL"`
	LogFormat          string        `env:"LOG_FORMAT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DataDir = ".journal"
	c.RequestTimeout = 12 * time.Second
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if present), JOURNAL_* environment variables and
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
