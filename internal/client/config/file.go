package config

import (
	"github.com/dmitrijs2005/journal/internal/flagx"
	"github.com/dmitrijs2005/journal/internal/timex"
)

// FileConfig is the on-disk shape of the configuration. Empty values keep
// the defaults.
type FileConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr" yaml:"server_endpoint_addr"`
	DataDir            string         `json:"data_dir" yaml:"data_dir"`
	RequestTimeout     timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	LogLevel           string         `json:"log_level" yaml:"log_level"`
	LogFormat          string         `json:"log_format" yaml:"log_format"`
}

// parseFile loads the file named by -c/-config, if any, into cfg.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	c := &FileConfig{}
	if err := flagx.DecodeConfigFile(path, c); err != nil {
		panic(err)
	}

	if c.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = c.ServerEndpointAddr
	}
	if c.DataDir != "" {
		cfg.DataDir = c.DataDir
	}
	if c.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.LogFormat = c.LogFormat
	}
}
