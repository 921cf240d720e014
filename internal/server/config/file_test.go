package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_parseFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("json", func(t *testing.T) {
		path := writeTempFile(t, "cfg.json", `{
			"endpoint_addr_grpc": "www.example:9000",
			"database_dsn": "journal.db",
			"access_token_validity_duration": "1m",
			"refresh_token_validity_duration": "3m",
			"nats_url": "nats://n:4222",
			"github_client_id": "gh-id"
		}`)
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "journal.db", cfg.DatabaseDSN)
		assert.Equal(t, 1*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 3*time.Minute, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, "nats://n:4222", cfg.NATSURL)
		assert.Equal(t, "gh-id", cfg.GitHubClientID)
		// untouched keys keep defaults
		assert.Equal(t, "secretKey", cfg.SecretKey)
		assert.Equal(t, time.Hour, cfg.ResetTokenValidityDuration)
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeTempFile(t, "cfg.yml", "smtp_addr: mail:25\nreset_token_validity_duration: 30m\nlog_format: text\n")
		os.Args = []string{"testbin", "-c", path}

		cfg := &Config{}
		parseFile(cfg)

		assert.Equal(t, "mail:25", cfg.SMTPAddr)
		assert.Equal(t, 30*time.Minute, cfg.ResetTokenValidityDuration)
		assert.Equal(t, "text", cfg.LogFormat)
	})

	t.Run("no file", func(t *testing.T) {
		os.Args = []string{"testbin"}
		cfg := &Config{DatabaseDSN: "keep"}
		parseFile(cfg)
		assert.Equal(t, "keep", cfg.DatabaseDSN)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "nope.json")}
		require.Panics(t, func() { parseFile(&Config{}) })
	})

	t.Run("invalid json panics", func(t *testing.T) {
		path := writeTempFile(t, "bad.json", "{")
		os.Args = []string{"testbin", "-c", path}
		require.Panics(t, func() { parseFile(&Config{}) })
	})
}
