package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/faultline/internal/subject"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	v, err := cfg.ParsedVariant()
	require.NoError(t, err)
	assert.Equal(t, subject.Governance, v)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "")
	path := writeFile(t, "faultline.yaml", `
variant: market
topic: Cobalt
server:
  port: 9090
source:
  latency: 250ms
  market:
    randomize: false
    seed: 42
verdict:
  transport: genai
  timeout: 3s
  cache_ttl: 5m
analysis:
  history_size: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "market", cfg.Variant)
	assert.Equal(t, "Cobalt", cfg.Topic)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Server.MCPEnabled, "unset keys keep their defaults")
	assert.Equal(t, SourceMock, cfg.Source.Kind)
	assert.Equal(t, 250*time.Millisecond, cfg.Source.Latency)
	assert.False(t, cfg.Source.Market.Randomize)
	assert.Equal(t, int64(42), cfg.Source.Market.Seed)
	assert.Equal(t, 89.94, cfg.Source.Market.USDToINR)
	assert.Equal(t, TransportGenAI, cfg.Verdict.Transport)
	assert.Equal(t, 3*time.Second, cfg.Verdict.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Verdict.CacheTTL)
	assert.Equal(t, 4, cfg.Analysis.HistorySize)
}

func TestLoadAPIKeyFromEnv(t *testing.T) {
	t.Setenv("CUSTOM_KEY", "from-env")
	path := writeFile(t, "faultline.yaml", `
verdict:
  api_key: from-file
  api_key_env: CUSTOM_KEY
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Verdict.APIKey)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "variant: [unterminated"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "invalid.yaml", "variant: weather\n"))
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"variant", func(c *Config) { c.Variant = "weather" }, "unknown variant"},
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"source kind", func(c *Config) { c.Source.Kind = "kafka" }, "source.kind"},
		{"file without path", func(c *Config) { c.Source.Kind = SourceFile }, "source.file"},
		{"negative latency", func(c *Config) { c.Source.Latency = -time.Second }, "source.latency"},
		{"exchange rate", func(c *Config) { c.Source.Market.USDToINR = 0 }, "usd_to_inr"},
		{"transport", func(c *Config) { c.Verdict.Transport = "carrier-pigeon" }, "verdict.transport"},
		{"timeout", func(c *Config) { c.Verdict.Timeout = 0 }, "verdict.timeout"},
		{"disabled verdict skips checks", func(c *Config) { c.Verdict.Enabled = false; c.Verdict.Timeout = 0 }, ""},
		{"history", func(c *Config) { c.Analysis.HistorySize = 0 }, "history_size"},
		{"tracing endpoint", func(c *Config) { c.Tracing.Enabled = true }, "tracing.endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
