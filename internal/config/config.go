// Package config loads and validates faultline configuration.
package config

import (
	"fmt"
	"time"

	"github.com/moolen/faultline/internal/subject"
)

// Source kinds.
const (
	SourceMock = "mock"
	SourceFile = "file"
)

// Verdict transports.
const (
	TransportREST      = "rest"
	TransportGenAI     = "genai"
	TransportAnthropic = "anthropic"
)

// DefaultAPIKeyEnv is read for the verdict API key unless overridden.
const DefaultAPIKeyEnv = "FAULTLINE_VERDICT_API_KEY"

// Config holds all configuration for the application
type Config struct {
	// Variant is "governance" or "market".
	Variant string `yaml:"variant"`

	// Topic is the default market topic used by the initial run.
	Topic string `yaml:"topic"`

	Server   ServerConfig   `yaml:"server"`
	Source   SourceConfig   `yaml:"source"`
	Verdict  VerdictConfig  `yaml:"verdict"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port       int  `yaml:"port"`
	MCPEnabled bool `yaml:"mcp_enabled"`
}

// SourceConfig selects where raw subjects come from.
type SourceConfig struct {
	Kind    string        `yaml:"kind"`
	File    string        `yaml:"file"`
	Latency time.Duration `yaml:"latency"`
	Market  MarketConfig  `yaml:"market"`
}

// MarketConfig tunes the market mock.
type MarketConfig struct {
	// Randomize jitters each year's value within its range.
	Randomize bool `yaml:"randomize"`
	// Seed makes randomized values repeatable. 0 seeds from the clock.
	Seed     int64   `yaml:"seed"`
	USDToINR float64 `yaml:"usd_to_inr"`
}

// VerdictConfig configures the external verdict generator.
type VerdictConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Transport   string        `yaml:"transport"`
	Endpoint    string        `yaml:"endpoint"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	CacheSize   int           `yaml:"cache_size"`
}

// AnalysisConfig tunes the orchestrator.
type AnalysisConfig struct {
	HistorySize   int           `yaml:"history_size"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// TracingConfig configures OTLP trace export.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	TLSCAPath   string `yaml:"tls_ca_path"`
	TLSInsecure bool   `yaml:"tls_insecure"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Variant: string(subject.Governance),
		Topic:   "Gold",
		Server: ServerConfig{
			Port:       8080,
			MCPEnabled: true,
		},
		Source: SourceConfig{
			Kind: SourceMock,
			Market: MarketConfig{
				Randomize: true,
				USDToINR:  89.94,
			},
		},
		Verdict: VerdictConfig{
			Enabled:   true,
			Transport: TransportREST,
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   15 * time.Second,
			CacheSize: 128,
		},
		Analysis: AnalysisConfig{
			HistorySize:   10,
			WatchDebounce: 500 * time.Millisecond,
		},
	}
}

// ParsedVariant returns the validated variant.
func (c *Config) ParsedVariant() (subject.Variant, error) {
	return subject.ParseVariant(c.Variant)
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := c.ParsedVariant(); err != nil {
		return NewConfigError(err.Error())
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return NewConfigError("server.port must be between 1 and 65535")
	}

	switch c.Source.Kind {
	case SourceMock:
	case SourceFile:
		if c.Source.File == "" {
			return NewConfigError("source.file must be set when source.kind is \"file\"")
		}
	default:
		return NewConfigError(fmt.Sprintf("unsupported source.kind %q (expected mock or file)", c.Source.Kind))
	}
	if c.Source.Latency < 0 {
		return NewConfigError("source.latency must not be negative")
	}
	if c.Source.Market.USDToINR <= 0 {
		return NewConfigError("source.market.usd_to_inr must be positive")
	}

	if c.Verdict.Enabled {
		switch c.Verdict.Transport {
		case TransportREST, TransportGenAI, TransportAnthropic:
		default:
			return NewConfigError(fmt.Sprintf("unsupported verdict.transport %q", c.Verdict.Transport))
		}
		if c.Verdict.Timeout <= 0 {
			return NewConfigError("verdict.timeout must be positive")
		}
		if c.Verdict.Concurrency < 0 {
			return NewConfigError("verdict.concurrency must not be negative")
		}
		if c.Verdict.CacheTTL < 0 {
			return NewConfigError("verdict.cache_ttl must not be negative")
		}
	}

	if c.Analysis.HistorySize < 1 {
		return NewConfigError("analysis.history_size must be at least 1")
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return NewConfigError("tracing.endpoint must be set when tracing is enabled")
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return e.message
}
