package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvKeys maps vendor names to the environment variable consulted when the
// YAML config does not carry an API key for that vendor.
var EnvKeys = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
	"xai":       "GROK_API_KEY",
	"deepseek":  "DEEPSEEK_API_KEY",
}

// Defaults applied by [ApplyDefaults] when the config leaves them zero.
const (
	DefaultListenAddr     = ":8080"
	DefaultCallTimeout    = Duration(120 * time.Second)
	DefaultCompareTimeout = Duration(150 * time.Second)
	DefaultTurnTimeout    = Duration(120 * time.Second)
	DefaultSessionTTL     = Duration(2 * time.Hour)
	DefaultMaxTurns       = 40
)

// Load reads the YAML configuration file at path and returns a validated
// [Config] with environment fallbacks and defaults applied. It is a
// convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, resolves vendor API keys from
// the environment, applies defaults, and validates the result. Useful in
// tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ResolveEnv(cfg)
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a config entirely from environment variables and defaults,
// for running without a config file.
func FromEnv() *Config {
	cfg := &Config{}
	ResolveEnv(cfg)
	ApplyDefaults(cfg)
	return cfg
}

// ResolveEnv fills each vendor's API key from its conventional environment
// variable when the YAML did not set one. A vendor that ends up without a key
// is logged and left disabled.
func ResolveEnv(cfg *Config) {
	entries := map[string]*VendorEntry{
		"openai":    &cfg.Vendors.OpenAI,
		"anthropic": &cfg.Vendors.Anthropic,
		"gemini":    &cfg.Vendors.Gemini,
		"xai":       &cfg.Vendors.XAI,
		"deepseek":  &cfg.Vendors.DeepSeek,
	}
	for vendor, entry := range entries {
		if entry.APIKey == "" {
			entry.APIKey = os.Getenv(EnvKeys[vendor])
		}
		if entry.APIKey == "" && !entry.Disabled {
			slog.Info("vendor has no API key; its models will not be offered",
				"vendor", vendor,
				"env", EnvKeys[vendor],
			)
		}
	}
}

// ApplyDefaults fills zero-valued settings with built-in defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Defaults.CallTimeout <= 0 {
		cfg.Defaults.CallTimeout = DefaultCallTimeout
	}
	if cfg.Defaults.CompareTimeout <= 0 {
		// Never default the fan-out budget below the per-call budget.
		cfg.Defaults.CompareTimeout = max(DefaultCompareTimeout, cfg.Defaults.CallTimeout)
	}
	if cfg.Arena.TurnTimeout <= 0 {
		cfg.Arena.TurnTimeout = DefaultTurnTimeout
	}
	if cfg.Arena.SessionTTL <= 0 {
		cfg.Arena.SessionTTL = DefaultSessionTTL
	}
	if cfg.Arena.MaxTurns <= 0 {
		cfg.Arena.MaxTurns = DefaultMaxTurns
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" {
			errs = append(errs, errors.New("server.tls.cert_file is required when tls is set"))
		}
		if cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls.key_file is required when tls is set"))
		}
	}
	if cfg.Defaults.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("defaults.max_tokens %d must not be negative", cfg.Defaults.MaxTokens))
	}
	if cfg.Defaults.CompareTimeout > 0 && cfg.Defaults.CompareTimeout < cfg.Defaults.CallTimeout {
		errs = append(errs, fmt.Errorf("defaults.compare_timeout %v must be at least defaults.call_timeout %v",
			cfg.Defaults.CompareTimeout, cfg.Defaults.CallTimeout))
	}

	anyVendor := cfg.Vendors.OpenAI.Enabled() ||
		cfg.Vendors.Anthropic.Enabled() ||
		cfg.Vendors.Gemini.Enabled() ||
		cfg.Vendors.XAI.Enabled() ||
		cfg.Vendors.DeepSeek.Enabled()
	if !anyVendor {
		slog.Warn("no vendor API keys configured; the model catalog will be empty")
	}

	return errors.Join(errs...)
}

// SlogLevel converts a [LogLevel] into a [slog.Level]. Unknown values fall
// back to info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
