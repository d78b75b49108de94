// Package config provides the configuration schema and loader for the
// modelarena server.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a [time.Duration] that unmarshals from YAML strings in Go
// duration syntax, e.g. "30s" or "2m".
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

// Std returns the value as a standard [time.Duration].
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// LogLevel controls log verbosity for the modelarena server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for modelarena.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Vendors  VendorsConfig  `yaml:"vendors"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Arena    ArenaConfig    `yaml:"arena"`
}

// ServerConfig holds network and logging settings for the modelarena server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// VendorsConfig holds the per-vendor connection settings. A vendor whose API
// key resolves empty (neither configured here nor present in its environment
// variable) is simply not registered; its models disappear from the catalog
// without failing startup.
type VendorsConfig struct {
	OpenAI    VendorEntry `yaml:"openai"`
	Anthropic VendorEntry `yaml:"anthropic"`
	Gemini    VendorEntry `yaml:"gemini"`
	XAI       VendorEntry `yaml:"xai"`
	DeepSeek  VendorEntry `yaml:"deepseek"`
}

// VendorEntry is the common configuration block shared by all vendors.
type VendorEntry struct {
	// APIKey is the authentication key for the vendor's API. When empty, the
	// loader falls back to the vendor's conventional environment variable
	// (e.g. OPENAI_API_KEY).
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the vendor's default API endpoint.
	// Leave empty to use the vendor's built-in default.
	BaseURL string `yaml:"base_url"`

	// Disabled excludes the vendor from registration even when a key is
	// available.
	Disabled bool `yaml:"disabled"`
}

// Enabled reports whether this vendor should be registered.
func (v VendorEntry) Enabled() bool {
	return !v.Disabled && v.APIKey != ""
}

// DefaultsConfig holds the generation defaults applied when a request omits
// the corresponding option.
type DefaultsConfig struct {
	// MaxTokens is the fallback completion token cap. Zero means use each
	// adapter's built-in default.
	MaxTokens int `yaml:"max_tokens"`

	// CallTimeout bounds a single model call.
	CallTimeout Duration `yaml:"call_timeout"`

	// CompareTimeout bounds a whole comparison fan-out.
	CompareTimeout Duration `yaml:"compare_timeout"`
}

// ArenaConfig holds settings for multi-model conversation sessions.
type ArenaConfig struct {
	// MaxTurns caps the number of turns in a single session. Zero means the
	// built-in default.
	MaxTurns int `yaml:"max_turns"`

	// TurnTimeout bounds a single turn's model call.
	TurnTimeout Duration `yaml:"turn_timeout"`

	// SessionTTL is how long a finished or idle session is retained before
	// the manager evicts it.
	SessionTTL Duration `yaml:"session_ttl"`
}
