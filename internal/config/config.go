// ABOUTME: Configuration loading and parsing for cfauth
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Credential sources.
const (
	SourceStatic         = "static"
	SourceBcrypt         = "bcrypt"
	SourceSecretsManager = "secretsmanager"
	SourceSQLite         = "sqlite"
)

// Defaults applied to unset fields.
const (
	DefaultValidity    = 30 * time.Minute
	DefaultCookieName  = "CFAUTH"
	DefaultRegion      = "us-east-1"
	DefaultTimeout     = 5 * time.Second
	DefaultMetricsPath = "/metrics"
	DefaultSecretKey   = "cfauth/basic"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Config represents the complete cfauth configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" toml:"server"`
	Upstream    UpstreamConfig    `yaml:"upstream" toml:"upstream"`
	Session     SessionConfig     `yaml:"session" toml:"session"`
	Credentials CredentialsConfig `yaml:"credentials" toml:"credentials"`
	Database    DatabaseConfig    `yaml:"database" toml:"database"`
	Tailscale   TailscaleConfig   `yaml:"tailscale" toml:"tailscale"`
	Logging     LoggingConfig     `yaml:"logging" toml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics" toml:"metrics"`
}

// ServerConfig holds the HTTP listener address
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
}

// UpstreamConfig holds the origin the gate proxies to
type UpstreamConfig struct {
	URL string `yaml:"url" toml:"url"`
}

// SessionConfig holds session cookie settings
type SessionConfig struct {
	SigningKey string        `yaml:"signing_key" toml:"signing_key"`
	CookieName string        `yaml:"cookie_name" toml:"cookie_name"`
	Validity   time.Duration `yaml:"-" toml:"-"`

	ValidityRaw string `yaml:"validity" toml:"validity"`
}

// CredentialsConfig selects and configures the reference credential source
type CredentialsConfig struct {
	Source string `yaml:"source" toml:"source"`

	// static and bcrypt
	User         string `yaml:"user" toml:"user"`
	Password     string `yaml:"password" toml:"password"`
	PasswordHash string `yaml:"password_hash" toml:"password_hash"`

	// secretsmanager and sqlite; for sqlite this is the store key
	SecretID string `yaml:"secret_id" toml:"secret_id"`

	// secretsmanager
	Region          string        `yaml:"region" toml:"region"`
	Endpoint        string        `yaml:"endpoint" toml:"endpoint"`
	AccessKeyID     string        `yaml:"access_key_id" toml:"access_key_id"`
	SecretAccessKey string        `yaml:"secret_access_key" toml:"secret_access_key"`
	Timeout         time.Duration `yaml:"-" toml:"-"`

	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// DatabaseConfig holds the SQLite secrets store location
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	HTTPS     bool   `yaml:"https" toml:"https"`   // serve on :443 with tailnet certificates
	Funnel    bool   `yaml:"funnel" toml:"funnel"` // expose publicly via Funnel (implies HTTPS)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data, strings.EqualFold(filepath.Ext(path), ".toml"))
	if err != nil {
		return nil, err
	}
	cfg.Database.Path = expandHome(cfg.Database.Path)
	cfg.Tailscale.StateDir = expandHome(cfg.Tailscale.StateDir)
	return cfg, nil
}

// Parse decodes configuration from raw YAML, or TOML when isTOML is set,
// then applies defaults and validates.
func Parse(data []byte, isTOML bool) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if isTOML {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// DefaultPath returns the config file location: $CFAUTH_CONFIG if set,
// then $XDG_CONFIG_HOME/cfauth/config.yaml (or ~/.config/...) if it exists,
// otherwise ./cfauth.yaml next to a Lambda bundle.
func DefaultPath() string {
	if p := os.Getenv("CFAUTH_CONFIG"); p != "" {
		return p
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		p := filepath.Join(configHome, "cfauth", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return "cfauth.yaml"
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

func applyDefaults(cfg *Config) {
	if cfg.Session.Validity == 0 {
		cfg.Session.Validity = DefaultValidity
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = DefaultCookieName
	}
	if cfg.Credentials.Source == "" {
		cfg.Credentials.Source = SourceStatic
	}
	if cfg.Credentials.Region == "" {
		cfg.Credentials.Region = DefaultRegion
	}
	if cfg.Credentials.Timeout == 0 {
		cfg.Credentials.Timeout = DefaultTimeout
	}
	if cfg.Credentials.Source == SourceSQLite && cfg.Credentials.SecretID == "" {
		cfg.Credentials.SecretID = DefaultSecretKey
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if cfg.Tailscale.Funnel {
		cfg.Tailscale.HTTPS = true
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
// Listener and upstream settings are checked separately by ValidateServer.
func (c *Config) Validate() error {
	if c.Session.SigningKey == "" {
		return fmt.Errorf("session.signing_key is required")
	}
	if len(c.Session.SigningKey) > 64 {
		return fmt.Errorf("session.signing_key must be at most 64 bytes, got %d", len(c.Session.SigningKey))
	}
	if c.Session.Validity < 0 {
		return fmt.Errorf("session.validity must be positive")
	}
	if strings.ContainsAny(c.Session.CookieName, "=;, \t\r\n\"") {
		return fmt.Errorf("session.cookie_name %q contains invalid characters", c.Session.CookieName)
	}

	switch c.Credentials.Source {
	case SourceStatic:
		// An empty value here is almost always an unset ${VAR}.
		if c.Credentials.User == "" || c.Credentials.Password == "" {
			return fmt.Errorf("credentials.user and credentials.password are required for source %q", SourceStatic)
		}
	case SourceBcrypt:
		if c.Credentials.User == "" || c.Credentials.PasswordHash == "" {
			return fmt.Errorf("credentials.user and credentials.password_hash are required for source %q", SourceBcrypt)
		}
	case SourceSecretsManager:
		if c.Credentials.SecretID == "" {
			return fmt.Errorf("credentials.secret_id is required for source %q", SourceSecretsManager)
		}
	case SourceSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for source %q", SourceSQLite)
		}
	default:
		return fmt.Errorf("credentials.source %q is not one of static, bcrypt, secretsmanager, sqlite", c.Credentials.Source)
	}
	if c.Credentials.Timeout < 0 {
		return fmt.Errorf("credentials.timeout must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}

	return nil
}

// ValidateServer checks the settings needed by the HTTP gate.
func (c *Config) ValidateServer() error {
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Upstream.URL == "" {
		return fmt.Errorf("upstream.url is required")
	}
	u, err := url.Parse(c.Upstream.URL)
	if err != nil {
		return fmt.Errorf("upstream.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("upstream.url must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("upstream.url must include a host")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Session.ValidityRaw != "" {
		cfg.Session.Validity, err = time.ParseDuration(cfg.Session.ValidityRaw)
		if err != nil {
			return fmt.Errorf("parsing session.validity %q: %w", cfg.Session.ValidityRaw, err)
		}
	}

	if cfg.Credentials.TimeoutRaw != "" {
		cfg.Credentials.Timeout, err = time.ParseDuration(cfg.Credentials.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing credentials.timeout %q: %w", cfg.Credentials.TimeoutRaw, err)
		}
	}

	return nil
}
