// Package config loads vinylstock settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	v "github.com/Gobd/vinylstock/apivalidation"
	"github.com/Gobd/vinylstock/apivalidation/is"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "CONFIG_PATH"

// DefaultPaths are searched in order when PathEnvVar is unset.
var DefaultPaths = []string{"config.yaml", "config.yml"}

// DevFrontendURL is the allowed origin outside production.
const DevFrontendURL = "http://localhost:5173"

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Environment     string        `koanf:"environment"`
	FrontendURL     string        `koanf:"frontend_url"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// RateLimit is requests per RateWindow per client IP; 0 disables it.
	RateLimit  int           `koanf:"rate_limit"`
	RateWindow time.Duration `koanf:"rate_window"`
}

type DatabaseConfig struct {
	// Driver is postgres or sqlite. Empty means inferred from URL.
	Driver          string        `koanf:"driver"`
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// CatalogConfig configures the Spotify lookup client. The client is
// disabled when ClientID is empty.
type CatalogConfig struct {
	ClientID          string        `koanf:"client_id"`
	ClientSecret      string        `koanf:"client_secret"`
	BaseURL           string        `koanf:"base_url"`
	TokenURL          string        `koanf:"token_url"`
	Market            string        `koanf:"market"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			Environment:     "development",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       300,
			RateWindow:      time.Minute,
		},
		Database: DatabaseConfig{
			URL:             "file:vinylstock.db?_pragma=foreign_keys(1)",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Catalog: CatalogConfig{
			BaseURL:           "https://api.spotify.com/v1",
			TokenURL:          "https://accounts.spotify.com/api/token",
			Market:            "US",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration and validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitList(k, "server.cors_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.applyDerived()

	if err := v.Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envKeys = map[string]string{
	"http_host":             "server.host",
	"port":                  "server.port",
	"environment":           "server.environment",
	"frontend_url":          "server.frontend_url",
	"cors_origins":          "server.cors_origins",
	"rate_limit":            "server.rate_limit",
	"rate_window":           "server.rate_window",
	"shutdown_timeout":      "server.shutdown_timeout",
	"database_url":          "database.url",
	"database_driver":       "database.driver",
	"db_max_open_conns":     "database.max_open_conns",
	"db_max_idle_conns":     "database.max_idle_conns",
	"spotify_client_id":     "catalog.client_id",
	"spotify_client_secret": "catalog.client_secret",
	"spotify_market":        "catalog.market",
	"spotify_api_url":       "catalog.base_url",
	"spotify_token_url":     "catalog.token_url",
	"log_level":             "logging.level",
	"log_format":            "logging.format",
	"log_caller":            "logging.caller",
}

// envKey maps known environment variables to config paths and drops the rest.
func envKey(name string) string {
	return envKeys[strings.ToLower(name)]
}

// splitList turns a comma separated string at path into a slice.
func splitList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var parts []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if err := k.Set(path, parts); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyDerived() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverFor(c.Database.URL)
	}
	if len(c.Server.CORSOrigins) == 0 {
		if c.IsProduction() && c.Server.FrontendURL != "" {
			c.Server.CORSOrigins = []string{c.Server.FrontendURL}
		} else {
			c.Server.CORSOrigins = []string{DevFrontendURL}
		}
	}
}

// DriverFor picks the store driver for a connection URL.
func DriverFor(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// CatalogEnabled reports whether Spotify credentials are configured.
func (c *Config) CatalogEnabled() bool {
	return c.Catalog.ClientID != ""
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&c.Server),
		v.Field(&c.Database),
		v.Field(&c.Catalog),
		v.Field(&c.Logging),
	}
}

func (s *ServerConfig) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&s.Host, v.Required, is.Host),
		v.Field(&s.Port, v.Required, v.Min(1), v.Max(65535)),
		v.Field(&s.Environment, v.In("development", "test", "production")),
		v.Field(&s.FrontendURL,
			v.When(strings.EqualFold(s.Environment, "production"), "in production", v.Required),
			is.URL),
		v.Field(&s.CORSOrigins, v.Each(is.URL)),
		v.Field(&s.ReadTimeout, v.Required),
		v.Field(&s.WriteTimeout, v.Required),
		v.Field(&s.ShutdownTimeout, v.Required),
		v.Field(&s.RateLimit, v.Min(0)),
		v.Field(&s.RateWindow, v.When(s.RateLimit > 0, "when rate limiting", v.Required)),
	}
}

func (d *DatabaseConfig) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&d.Driver, v.Required, v.In("postgres", "sqlite")),
		v.Field(&d.URL, v.Required),
		v.Field(&d.MaxOpenConns, v.Min(0)),
		v.Field(&d.MaxIdleConns, v.Min(0)),
	}
}

func (c *CatalogConfig) Rules() []*v.FieldRules {
	enabled := c.ClientID != ""
	return []*v.FieldRules{
		v.Field(&c.ClientSecret, v.When(enabled, "when client_id is set", v.Required)),
		v.Field(&c.BaseURL, v.When(enabled, "when client_id is set", v.Required), is.URL),
		v.Field(&c.TokenURL, v.When(enabled, "when client_id is set", v.Required), is.URL),
		v.Field(&c.Market, v.Length(2, 2)),
		v.Field(&c.RequestsPerSecond, v.Min(0.0)),
		v.Field(&c.Burst, v.Min(0)),
	}
}

func (l *LoggingConfig) Rules() []*v.FieldRules {
	return []*v.FieldRules{
		v.Field(&l.Level, v.In("trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled", "off")),
		v.Field(&l.Format, v.In("json", "console")),
	}
}
