// Package config loads service configuration from struct defaults, .env
// files and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Gemini      GeminiConfig      `koanf:"gemini"`
	Aladin      AladinConfig      `koanf:"aladin"`
	OpenLibrary OpenLibraryConfig `koanf:"openlibrary"`
	Cover       CoverConfig       `koanf:"cover"`
	Cache       CacheConfig       `koanf:"cache"`
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
}

type DatabaseConfig struct {
	// DSN is optional; without it history is kept in memory.
	DSN          string        `koanf:"dsn"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

type GeminiConfig struct {
	APIKey  string        `koanf:"api_key"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

type AladinConfig struct {
	APIKey     string        `koanf:"api_key"`
	BaseURL    string        `koanf:"base_url"`
	MaxResults int           `koanf:"max_results"`
	RPS        int           `koanf:"rps"`
	MaxRetries int           `koanf:"max_retries"`
	Timeout    time.Duration `koanf:"timeout"`
}

type OpenLibraryConfig struct {
	Enabled    bool   `koanf:"enabled"`
	BaseURL    string `koanf:"base_url"`
	UserAgent  string `koanf:"user_agent"`
	RPS        int    `koanf:"rps"`
	MaxRetries int    `koanf:"max_retries"`
}

type CoverConfig struct {
	// PreResolve resolves covers for every prescribed book before responding.
	PreResolve   bool          `koanf:"pre_resolve"`
	ProbeTimeout time.Duration `koanf:"probe_timeout"`
	UserAgent    string        `koanf:"user_agent"`
}

type CacheConfig struct {
	// Dir enables the on-disk search cache when set.
	Dir string        `koanf:"dir"`
	TTL time.Duration `koanf:"ttl"`
}

type SecurityConfig struct {
	VisitorSecret   string        `koanf:"visitor_secret"`
	VisitorTokenTTL time.Duration `koanf:"visitor_token_ttl"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitRPS    float64       `koanf:"rate_limit_rps"`
	RateLimitBurst  int           `koanf:"rate_limit_burst"`
	EnableHSTS      bool          `koanf:"enable_hsts"`
	// TrustProxy honours X-Forwarded-For; only set it behind a proxy
	// that overwrites the header.
	TrustProxy bool `koanf:"trust_proxy"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    60 * time.Second, // AI calls are slow
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Database: DatabaseConfig{
			QueryTimeout: 3 * time.Second,
		},
		Gemini: GeminiConfig{
			Model:   "gemini-2.5-flash",
			Timeout: 45 * time.Second,
		},
		Aladin: AladinConfig{
			BaseURL:    "http://www.aladin.co.kr/ttb/api/ItemSearch.aspx",
			MaxResults: 3,
			RPS:        5,
			MaxRetries: 2,
			Timeout:    10 * time.Second,
		},
		OpenLibrary: OpenLibraryConfig{
			Enabled:    true,
			BaseURL:    "https://openlibrary.org",
			UserAgent:  "PaperPharmacy/1.0",
			RPS:        3,
			MaxRetries: 1,
		},
		Cover: CoverConfig{
			PreResolve:   true,
			ProbeTimeout: 8 * time.Second,
			UserAgent:    "PaperPharmacy/1.0",
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		Security: SecurityConfig{
			VisitorTokenTTL: 365 * 24 * time.Hour,
			CORSOrigins:     []string{"*"},
			RateLimitRPS:    2,
			RateLimitBurst:  10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envMappings maps environment variable names (lowercased) to config
// paths. Variables not listed are ignored.
var envMappings = map[string]string{
	"app_addr":                "server.addr",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"db_dsn":                  "database.dsn",
	"db_query_timeout":        "database.query_timeout",
	"api_key":                 "gemini.api_key",
	"gemini_api_key":          "gemini.api_key",
	"gemini_model":            "gemini.model",
	"gemini_timeout":          "gemini.timeout",
	"aladin_api_key":          "aladin.api_key",
	"aladin_base_url":         "aladin.base_url",
	"aladin_max_results":      "aladin.max_results",
	"aladin_rps":              "aladin.rps",
	"openlibrary_enabled":     "openlibrary.enabled",
	"openlibrary_user_agent":  "openlibrary.user_agent",
	"cover_pre_resolve":       "cover.pre_resolve",
	"cover_probe_timeout":     "cover.probe_timeout",
	"cache_dir":               "cache.dir",
	"cache_ttl":               "cache.ttl",
	"jwt_secret":              "security.visitor_secret",
	"visitor_secret":          "security.visitor_secret",
	"visitor_token_ttl":       "security.visitor_token_ttl",
	"cors_origins":            "security.cors_origins",
	"rate_limit_rps":          "security.rate_limit_rps",
	"rate_limit_burst":        "security.rate_limit_burst",
	"enable_hsts":             "security.enable_hsts",
	"trust_proxy":             "security.trust_proxy",
	"log_level":               "logging.level",
	"log_format":              "logging.format",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// LoadEnvFiles loads .env and .env.local without overriding variables
// already present in the environment.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load builds the configuration.
func Load() (*Config, error) {
	LoadEnvFiles()

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var (
	ErrMissingVisitorSecret = errors.New("VISITOR_SECRET (or JWT_SECRET) is required")
	ErrInvalidLogFormat     = errors.New("LOG_FORMAT must be json or console")
)

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	if c.Security.VisitorSecret == "" {
		return ErrMissingVisitorSecret
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return ErrInvalidLogFormat
	}
	if c.Aladin.MaxResults <= 0 {
		c.Aladin.MaxResults = 3
	}
	if c.Aladin.RPS <= 0 {
		c.Aladin.RPS = 1
	}
	if c.OpenLibrary.RPS <= 0 {
		c.OpenLibrary.RPS = 1
	}
	return nil
}
