// Package config loads and validates the backend configuration using Viper.
//
// Configuration is layered: built-in defaults < YAML config file < environment
// variables. Environment variables use the STUDIO_ prefix (e.g.,
// STUDIO_DATABASE_HOST overrides database.host in the YAML). This layering
// allows the same binary to run with a config.yaml in local development and
// with pure environment variables in containerized deployments.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Frontend  FrontendConfig  `mapstructure:"frontend"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Security  SecurityConfig  `mapstructure:"security"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	BaseURL      string        `mapstructure:"base_url"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// Production toggles behaviour that is unsafe to infer, such as the
	// Secure flag on the admin session cookie.
	Production bool `mapstructure:"production"`
}

// GetAddress returns the server address in host:port format.
func (c *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds MySQL connection configuration.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Params             string `mapstructure:"params"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MinIdleConnections int    `mapstructure:"min_idle_connections"`
}

// GetDSN returns the go-sql-driver/mysql connection string. parseTime is
// always on so DATETIME columns scan into time.Time.
func (c *DatabaseConfig) GetDSN() string {
	params := "parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci"
	if c.Params != "" {
		params += "&" + c.Params
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.User, c.Password, c.Host, c.Port, c.Name, params)
}

// UploadsConfig holds local uploads storage configuration.
type UploadsConfig struct {
	// BasePath is the directory uploaded files are written to.
	BasePath string `mapstructure:"base_path"`
	// PublicPath is the URL prefix under which uploads are served.
	PublicPath string `mapstructure:"public_path"`
	// MaxUploadMB is the per-file size ceiling for uploads and remote fetches.
	MaxUploadMB int `mapstructure:"max_upload_mb"`
	// AvifEncoder is the external AVIF encoder binary used when the native
	// encoder fails (empty disables the external fallback).
	AvifEncoder string `mapstructure:"avif_encoder"`
	// WebPQuality is the quality used for the WebP fallback conversion.
	WebPQuality int `mapstructure:"webp_quality"`
}

// MaxUploadBytes returns the upload ceiling in bytes.
func (c *UploadsConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// AuthConfig holds admin authentication configuration.
type AuthConfig struct {
	// CookieName is the session cookie name presented to the admin SPA.
	CookieName string `mapstructure:"cookie_name"`
	// SessionTTL is how long an issued session stays valid.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	// BcryptCost is the bcrypt work factor for password hashing.
	BcryptCost int           `mapstructure:"bcrypt_cost"`
	Captcha    CaptchaConfig `mapstructure:"captcha"`
}

// CaptchaConfig holds settings for the external CAPTCHA verification call
// made during admin login. Disabled by default.
type CaptchaConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Secret    string `mapstructure:"secret"`
	VerifyURL string `mapstructure:"verify_url"`
}

// FrontendConfig holds settings for the Next.js revalidation webhook called
// after admin mutations so statically rendered pages pick up changes.
type FrontendConfig struct {
	RevalidateURL    string        `mapstructure:"revalidate_url"`
	RevalidateSecret string        `mapstructure:"revalidate_secret"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
}

// CacheConfig holds the in-process read cache configuration.
type CacheConfig struct {
	// TTL is the staleness window for the projects/settings/team read caches.
	TTL time.Duration `mapstructure:"ttl"`
}

// SecurityConfig holds security-related configuration.
type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
	TLS  TLSConfig  `mapstructure:"tls"`
}

// CORSConfig holds CORS configuration for the admin SPA origin.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
}

// TLSConfig holds TLS/HTTPS configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Profiling ProfilingConfig `mapstructure:"profiling"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port"`
}

// ProfilingConfig holds pprof configuration.
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// JobsConfig holds background job configuration.
type JobsConfig struct {
	// SessionReaperInterval controls how often expired admin sessions are
	// swept from the database.
	SessionReaperInterval time.Duration `mapstructure:"session_reaper_interval"`
}

// bindEnvVars explicitly binds environment variables to config keys.
// This is necessary because AutomaticEnv() doesn't work well with nested
// structs during Unmarshal.
func bindEnvVars(v *viper.Viper) error {
	keys := []string{
		"server.host",
		"server.port",
		"server.base_url",
		"server.read_timeout",
		"server.write_timeout",
		"server.production",

		"database.host",
		"database.port",
		"database.name",
		"database.user",
		"database.password",
		"database.params",
		"database.max_connections",
		"database.min_idle_connections",

		"uploads.base_path",
		"uploads.public_path",
		"uploads.max_upload_mb",
		"uploads.avif_encoder",
		"uploads.webp_quality",

		"auth.cookie_name",
		"auth.session_ttl",
		"auth.bcrypt_cost",
		"auth.captcha.enabled",
		"auth.captcha.secret",
		"auth.captcha.verify_url",

		"frontend.revalidate_url",
		"frontend.revalidate_secret",
		"frontend.request_timeout",

		"cache.ttl",

		"security.cors.allowed_origins",
		"security.cors.allowed_methods",
		"security.tls.enabled",
		"security.tls.cert_file",
		"security.tls.key_file",

		"logging.level",
		"logging.format",

		"telemetry.metrics.enabled",
		"telemetry.metrics.prometheus_port",
		"telemetry.profiling.enabled",
		"telemetry.profiling.port",

		"jobs.session_reaper_interval",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env var %q: %w", key, err)
		}
	}
	return nil
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/studio-backend")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment variables.
	}

	v.SetEnvPrefix("STUDIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Expand ${VAR} references in sensitive fields so secrets can be
	// injected indirectly (e.g. password: ${DB_PASSWORD}).
	cfg.Database.Password = os.ExpandEnv(cfg.Database.Password)
	cfg.Auth.Captcha.Secret = os.ExpandEnv(cfg.Auth.Captcha.Secret)
	cfg.Frontend.RevalidateSecret = os.ExpandEnv(cfg.Frontend.RevalidateSecret)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Watch the config file so the logging level can be adjusted without a
	// restart. Connection settings still require a restart.
	v.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("config file changed", "file", e.Name)
		var next Config
		if err := v.Unmarshal(&next); err != nil {
			slog.Warn("config reload failed", "error", err)
			return
		}
		if next.Logging.Level != cfg.Logging.Level {
			slog.Info("logging level updated", "level", next.Logging.Level)
			cfg.Logging.Level = next.Logging.Level
		}
	})
	v.WatchConfig()

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.production", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.name", "studio_site")
	v.SetDefault("database.user", "studio")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_idle_connections", 5)

	v.SetDefault("uploads.base_path", "./uploads")
	v.SetDefault("uploads.public_path", "/uploads")
	v.SetDefault("uploads.max_upload_mb", 15)
	v.SetDefault("uploads.avif_encoder", "avifenc")
	v.SetDefault("uploads.webp_quality", 82)

	v.SetDefault("auth.cookie_name", "admin_session")
	v.SetDefault("auth.session_ttl", "168h") // 7 days
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.captcha.enabled", false)
	v.SetDefault("auth.captcha.verify_url", "https://www.google.com/recaptcha/api/siteverify")

	v.SetDefault("frontend.revalidate_url", "")
	v.SetDefault("frontend.request_timeout", "5s")

	v.SetDefault("cache.ttl", "60s")

	v.SetDefault("security.cors.allowed_origins", []string{})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("security.tls.enabled", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("telemetry.metrics.enabled", true)
	v.SetDefault("telemetry.metrics.prometheus_port", 9090)
	v.SetDefault("telemetry.profiling.enabled", false)
	v.SetDefault("telemetry.profiling.port", 6060)

	v.SetDefault("jobs.session_reaper_interval", "1h")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}

	if c.Uploads.BasePath == "" {
		return fmt.Errorf("uploads.base_path is required")
	}
	if c.Uploads.MaxUploadMB < 1 {
		return fmt.Errorf("uploads.max_upload_mb must be positive, got %d", c.Uploads.MaxUploadMB)
	}
	if !strings.HasPrefix(c.Uploads.PublicPath, "/") {
		return fmt.Errorf("uploads.public_path must start with '/', got %q", c.Uploads.PublicPath)
	}

	if c.Auth.CookieName == "" {
		return fmt.Errorf("auth.cookie_name is required")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}
	if c.Auth.BcryptCost < 10 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be between 10 and 31, got %d", c.Auth.BcryptCost)
	}
	if c.Auth.Captcha.Enabled {
		if c.Auth.Captcha.Secret == "" {
			return fmt.Errorf("auth.captcha.secret is required when CAPTCHA is enabled")
		}
		if c.Auth.Captcha.VerifyURL == "" {
			return fmt.Errorf("auth.captcha.verify_url is required when CAPTCHA is enabled")
		}
	}

	if c.Security.TLS.Enabled {
		if c.Security.TLS.CertFile == "" {
			return fmt.Errorf("security.tls.cert_file is required when TLS is enabled")
		}
		if c.Security.TLS.KeyFile == "" {
			return fmt.Errorf("security.tls.key_file is required when TLS is enabled")
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}
