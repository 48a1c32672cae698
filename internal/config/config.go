// Package config loads process settings from config.yaml, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds every tunable of the service. Environment variables use the
// upper-cased key, e.g. HTTP_ADDR or SUMMARY_CACHE_TTL.
type Config struct {
	HTTPAddr    string `mapstructure:"http_addr"`
	DatabaseURL string `mapstructure:"database_url"`
	DevSeed     bool   `mapstructure:"dev_seed"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	JWTSecret   string        `mapstructure:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl"`

	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	SummaryCacheTTL time.Duration `mapstructure:"summary_cache_ttl"`
	SummaryTimezone string        `mapstructure:"summary_timezone"`

	BcryptCost int `mapstructure:"bcrypt_cost"`
	// SanitizeExtraWords extends the built-in blocklist. Comma separated in the environment.
	SanitizeExtraWords []string `mapstructure:"sanitize_extra_words"`
}

var defaults = map[string]any{
	"http_addr":            ":8080",
	"database_url":         "",
	"dev_seed":             false,
	"log_level":            "info",
	"log_format":           "json",
	"jwt_secret":           "",
	"jwt_issuer":           "fintrack",
	"jwt_audience":         "",
	"jwt_ttl":              24 * time.Hour,
	"redis_addr":           "",
	"redis_password":       "",
	"redis_db":             0,
	"summary_cache_ttl":    5 * time.Minute,
	"summary_timezone":     "UTC",
	"bcrypt_cost":          bcrypt.DefaultCost,
	"sanitize_extra_words": []string{},
}

// Load reads .env (if present), then the YAML file at path, then the environment.
// An empty path looks for an optional ./config.yaml.
func Load(path string) (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.HTTPAddr) == "" {
		problems = append(problems, "HTTP_ADDR cannot be empty")
	}
	if c.DatabaseURL != "" {
		if u, err := url.Parse(c.DatabaseURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid DATABASE_URL: %v", err))
		} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			problems = append(problems, fmt.Sprintf("invalid DATABASE_URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
		}
	}
	if _, ok := ParseLevel(c.LogLevel); !ok {
		problems = append(problems, fmt.Sprintf("invalid LOG_LEVEL '%s': must be debug, info, warn or error", c.LogLevel))
	}
	if f := strings.ToLower(c.LogFormat); f != "json" && f != "text" {
		problems = append(problems, fmt.Sprintf("invalid LOG_FORMAT '%s': must be 'json' or 'text'", c.LogFormat))
	}
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	} else if len(c.JWTSecret) < 16 {
		problems = append(problems, "JWT_SECRET must be at least 16 bytes")
	}
	if c.JWTTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid JWT_TTL %v: must be positive", c.JWTTTL))
	}
	if c.RedisDB < 0 {
		problems = append(problems, fmt.Sprintf("invalid REDIS_DB %d: must not be negative", c.RedisDB))
	}
	if c.RedisAddr != "" && c.SummaryCacheTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid SUMMARY_CACHE_TTL %v: must be positive when REDIS_ADDR is set", c.SummaryCacheTTL))
	}
	if _, err := time.LoadLocation(c.SummaryTimezone); err != nil {
		problems = append(problems, fmt.Sprintf("invalid SUMMARY_TIMEZONE '%s': %v", c.SummaryTimezone, err))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		problems = append(problems, fmt.Sprintf("invalid BCRYPT_COST %d: must be between %d and %d", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Location returns the zone summaries are computed in. Call after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.SummaryTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseLevel maps LOG_LEVEL values to slog levels. Empty means info.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error", "err":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
