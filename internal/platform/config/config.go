package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	minSessionSecretBytes = 32
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName        string        `mapstructure:"service_name"`
	HTTPPort           string        `mapstructure:"http_port"`
	StorageDriver      string        `mapstructure:"storage_driver"`
	PostgresDSN        string        `mapstructure:"postgres_dsn"`
	RedisAddr          string        `mapstructure:"redis_addr"`
	SessionSecret      string        `mapstructure:"session_secret"`
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
	SessionCookieName  string        `mapstructure:"session_cookie_name"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	ActiveUserWindow   time.Duration `mapstructure:"active_user_window"`
	LogLevel           string        `mapstructure:"log_level"`
	LogFormat          string        `mapstructure:"log_format"`
}

// Load reads LYCEUM_CONFIG (optional YAML) and LYCEUM_* environment overrides.
func Load() (Config, error) {
	return LoadFile(os.Getenv("LYCEUM_CONFIG"))
}

func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LYCEUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) && !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "lyceum")
	v.SetDefault("http_port", "8080")
	v.SetDefault("storage_driver", StoragePostgres)
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("session_secret", "")
	v.SetDefault("session_ttl", "24h")
	v.SetDefault("session_cookie_name", "session_token")
	v.SetDefault("cors_allowed_origins", "http://localhost:3000")
	v.SetDefault("active_user_window", "720h")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, errors.New("postgres_dsn is required when storage_driver=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage_driver %q", c.StorageDriver))
	}
	if len(c.SessionSecret) < minSessionSecretBytes {
		errs = append(errs, fmt.Errorf("session_secret must be at least %d bytes", minSessionSecretBytes))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session_ttl must be positive"))
	}
	if c.ActiveUserWindow <= 0 {
		errs = append(errs, errors.New("active_user_window must be positive"))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("log_format must be json or text, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Addr is the listen address derived from HTTPPort.
func (c Config) Addr() string {
	value := strings.TrimSpace(c.HTTPPort)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}

// env values arrive as one comma-separated string
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
