// Package config loads server configuration from flags, environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved server configuration
type Config struct {
	Env      string
	Version  string
	HTTPAddr string

	DatabaseURL string
	RedisURL    string

	SessionSecret     string
	SessionTTL        time.Duration
	SessionRevocation bool

	GatePaths    []string
	GateRedirect string

	RateLimitEnabled bool
	RateLimitRPM     int

	LogLevel string
}

// DefaultGatePaths are the routes that require a session
var DefaultGatePaths = []string{
	"/api/bank-accounts",
	"/api/bank-accounts/:id",
	"/api/labels",
	"/api/merchants",
	"/api/user",
	"/api/user/complete-registration",
}

// SetDefaults registers default values and environment bindings on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("version", "dev")
	v.SetDefault("http.addr", ":3000")
	v.SetDefault("session.ttl", 30*24*time.Hour)
	v.SetDefault("session.revocation", false)
	v.SetDefault("gate.paths", DefaultGatePaths)
	v.SetDefault("gate.redirect", "/auth/login")
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.rpm", 30)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("FIDENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names used by the deployment environment
	_ = v.BindEnv("env", "FIDENA_ENV", "APP_ENV")
	_ = v.BindEnv("database.url", "FIDENA_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("session.secret", "FIDENA_SESSION_SECRET", "JWT_SECRET")
	_ = v.BindEnv("redis.url", "FIDENA_REDIS_URL", "REDIS_URL")
}

// Load reads the config file, if any, and resolves the configuration
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{
		Env:               v.GetString("env"),
		Version:           v.GetString("version"),
		HTTPAddr:          v.GetString("http.addr"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		SessionSecret:     v.GetString("session.secret"),
		SessionTTL:        v.GetDuration("session.ttl"),
		SessionRevocation: v.GetBool("session.revocation"),
		GatePaths:         v.GetStringSlice("gate.paths"),
		GateRedirect:      v.GetString("gate.redirect"),
		RateLimitEnabled:  v.GetBool("ratelimit.enabled"),
		RateLimitRPM:      v.GetInt("ratelimit.rpm"),
		LogLevel:          v.GetString("log.level"),
	}

	return cfg, nil
}

// Production reports whether cookies must be marked Secure
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Validate fails on settings the server cannot start without
func (c *Config) Validate() error {
	var errs []error

	if c.SessionSecret == "" {
		errs = append(errs, errors.New("session secret is required (JWT_SECRET)"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("database url is required (DATABASE_URL)"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL))
	}
	if c.RateLimitEnabled && c.RateLimitRPM <= 0 {
		errs = append(errs, fmt.Errorf("ratelimit rpm must be positive, got %d", c.RateLimitRPM))
	}
	if !strings.HasPrefix(c.GateRedirect, "/") {
		errs = append(errs, fmt.Errorf("gate redirect must be a path, got %q", c.GateRedirect))
	}

	return errors.Join(errs...)
}
