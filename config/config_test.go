package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, file string) *Config {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v, file)
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := load(t, "")

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.SessionRevocation)
	assert.Equal(t, DefaultGatePaths, cfg.GatePaths)
	assert.Equal(t, "/auth/login", cfg.GateRedirect)
	assert.False(t, cfg.Production())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://localhost/fidena")
	t.Setenv("APP_ENV", "production")
	t.Setenv("FIDENA_SESSION_TTL", "1h")

	cfg := load(t, "")

	assert.Equal(t, "s3cret", cfg.SessionSecret)
	assert.Equal(t, "postgres://localhost/fidena", cfg.DatabaseURL)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.Production())
	require.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fidena.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9000"
gate:
  paths: ["/api/user"]
  redirect: /login
session:
  revocation: true
`), 0o600))

	cfg := load(t, path)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, []string{"/api/user"}, cfg.GatePaths)
	assert.Equal(t, "/login", cfg.GateRedirect)
	assert.True(t, cfg.SessionRevocation)
}

func TestLoad_MissingFile(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	_, err := Load(v, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	cfg := load(t, "")
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DATABASE_URL")

	cfg.SessionSecret = "x"
	cfg.DatabaseURL = "postgres://"
	cfg.SessionTTL = 0
	assert.ErrorContains(t, cfg.Validate(), "session ttl")
}
