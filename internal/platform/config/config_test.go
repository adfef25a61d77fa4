package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyceum/internal/platform/config"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaultsWithEnvOverrides(t *testing.T) {
	t.Setenv("LYCEUM_STORAGE_DRIVER", "memory")
	t.Setenv("LYCEUM_SESSION_SECRET", secret)
	t.Setenv("LYCEUM_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := config.LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, "lyceum", cfg.ServiceName)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, config.StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 720*time.Hour, cfg.ActiveUserWindow)
	assert.Equal(t, "session_token", cfg.SessionCookieName)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lyceum.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"storage_driver: memory",
		"session_secret: " + secret,
		"http_port: \"9090\"",
		"session_ttl: 2h",
	}, "\n")), 0o600))
	t.Setenv("LYCEUM_HTTP_PORT", "7070")

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr())
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestValidateRejectsWeakSetup(t *testing.T) {
	t.Setenv("LYCEUM_SESSION_SECRET", "short")

	_, err := config.LoadFile("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_secret")
	assert.Contains(t, err.Error(), "postgres_dsn")
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{ServiceName: "lyceum", LogFormat: "json", LogLevel: "warn"}
	logger := cfg.NewLogger(&buf)

	logger.Info("dropped")
	logger.Warn("kept", "event", "level_check")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"event":"level_check"`)
	assert.Contains(t, buf.String(), `"service":"lyceum"`)
}
