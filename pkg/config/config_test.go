package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LANBITOU_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.BindAddress)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 86400, cfg.SessionTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
	assert.Equal(t, "default", cfg.Source("port"))
	assert.True(t, cfg.AuditEnabled)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("port: 9000\nbind_address: 127.0.0.1\ncors_allowed_origins:\n  - https://vault.example.com\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), content, 0o600))
	t.Setenv("LANBITOU_CONFIG_PATH", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.BindAddress)
	assert.Equal(t, []string{"https://vault.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "file", cfg.Source("port"))
	assert.Equal(t, "default", cfg.Source("session_token_ttl"))
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("port: 9000\n"), 0o600))
	t.Setenv("LANBITOU_CONFIG_PATH", dir)
	t.Setenv("LANBITOU_PORT", "9100")
	t.Setenv("LANBITOU_CORS_ALLOWED_ORIGINS", "http://a.example.com, http://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "environment", cfg.Source("port"))
	assert.Equal(t, []string{"http://a.example.com", "http://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("port: [oops\n"), 0o600))
	t.Setenv("LANBITOU_CONFIG_PATH", dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := newDefault()
	assert.NoError(t, cfg.Validate())

	cfg = newDefault()
	cfg.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = newDefault()
	cfg.SessionTokenTTL = -1
	assert.Error(t, cfg.Validate())

	cfg = newDefault()
	cfg.CORSAllowedOrigins = []string{"not a url"}
	assert.Error(t, cfg.Validate())
}

func TestFormatText(t *testing.T) {
	t.Setenv("LANBITOU_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	text := cfg.FormatText()
	assert.Contains(t, text, "bind_address")
	assert.Contains(t, text, "0.0.0.0")
	assert.Contains(t, text, "default")
}
