package config

import (
	"os"
	"path/filepath"
	"testing"

	perrors "portfolio/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"APP_ENV", "PORT", "LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT", "LOG_FILE_PATH",
		"SETTINGS_PATH", "SITE_DIR", "PUBLIC_URL", "PIXEL_SINK",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeSettings(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDev, cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "stdout", cfg.LogOutput)
	assert.True(t, cfg.PixelSink)
	assert.Empty(t, cfg.SiteDir)
	assert.True(t, cfg.IsDev())
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	site := t.TempDir()
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SITE_DIR", site)
	t.Setenv("PUBLIC_URL", "https://kamranboroomand.ir/")
	t.Setenv("PIXEL_SINK", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, site, cfg.SiteDir)
	assert.Equal(t, "https://kamranboroomand.ir", cfg.PublicURL)
	assert.True(t, cfg.PixelSink)
}

func TestLoad_SettingsFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeSettings(t, "settings.json", `{
  "app": {"env": "prod", "port": 7000, "logging": {"level": "error", "output": "both", "file_path": "/tmp/p.log"}},
  "site": {"public_url": "https://example.com", "pixel_sink": true}
}`)
	t.Setenv("SETTINGS_PATH", path)
	t.Setenv("PORT", "7100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvProd, cfg.Env)
	assert.Equal(t, "7100", cfg.Port, "env overrides the file")
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "both", cfg.LogOutput)
	assert.Equal(t, "/tmp/p.log", cfg.LogFilePath)
	assert.Equal(t, "https://example.com", cfg.PublicURL)
	assert.True(t, cfg.PixelSink)
}

func TestLoad_SettingsDiscoveredInWorkingDir(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile("settings.dev.json", []byte(`{"app": {"port": 4173}, "site": {"pixel_sink": false}}`), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "4173", cfg.Port)
	assert.False(t, cfg.PixelSink)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	t.Setenv("SETTINGS_PATH", writeSettings(t, "bad.json", `{"app": `))
	_, err := Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("SETTINGS_PATH", filepath.Join(t.TempDir(), "absent.json"))
	_, err = Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("SITE_DIR", filepath.Join(t.TempDir(), "nope"))
	_, err = Load()
	assert.ErrorIs(t, err, perrors.ErrSiteDirMissing)
}
