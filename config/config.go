package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	perrors "portfolio/internal/errors"

	"github.com/joho/godotenv"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"

	defaultPort = "8080"
)

// Config holds the preview server and tooling configuration.
type Config struct {
	Env         Environment
	Port        string
	LogLevel    string
	LogFormat   string
	LogOutput   string
	LogFilePath string
	// SiteDir serves the site from disk; empty means the embedded copy.
	SiteDir string
	// PixelSink enables the development analytics endpoint.
	PixelSink bool
	PublicURL string
}

type SettingsFile struct {
	App  AppSettings  `json:"app"`
	Site SiteSettings `json:"site"`
}

type AppSettings struct {
	Env     string          `json:"env"`
	Logging LoggingSettings `json:"logging"`
	Port    int             `json:"port"`
}

type LoggingSettings struct {
	Level    string `json:"level"`
	Format   string `json:"format"`
	Output   string `json:"output"`
	FilePath string `json:"file_path"`
}

type SiteSettings struct {
	Dir       string `json:"dir"`
	PublicURL string `json:"public_url"`
	PixelSink *bool  `json:"pixel_sink"`
}

// Load reads .env, then an optional settings file, then environment
// variables, each layer overriding the previous one.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults(parseEnv(getEnv("APP_ENV", "dev")))
	settings, path, err := loadSettingsFile()
	switch {
	case err == nil:
		cfg = applySettings(cfg, *settings)
	case !errors.Is(err, os.ErrNotExist) || path != "":
		return Config{}, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	cfg = applyEnv(cfg)

	if cfg.SiteDir != "" {
		info, statErr := os.Stat(cfg.SiteDir)
		if statErr != nil || !info.IsDir() {
			return Config{}, fmt.Errorf("%w: %s", perrors.ErrSiteDirMissing, cfg.SiteDir)
		}
	}
	return cfg, nil
}

func defaults(env Environment) Config {
	return Config{
		Env:       env,
		Port:      defaultPort,
		LogLevel:  defaultLogLevel(env),
		LogFormat: defaultLogFormat(env),
		LogOutput: "stdout",
		PixelSink: env == EnvDev,
	}
}

func loadSettingsFile() (*SettingsFile, string, error) {
	if explicit := strings.TrimSpace(os.Getenv("SETTINGS_PATH")); explicit != "" {
		settings, err := readSettings(explicit)
		return settings, explicit, err
	}
	envName := strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", "dev")))
	for _, candidate := range []string{fmt.Sprintf("settings.%s.json", envName), "settings.json"} {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		settings, err := readSettings(abs)
		return settings, abs, err
	}
	return nil, "", os.ErrNotExist
}

func readSettings(path string) (*SettingsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var settings SettingsFile
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func applySettings(cfg Config, s SettingsFile) Config {
	if v := strings.TrimSpace(s.App.Env); v != "" {
		cfg = defaults(parseEnv(v))
	}
	if s.App.Port > 0 {
		cfg.Port = strconv.Itoa(s.App.Port)
	}
	cfg.LogLevel = firstNonEmpty(s.App.Logging.Level, cfg.LogLevel)
	cfg.LogFormat = firstNonEmpty(s.App.Logging.Format, cfg.LogFormat)
	cfg.LogOutput = firstNonEmpty(s.App.Logging.Output, cfg.LogOutput)
	cfg.LogFilePath = firstNonEmpty(s.App.Logging.FilePath, cfg.LogFilePath)
	cfg.SiteDir = firstNonEmpty(s.Site.Dir, cfg.SiteDir)
	cfg.PublicURL = firstNonEmpty(s.Site.PublicURL, cfg.PublicURL)
	if s.Site.PixelSink != nil {
		cfg.PixelSink = *s.Site.PixelSink
	}
	return cfg
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv("APP_ENV"); v != "" && parseEnv(v) != cfg.Env {
		fresh := defaults(parseEnv(v))
		cfg.Env = fresh.Env
		cfg.LogLevel = fresh.LogLevel
		cfg.LogFormat = fresh.LogFormat
		cfg.PixelSink = fresh.PixelSink
	}
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.LogOutput = getEnv("LOG_OUTPUT", cfg.LogOutput)
	cfg.LogFilePath = getEnv("LOG_FILE_PATH", cfg.LogFilePath)
	cfg.SiteDir = getEnv("SITE_DIR", cfg.SiteDir)
	cfg.PublicURL = strings.TrimRight(getEnv("PUBLIC_URL", cfg.PublicURL), "/")
	cfg.PixelSink = getEnvBool("PIXEL_SINK", cfg.PixelSink)
	return cfg
}

// IsDev returns true if the environment is development.
func (c Config) IsDev() bool {
	return c.Env == EnvDev
}

// IsProd returns true if the environment is production.
func (c Config) IsProd() bool {
	return c.Env == EnvProd
}

func parseEnv(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prod", "production":
		return EnvProd
	default:
		return EnvDev
	}
}

func defaultLogLevel(env Environment) string {
	if env == EnvProd {
		return "info"
	}
	return "debug"
}

func defaultLogFormat(env Environment) string {
	if env == EnvProd {
		return "json"
	}
	return "console"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
