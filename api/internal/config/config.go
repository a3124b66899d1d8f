package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DefaultMaxUploadBytes int64 = 10 << 20
)

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type Config struct {
	Port string `yaml:"port"`
	Env  string `yaml:"env"`

	Provider      string `yaml:"provider"`
	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiModel   string `yaml:"gemini_model"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIModel   string `yaml:"openai_model"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	UploadDir      string        `yaml:"upload_dir"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	AnalyzeTimeout time.Duration `yaml:"analyze_timeout"`

	TelegramBotToken string `yaml:"telegram_bot_token"`

	Log LogConfig `yaml:"log"`
}

// IsDevelopment reports whether error envelopes should carry the underlying cause.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), EnvDevelopment)
}

// APIKey returns the credential of the selected provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case "openai", "gpt":
		return c.OpenAIAPIKey
	default:
		return c.GeminiAPIKey
	}
}

func defaults() *Config {
	return &Config{
		Port:           "8000",
		Env:            EnvProduction,
		Provider:       "gemini",
		GeminiModel:    "gemini-2.5-flash",
		OpenAIModel:    "gpt-4o-mini",
		UploadDir:      filepath.Join(os.TempDir(), "sheet-reader"),
		MaxUploadBytes: DefaultMaxUploadBytes,
		AnalyzeTimeout: 60 * time.Second,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Load builds the configuration from defaults, the optional CONFIG_PATH
// YAML file and the process environment, in that order of precedence.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("CONFIG_PATH"))
}

func LoadFrom(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.Env, "APP_ENV")
	setString(&cfg.Provider, "LLM_PROVIDER")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.GeminiModel, "GEMINI_MODEL")
	setString(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAIModel, "OPENAI_MODEL")
	setString(&cfg.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&cfg.UploadDir, "UPLOAD_DIR")
	setString(&cfg.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.File, "LOG_FILE")

	if v := getEnv("MAX_UPLOAD_BYTES", ""); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
		cfg.MaxUploadBytes = n
	}
	if v := getEnv("ANALYZE_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ANALYZE_TIMEOUT: %w", err)
		}
		cfg.AnalyzeTimeout = d
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return nil
}

// MissingCredential names the env var of the selected provider's API key
// when it is unset, or returns "" when the key is present. A missing key is
// not a load error: the server still answers preflight, index and health
// requests, and analysis fails with the usual envelope.
func (c *Config) MissingCredential() string {
	if strings.TrimSpace(c.APIKey()) != "" {
		return ""
	}
	switch c.Provider {
	case "openai", "gpt":
		return "OPENAI_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

func (c *Config) Validate() error {
	switch c.Provider {
	case "gemini", "openai", "gpt":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q; use gemini or openai", c.Provider)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.AnalyzeTimeout <= 0 {
		return fmt.Errorf("analyze timeout must be positive, got %s", c.AnalyzeTimeout)
	}
	if strings.TrimSpace(c.Port) == "" {
		c.Port = "8000"
	}
	return nil
}

func setString(dst *string, key string) {
	if v := getEnv(key, ""); v != "" {
		*dst = v
	}
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
