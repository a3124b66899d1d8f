package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "APP_ENV", "LLM_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "UPLOAD_DIR",
		"TELEGRAM_BOT_TOKEN", "LOG_LEVEL", "LOG_FILE", "MAX_UPLOAD_BYTES",
		"ANALYZE_TIMEOUT", "CONFIG_PATH",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, DefaultMaxUploadBytes, cfg.MaxUploadBytes)
	assert.Equal(t, 60*time.Second, cfg.AnalyzeTimeout)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "test-key", cfg.APIKey())
}

func TestLoad_MissingCredentialIsNotFatal(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "GEMINI_API_KEY", cfg.MissingCredential())

	t.Setenv("LLM_PROVIDER", "openai")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "OPENAI_API_KEY", cfg.MissingCredential())

	t.Setenv("OPENAI_API_KEY", "k")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.MissingCredential())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("APP_ENV", "Development")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("ANALYZE_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, "sk-test", cfg.APIKey())
	assert.True(t, cfg.IsDevelopment())
	assert.EqualValues(t, 1024, cfg.MaxUploadBytes)
	assert.Equal(t, 5*time.Second, cfg.AnalyzeTimeout)
}

func TestLoadFrom_YAMLWithEnvPrecedence(t *testing.T) {
	clearEnv(t)
	p := writeConfig(t, `port: "9000"
gemini_api_key: "from-file"
gemini_model: "gemini-1.5-pro"
analyze_timeout: 30s
log:
  level: debug
`)
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")

	cfg, err := LoadFrom(p)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "from-file", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 30*time.Second, cfg.AnalyzeTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad upload size", env: map[string]string{"MAX_UPLOAD_BYTES": "ten"}},
		{name: "negative upload size", env: map[string]string{"MAX_UPLOAD_BYTES": "-1"}},
		{name: "bad timeout", env: map[string]string{"ANALYZE_TIMEOUT": "soon"}},
		{name: "zero timeout", env: map[string]string{"ANALYZE_TIMEOUT": "0s"}},
		{name: "unknown provider", env: map[string]string{"LLM_PROVIDER": "yandex"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GEMINI_API_KEY", "k")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
