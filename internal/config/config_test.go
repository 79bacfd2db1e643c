package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PARDIARY_CONFIG_PATH",
		"PARDIARY_SERVER_HOST",
		"PARDIARY_SERVER_PORT",
		"PARDIARY_DB_PATH",
		"PARDIARY_LOG_LEVEL",
		"PARDIARY_AUTH_TOKEN",
		"PARDIARY_BACKEND_URL",
		"PARDIARY_BACKEND_TOKEN",
		"PARDIARY_OPENAI_API_KEY",
		"PARDIARY_OPENAI_BASE_URL",
		"PARDIARY_OPENAI_MODEL",
		"PARDIARY_NAVER_CLIENT_ID",
		"PARDIARY_NAVER_CLIENT_SECRET",
		"PARDIARY_NAVER_BASE_URL",
		"PARDIARY_GENERATION_TIMEOUT",
		"PARDIARY_PREFETCH_MAX_CONCURRENT",
		"PARDIARY_PREFETCH_RATE_LIMIT",
		"OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "pardiary.db", cfg.DB.Path)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	require.Equal(t, 60*time.Second, cfg.Generation.Timeout)
	require.Equal(t, 4, cfg.Prefetch.MaxConcurrent)
	require.Empty(t, cfg.Auth.Token)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
backend:
  base_url: https://api.example.com
  token: file-token
openai:
  api_key: sk-file
naver:
  client_id: naver-id
generation:
  timeout: 15s
prefetch:
  max_concurrent: 2
  rate_limit: 1.5
  burst: 3
`), 0o644))

	t.Setenv("PARDIARY_CONFIG_PATH", path)
	t.Setenv("PARDIARY_SERVER_PORT", "7070")
	t.Setenv("PARDIARY_BACKEND_TOKEN", "env-token")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	require.Equal(t, "env-token", cfg.Backend.Token)
	require.Equal(t, "sk-file", cfg.OpenAI.APIKey)
	require.Equal(t, "naver-id", cfg.Naver.ClientID)
	require.Equal(t, 15*time.Second, cfg.Generation.Timeout)
	require.Equal(t, 2, cfg.Prefetch.MaxConcurrent)
	require.InDelta(t, 1.5, cfg.Prefetch.RateLimit, 0.0001)
	require.Equal(t, 3, cfg.Prefetch.Burst)
	// Untouched defaults survive the file.
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoad_OpenAIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-global")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "sk-global", cfg.OpenAI.APIKey)

	t.Setenv("PARDIARY_OPENAI_API_KEY", "sk-scoped")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, "sk-scoped", cfg.OpenAI.APIKey)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"PARDIARY_SERVER_PORT":             "not-a-port",
		"PARDIARY_GENERATION_TIMEOUT":      "soon",
		"PARDIARY_PREFETCH_MAX_CONCURRENT": "many",
		"PARDIARY_PREFETCH_RATE_LIMIT":     "fast",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
			require.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PARDIARY_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
}
