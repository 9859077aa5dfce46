package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, defaultAPIURL, cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "keyring", cfg.Session.TokenStore)
	assert.Equal(t, defaultDashboardAddr, cfg.Dashboard.Addr)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://api.example.com
  timeout: 5s
session:
  token_store: file
logging:
  level: debug
`), 0o600))

	cfg, err := load(path, envMap(map[string]string{
		"FOLIO_API_URL":         "https://staging.example.com/api",
		"FOLIO_ALLOWED_ORIGINS": "http://a.test, http://b.test,",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://staging.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "file", cfg.Session.TokenStore)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Dashboard.AllowedOrigins)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.yaml"), envMap(nil))
	assert.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"relative url", map[string]string{"FOLIO_API_URL": "/api"}},
		{"bad scheme", map[string]string{"FOLIO_API_URL": "ftp://host"}},
		{"bad timeout", map[string]string{"FOLIO_HTTP_TIMEOUT": "soon"}},
		{"bad store", map[string]string{"FOLIO_TOKEN_STORE": "cookie"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load("", envMap(tt.env))
			assert.Error(t, err)
		})
	}
}
