package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "folioadmin"
	configFileName = "config.yaml"

	defaultAPIURL        = "http://localhost:8000/api"
	defaultTimeout       = 30 * time.Second
	defaultTokenStore    = "keyring"
	defaultDashboardAddr = "127.0.0.1:4000"
)

// Config holds all configuration for the application
type Config struct {
	API       APIConfig       `yaml:"api"`
	Session   SessionConfig   `yaml:"session"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Editor    EditorConfig    `yaml:"editor"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// APIConfig holds the backend connection settings
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig selects where the bearer token is persisted
type SessionConfig struct {
	TokenStore string `yaml:"token_store"` // keyring, file, memory
	StateDir   string `yaml:"state_dir"`
}

// DashboardConfig holds the local web dashboard settings
type DashboardConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// EditorConfig carries the rich-text editor key handed to dashboard pages
type EditorConfig struct {
	APIKey string `yaml:"api_key"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
}

// Default returns the configuration used when neither file nor env override a value.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: defaultAPIURL,
			Timeout: defaultTimeout,
		},
		Session: SessionConfig{
			TokenStore: defaultTokenStore,
			StateDir:   defaultStateDir(),
		},
		Dashboard: DashboardConfig{
			Addr:           defaultDashboardAddr,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load loads configuration from .env files, the user config file and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	path := os.Getenv("FOLIO_CONFIG")
	if path == "" {
		p, err := UserConfigPath()
		if err == nil {
			path = p
		}
	}

	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := mergeFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UserConfigPath returns ~/.config/folioadmin/config.yaml
func UserConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName, configFileName), nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("FOLIO_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := getenv("FOLIO_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FOLIO_HTTP_TIMEOUT %q: %w", v, err)
		}
		cfg.API.Timeout = d
	}
	if v := getenv("FOLIO_TOKEN_STORE"); v != "" {
		cfg.Session.TokenStore = strings.ToLower(v)
	}
	if v := getenv("FOLIO_STATE_DIR"); v != "" {
		cfg.Session.StateDir = v
	}
	if v := getenv("FOLIO_DASH_ADDR"); v != "" {
		cfg.Dashboard.Addr = v
	}
	if v := getenv("FOLIO_ALLOWED_ORIGINS"); v != "" {
		cfg.Dashboard.AllowedOrigins = splitList(v)
	}
	if v := getenv("FOLIO_EDITOR_API_KEY"); v != "" {
		cfg.Editor.APIKey = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}

// Validate checks the values that would otherwise fail late at request time.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API base URL %q: must be an absolute http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("HTTP timeout must not be negative")
	}

	switch c.Session.TokenStore {
	case "keyring", "file", "memory":
	default:
		return fmt.Errorf("invalid token store %q, must be one of: keyring, file, memory", c.Session.TokenStore)
	}
	return nil
}

func defaultStateDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), configDirName)
	}
	return filepath.Join(homeDir, ".config", configDirName)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
