// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds settings for both the API server and the editor clients.
type Config struct {
	// server
	Port      string `yaml:"port"`
	DataDir   string `yaml:"data_dir"`
	LogDir    string `yaml:"log_dir"`
	DebugMode bool   `yaml:"debug_mode"`
	// RateLimit is requests per minute per client IP on the API; 0 disables it.
	RateLimit int `yaml:"rate_limit"`

	// client
	APIBaseURL     string        `yaml:"api_base_url"`
	NovelID        string        `yaml:"novel_id"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AutosaveDelay  time.Duration `yaml:"autosave_delay"`
	ViewMode       string        `yaml:"view_mode"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Port:           "8080",
		DataDir:        "data",
		LogDir:         "logs",
		DebugMode:      false,
		RateLimit:      600,
		APIBaseURL:     "http://localhost:8080",
		RequestTimeout: 15 * time.Second,
		AutosaveDelay:  2 * time.Second,
		ViewMode:       "document",
	}
}

// Load builds the configuration: defaults, then the YAML profile named by NOVEL_CONFIG
// (if any), then environment variables (including a .env file when present).
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return LoadFile(os.Getenv("NOVEL_CONFIG"))
}

// LoadFile is Load with an explicit profile path; an empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Port = getEnv("PORT", c.Port)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.LogDir = getEnv("LOG_DIR", c.LogDir)
	c.DebugMode = getEnvBool("DEBUG_MODE", c.DebugMode)
	c.RateLimit = getEnvInt("NOVEL_RATE_LIMIT", c.RateLimit)
	c.APIBaseURL = getEnv("NOVEL_API_URL", c.APIBaseURL)
	c.NovelID = getEnv("NOVEL_ID", c.NovelID)
	c.RequestTimeout = getEnvDuration("NOVEL_REQUEST_TIMEOUT", c.RequestTimeout)
	c.AutosaveDelay = getEnvDuration("NOVEL_AUTOSAVE_DELAY", c.AutosaveDelay)
	c.ViewMode = getEnv("NOVEL_VIEW_MODE", c.ViewMode)
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api base url must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", c.RateLimit)
	}
	switch c.ViewMode {
	case "document", "grid":
	default:
		return fmt.Errorf("unknown view mode %q (want document or grid)", c.ViewMode)
	}
	return nil
}

// EnsureDirs creates the server's data and log directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// getEnv returns the variable or defaultValue when unset or empty.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// bare integers are seconds
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
