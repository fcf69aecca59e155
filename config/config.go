package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds dashboard configuration.
type Config struct {
	APIBaseURL     string        `yaml:"api_base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"` // zero leaves the bound to the API
	ListenAddr     string        `yaml:"listen_addr"`
	MetricsAddr    string        `yaml:"metrics_addr"`
	MaxSessions    int           `yaml:"max_sessions"`
	SessionCookie  string        `yaml:"session_cookie"`
	SecureCookie   bool          `yaml:"secure_cookie"`

	ImageTimeout     time.Duration `yaml:"image_timeout"`
	ImageCacheSize   int           `yaml:"image_cache_size"`
	ImageCacheTTL    time.Duration `yaml:"image_cache_ttl"`
	ImageMaxBytes    int           `yaml:"image_max_bytes"`
	ImageParallelism int           `yaml:"image_parallelism"`

	UserAgent string `yaml:"user_agent"`
	LogFile   string `yaml:"log_file"`
	Verbose   bool   `yaml:"verbose"`
}

// DefaultConfig returns defaults for a locally running scraping API.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:       "http://localhost:5000/api",
		RequestTimeout:   0,
		ListenAddr:       "127.0.0.1:8080",
		MetricsAddr:      "",
		MaxSessions:      128,
		SessionCookie:    "scrapedash_session",
		ImageTimeout:     10 * time.Second,
		ImageCacheSize:   256,
		ImageCacheTTL:    time.Hour,
		ImageMaxBytes:    2 << 20,
		ImageParallelism: 4,
		UserAgent:        "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		Verbose:          false,
	}
}

// LoadFile overlays the YAML document at path onto cfg. Keys absent from
// the file keep their current values.
func LoadFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays the supported environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if value, ok := EnvString("SCRAPER_API_BASE_URL"); ok {
		cfg.APIBaseURL = value
	}
	if value, ok := EnvString("DASH_LISTEN_ADDR"); ok {
		cfg.ListenAddr = value
	}
	if value, ok := EnvString("DASH_METRICS_ADDR"); ok {
		cfg.MetricsAddr = value
	}
	if value, ok := EnvString("DASH_LOG_FILE"); ok {
		cfg.LogFile = value
	}
	if value, ok, err := EnvInt("DASH_MAX_SESSIONS"); err != nil {
		return fmt.Errorf("invalid DASH_MAX_SESSIONS: %w", err)
	} else if ok {
		cfg.MaxSessions = value
	}
	if value, ok, err := EnvDuration("DASH_REQUEST_TIMEOUT"); err != nil {
		return fmt.Errorf("invalid DASH_REQUEST_TIMEOUT: %w", err)
	} else if ok {
		cfg.RequestTimeout = value
	}
	return nil
}

// EnvString returns the trimmed value of key when it is set and non-empty.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}

// EnvDuration parses key as a time.Duration ("30s", "2m").
func EnvDuration(key string) (time.Duration, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid API base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("API base URL must include a host")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("API base URL must use http or https")
	}

	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout cannot be negative")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("max sessions must be positive")
	}
	if c.SessionCookie == "" {
		return fmt.Errorf("session cookie name cannot be empty")
	}
	if c.ImageTimeout <= 0 {
		return fmt.Errorf("image timeout must be positive")
	}
	if c.ImageCacheSize <= 0 {
		return fmt.Errorf("image cache size must be positive")
	}
	if c.ImageCacheTTL < 0 {
		return fmt.Errorf("image cache ttl cannot be negative")
	}
	if c.ImageMaxBytes <= 0 {
		return fmt.Errorf("image max bytes must be positive")
	}
	if c.ImageParallelism <= 0 {
		return fmt.Errorf("image parallelism must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}
