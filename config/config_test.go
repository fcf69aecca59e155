package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.APIBaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.APIBaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "non http scheme",
			mutate: func(cfg *Config) {
				cfg.APIBaseURL = "ftp://example.test/api"
			},
			wantErr: "http or https",
		},
		{
			name: "negative request timeout",
			mutate: func(cfg *Config) {
				cfg.RequestTimeout = -1 * time.Second
			},
			wantErr: "request timeout",
		},
		{
			name: "zero sessions",
			mutate: func(cfg *Config) {
				cfg.MaxSessions = 0
			},
			wantErr: "max sessions",
		},
		{
			name: "zero image timeout",
			mutate: func(cfg *Config) {
				cfg.ImageTimeout = 0
			},
			wantErr: "image timeout",
		},
		{
			name: "empty listen address",
			mutate: func(cfg *Config) {
				cfg.ListenAddr = ""
			},
			wantErr: "listen address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.RequestTimeout != 0 {
		t.Fatalf("default request timeout = %v, want none", cfg.RequestTimeout)
	}
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yml")
	doc := "api_base_url: https://scraper.example.test/api\nmax_sessions: 8\nimage_cache_ttl: 5m\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := DefaultConfig()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("load file: %v", err)
	}
	if cfg.APIBaseURL != "https://scraper.example.test/api" {
		t.Fatalf("base url = %q", cfg.APIBaseURL)
	}
	if cfg.MaxSessions != 8 {
		t.Fatalf("max sessions = %d, want 8", cfg.MaxSessions)
	}
	if cfg.ImageCacheTTL != 5*time.Minute {
		t.Fatalf("image cache ttl = %v, want 5m", cfg.ImageCacheTTL)
	}
	if cfg.ListenAddr != DefaultConfig().ListenAddr {
		t.Fatalf("listen addr should keep its default, got %q", cfg.ListenAddr)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	if err := LoadFile(cfg, filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SCRAPER_API_BASE_URL", " https://env.example.test/api ")
	t.Setenv("DASH_MAX_SESSIONS", "3")
	t.Setenv("DASH_REQUEST_TIMEOUT", "45s")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.APIBaseURL != "https://env.example.test/api" {
		t.Fatalf("base url = %q", cfg.APIBaseURL)
	}
	if cfg.MaxSessions != 3 {
		t.Fatalf("max sessions = %d, want 3", cfg.MaxSessions)
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Fatalf("request timeout = %v, want 45s", cfg.RequestTimeout)
	}
}

func TestApplyEnvRejectsBadInt(t *testing.T) {
	t.Setenv("DASH_MAX_SESSIONS", "many")
	if err := ApplyEnv(DefaultConfig()); err == nil || !strings.Contains(err.Error(), "DASH_MAX_SESSIONS") {
		t.Fatalf("expected DASH_MAX_SESSIONS error, got %v", err)
	}
}
