package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %s, want %s", cfg.APIURL, DefaultAPIURL)
	}
	if cfg.Query.Path != DefaultQueryPath {
		t.Errorf("Query.Path = %s, want %s", cfg.Query.Path, DefaultQueryPath)
	}
	if !cfg.Query.IncludePDF || !cfg.Query.IncludeDB || !cfg.Query.IncludeChat {
		t.Error("all sources should be included by default")
	}
	if cfg.Watch.Settle != 2*time.Second {
		t.Errorf("Watch.Settle = %v, want 2s", cfg.Watch.Settle)
	}
	if sel, ok := cfg.Query.Selection(); ok {
		t.Errorf("no selection should be configured by default, got %+v", sel)
	}
}

func TestLoad_EnvOverridesBaseURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCQA_API_URL", "http://backend.internal:9000/")
	t.Setenv("DOCQA_QUERY_PATH", "api/v1/query/enhanced")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.APIURL != "http://backend.internal:9000" {
		t.Errorf("trailing slash should be trimmed, got %s", cfg.APIURL)
	}
	if cfg.Query.Path != "api/v1/query/enhanced" {
		t.Errorf("unexpected query path: %s", cfg.Query.Path)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	os.WriteFile(filepath.Join(dir, ".env"), []byte("DOCQA_API_URL=http://from-dotenv:8000\n"), 0644)
	t.Cleanup(func() { os.Unsetenv("DOCQA_API_URL") })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.APIURL != "http://from-dotenv:8000" {
		t.Errorf("unexpected APIURL: %s", cfg.APIURL)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "docqa.yaml")
	content := strings.Join([]string{
		"api_url: https://qa.example.com",
		"request_timeout: 30s",
		"query:",
		"  provider: gemini",
		"  model: gemini-1.5-flash",
		"  include_chat: false",
		"watch:",
		"  platform: slack",
	}, "\n")
	os.WriteFile(path, []byte(content), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.Query.IncludeChat {
		t.Error("include_chat should be false")
	}
	if sel, ok := cfg.Query.Selection(); !ok || sel.Provider != "gemini" {
		t.Errorf("unexpected provider: %s", cfg.Query.Provider)
	}
	if cfg.Watch.Platform != "slack" {
		t.Errorf("unexpected platform: %s", cfg.Watch.Platform)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestConfig_Validate(t *testing.T) {
	base := Config{
		APIURL: DefaultAPIURL,
		Query:  QueryConfig{Path: DefaultQueryPath},
		Watch:  WatchConfig{Platform: "whatsapp", Settle: time.Second},
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad scheme", func(c *Config) { c.APIURL = "ftp://host" }},
		{"no host", func(c *Config) { c.APIURL = "http://" }},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }},
		{"bad provider", func(c *Config) { c.Query.Provider = "openai" }},
		{"empty path", func(c *Config) { c.Query.Path = " " }},
		{"bad platform", func(c *Config) { c.Watch.Platform = "irc" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("base config should be valid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_EnvSelection(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCQA_QUERY_PROVIDER", "Gemini")
	t.Setenv("DOCQA_QUERY_MODEL", "gemini-pro")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	sel, ok := cfg.Query.Selection()
	if !ok || sel.Provider != "gemini" || sel.Model != "gemini-pro" {
		t.Errorf("unexpected selection: %+v ok=%v", sel, ok)
	}
}
