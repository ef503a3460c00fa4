// Package config loads client settings from a config file, a .env file and
// DOCQA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
)

const (
	// DefaultAPIURL is used when no base URL is configured.
	DefaultAPIURL = "http://127.0.0.1:8000"

	// DefaultQueryPath is the canonical hybrid query resource.
	DefaultQueryPath = "api/v1/query/hybrid"

	envPrefix = "DOCQA"
)

// Config holds all configuration for the client.
type Config struct {
	APIURL         string        `mapstructure:"api_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Log            LogConfig     `mapstructure:"log"`
	Query          QueryConfig   `mapstructure:"query"`
	Watch          WatchConfig   `mapstructure:"watch"`
	Server         ServerConfig  `mapstructure:"server"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// QueryConfig holds the defaults applied to every question.
type QueryConfig struct {
	Path        string `mapstructure:"path"`
	IncludePDF  bool   `mapstructure:"include_pdf"`
	IncludeDB   bool   `mapstructure:"include_db"`
	IncludeChat bool   `mapstructure:"include_chat"`
	Provider    string `mapstructure:"provider"`
	Model       string `mapstructure:"model"`
}

// WatchConfig configures the drop-folder uploader.
type WatchConfig struct {
	Dir      string        `mapstructure:"dir"`
	Platform string        `mapstructure:"platform"`
	Settle   time.Duration `mapstructure:"settle"`
}

// ServerConfig configures the local web front end.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Validate checks the base URL and timeout.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api_url has no host: %q", c.APIURL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout cannot be negative")
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Query.Validate(); err != nil {
		return err
	}
	return c.Watch.Validate()
}

func (l LogConfig) Validate() error {
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", l.Format)
	}
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not a slog level", l.Level)
	}
	return nil
}

func (q QueryConfig) Validate() error {
	if strings.TrimSpace(q.Path) == "" {
		return fmt.Errorf("query.path is required")
	}
	if q.Provider != "" {
		if _, err := entities.ParseLLMProvider(q.Provider); err != nil {
			return fmt.Errorf("query.provider: %w", err)
		}
	}
	return nil
}

func (w WatchConfig) Validate() error {
	if _, err := entities.ParseChatPlatform(w.Platform); err != nil {
		return fmt.Errorf("watch.platform: %w", err)
	}
	if w.Settle <= 0 {
		return fmt.Errorf("watch.settle must be positive")
	}
	return nil
}

// Selection returns the configured model selection. ok is false when
// neither provider nor model is configured, leaving the choice to the
// backend defaults. A model without a provider uses huggingface.
func (q QueryConfig) Selection() (sel entities.ModelSelection, ok bool) {
	if strings.TrimSpace(q.Provider) == "" && strings.TrimSpace(q.Model) == "" {
		return entities.ModelSelection{}, false
	}
	p, err := entities.ParseLLMProvider(q.Provider)
	if err != nil {
		p = entities.ProviderHuggingFace
	}
	return entities.ModelSelection{Provider: p, Model: strings.TrimSpace(q.Model)}, true
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("request_timeout", 2*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("query.path", DefaultQueryPath)
	v.SetDefault("query.include_pdf", true)
	v.SetDefault("query.include_db", true)
	v.SetDefault("query.include_chat", true)
	// empty keys still register for DOCQA_QUERY_* lookups
	v.SetDefault("query.provider", "")
	v.SetDefault("query.model", "")
	v.SetDefault("watch.dir", "./inbox")
	v.SetDefault("watch.platform", string(entities.PlatformWhatsApp))
	v.SetDefault("watch.settle", 2*time.Second)
	v.SetDefault("server.addr", "127.0.0.1:3000")
}

// Load reads configuration. An empty path searches ./docqa.yaml, ./config/docqa.yaml
// and $HOME/docqa.yaml; a missing file is not an error. A .env file in the
// working directory is loaded first so its variables feed DOCQA_* lookups.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("docqa")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
