// Package config loads gateway settings from an optional YAML file, a .env
// file and the process environment, in that order of increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendHTTP   = "http"
	BackendGemini = "gemini"
)

type Config struct {
	Server struct {
		Port           string        `yaml:"port"`
		AppName        string        `yaml:"app_name"`
		Version        string        `yaml:"version"`
		Env            string        `yaml:"env"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"server"`
	Recommend struct {
		Backend     string        `yaml:"backend"` // http or gemini
		URL         string        `yaml:"url"`
		HTTPTimeout time.Duration `yaml:"http_timeout"`
	} `yaml:"recommend"`
	OMDb struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"omdb"`
	Enrich struct {
		MaxConcurrency int `yaml:"max_concurrency"`
	} `yaml:"enrich"`
	Gemini struct {
		APIKey   string `yaml:"api_key"`
		Project  string `yaml:"project"`
		Location string `yaml:"location"`
		Model    string `yaml:"model"`
	} `yaml:"gemini"`
	Redis struct {
		Addr          string        `yaml:"addr"`
		SubmissionTTL time.Duration `yaml:"submission_ttl"`
	} `yaml:"redis"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the built-in settings.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Server.AppName = "MFLIX Gateway"
	cfg.Server.Env = "dev"
	cfg.Server.RequestTimeout = 30 * time.Second
	cfg.Recommend.Backend = BackendHTTP
	cfg.Recommend.URL = "http://127.0.0.1:8000/recommend"
	cfg.Recommend.HTTPTimeout = 10 * time.Second
	cfg.OMDb.BaseURL = "https://www.omdbapi.com/"
	cfg.Gemini.Location = "us-central1"
	cfg.Gemini.Model = "gemini-2.5-flash"
	cfg.Redis.SubmissionTTL = time.Hour
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load builds the configuration. path may be empty, in which case
// CONFIG_FILE is consulted; a missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString(getenv, "PORT", &c.Server.Port)
	setString(getenv, "APP_NAME", &c.Server.AppName)
	setString(getenv, "APP_VERSION", &c.Server.Version)
	setString(getenv, "ENV", &c.Server.Env)
	setString(getenv, "RECOMMEND_BACKEND", &c.Recommend.Backend)
	setString(getenv, "RECOMMEND_API_URL", &c.Recommend.URL)
	setString(getenv, "OMDB_API_KEY", &c.OMDb.APIKey)
	setString(getenv, "OMDB_BASE_URL", &c.OMDb.BaseURL)
	setString(getenv, "GEMINI_API_KEY", &c.Gemini.APIKey)
	setString(getenv, "GOOGLE_CLOUD_PROJECT", &c.Gemini.Project)
	setString(getenv, "GOOGLE_CLOUD_LOCATION", &c.Gemini.Location)
	setString(getenv, "GEMINI_MODEL", &c.Gemini.Model)
	setString(getenv, "REDIS_ADDR", &c.Redis.Addr)
	setString(getenv, "LOG_LEVEL", &c.Log.Level)
	setString(getenv, "LOG_FORMAT", &c.Log.Format)

	for key, dst := range map[string]*time.Duration{
		"REQUEST_TIMEOUT": &c.Server.RequestTimeout,
		"HTTP_TIMEOUT":    &c.Recommend.HTTPTimeout,
		"SUBMISSION_TTL":  &c.Redis.SubmissionTTL,
	} {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}
	if v := strings.TrimSpace(getenv("ENRICH_MAX_CONCURRENCY")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ENRICH_MAX_CONCURRENCY: %w", err)
		}
		c.Enrich.MaxConcurrency = n
	}
	return nil
}

func setString(getenv func(string) string, key string, dst *string) {
	if v, ok := lookup(getenv, key); ok {
		*dst = v
	}
}

func lookup(getenv func(string) string, key string) (string, bool) {
	v := strings.TrimSpace(getenv(key))
	return v, v != ""
}

// Validate checks the settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	c.Recommend.Backend = strings.ToLower(strings.TrimSpace(c.Recommend.Backend))
	switch c.Recommend.Backend {
	case BackendHTTP:
		u, err := url.Parse(c.Recommend.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("recommend url: invalid value %q", c.Recommend.URL)
		}
	case BackendGemini:
		if c.Gemini.APIKey == "" && c.Gemini.Project == "" {
			return errors.New("gemini backend requires GEMINI_API_KEY or GOOGLE_CLOUD_PROJECT")
		}
	default:
		return fmt.Errorf("recommend backend: unsupported value %q", c.Recommend.Backend)
	}
	if c.Enrich.MaxConcurrency < 0 {
		return errors.New("enrich max_concurrency must not be negative")
	}
	return nil
}

// OMDbEnabled reports whether enrichment will call OMDb.
func (c *Config) OMDbEnabled() bool {
	return strings.TrimSpace(c.OMDb.APIKey) != ""
}
