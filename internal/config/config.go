package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aforti1/clarity-cash/internal/strategy"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	TaxonomyPath string `yaml:"taxonomy_path"`
	WindowDays   int    `yaml:"window_days"`
	Source       struct {
		Path           string `yaml:"path"`
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"source"`
	Webhook struct {
		URL        string `yaml:"url"`
		MaxRetries int    `yaml:"max_retries"`
	} `yaml:"webhook"`
	Schedule struct {
		ScoreCron string `yaml:"score_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Scoring strategy.Params `yaml:"scoring"`
	Proxy   string          `yaml:"proxy"`
}

// Path returns CONFIG_PATH if set, otherwise DefaultPath.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error. Scoring
// parameters absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := &Config{Scoring: strategy.DefaultParams()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	envOverride(&cfg.TaxonomyPath, "TAXONOMY_PATH")
	envOverride(&cfg.Database.SQLitePath, "SQLITE_PATH")
	envOverride(&cfg.Source.Path, "SOURCE_PATH")
	envOverride(&cfg.Source.BaseURL, "SOURCE_URL")
	envOverride(&cfg.Source.APIKey, "SOURCE_API_KEY")
	envOverride(&cfg.Webhook.URL, "WEBHOOK_URL")
	envOverride(&cfg.Schedule.ScoreCron, "SCORE_CRON")
	envOverride(&cfg.Log.Level, "LOG_LEVEL")
	envOverride(&cfg.Proxy, "HTTPS_PROXY")
	if err := envOverrideInt(&cfg.WindowDays, "WINDOW_DAYS"); err != nil {
		return nil, err
	}
	if err := envOverrideFloat(&cfg.Scoring.Capacity.RecommendedSavingsRate, "RECOMMENDED_SAVINGS_RATE"); err != nil {
		return nil, err
	}

	// Defaults
	if cfg.WindowDays == 0 {
		cfg.WindowDays = 30
	}
	if cfg.Source.TimeoutSeconds == 0 {
		cfg.Source.TimeoutSeconds = 15
	}
	if cfg.Webhook.MaxRetries == 0 {
		cfg.Webhook.MaxRetries = 3
	}
	if cfg.Schedule.ScoreCron == "" {
		cfg.Schedule.ScoreCron = "0 0 7 * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/clarity_cash.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.WindowDays < 1 {
		return fmt.Errorf("window_days must be at least 1")
	}
	if c.Webhook.MaxRetries < 1 {
		return fmt.Errorf("webhook.max_retries must be at least 1")
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	return nil
}

// ValidateSource checks that a transaction source is configured.
func (c *Config) ValidateSource() error {
	if c.Source.Path == "" && c.Source.BaseURL == "" {
		return fmt.Errorf("source.path or source.base_url is required")
	}
	return nil
}

// Params returns the scoring parameters for strategy.NewEngine.
func (c *Config) Params() strategy.Params {
	return c.Scoring
}

func envOverride(field *string, key string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}

func envOverrideInt(field *int, key string) error {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*field = n
	}
	return nil
}

func envOverrideFloat(field *float64, key string) error {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*field = f
	}
	return nil
}
