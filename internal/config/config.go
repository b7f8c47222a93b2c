// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/titanous/json5"

	"github.com/jonathan/dropwatch/internal/schemas"
	"github.com/jonathan/dropwatch/internal/types"
)

// Environment variables read by ApplyEnv.
const (
	EnvWebhookURL  = "DISCORD_WEBHOOK"
	EnvStatePath   = "DROPWATCH_STATE"
	EnvDatabaseURL = "DATABASE_URL"
	EnvFetcher     = "DROPWATCH_FETCHER"
)

// envOverrides mirrors the settings that may come from the environment.
type envOverrides struct {
	WebhookURL  string `env:"DISCORD_WEBHOOK"`
	StatePath   string `env:"DROPWATCH_STATE"`
	DatabaseURL string `env:"DATABASE_URL"`
	Fetcher     string `env:"DROPWATCH_FETCHER"`
}

// Fetcher modes.
const (
	FetcherBrowser = "browser"
	FetcherHTTP    = "http"
)

// Config is the watch configuration. Every field is optional in the file;
// MergeWithDefaults fills what is missing.
type Config struct {
	// What to watch
	Targets              []types.Target `json:"targets,omitempty" validate:"required,min=1,dive"`
	ThematicKeywords     []string       `json:"thematic_keywords,omitempty" validate:"required,min=1,dive,required"`
	RarityKeywords       []string       `json:"rarity_keywords,omitempty" validate:"dive,required"`
	PageExclusivePhrases []string       `json:"page_exclusive_phrases,omitempty" validate:"dive,required"`
	CurrencySymbols      []string       `json:"currency_symbols,omitempty" validate:"dive,required"`

	// Thresholds
	UltraRareCeiling int  `json:"ultra_rare_ceiling,omitempty" validate:"gte=0"`       // Largest LE count reported as ultra rare
	StateCapacity    *int `json:"state_capacity,omitempty" validate:"omitempty,gte=0"` // Items kept after eviction; 0 keeps everything
	ChunkBudget      int  `json:"chunk_budget,omitempty" validate:"gte=0"`             // Max characters per alert message

	// Persistence and delivery
	StatePath   string `json:"state_path,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"`                          // Selects the PostgreSQL state backend when set
	WebhookURL  string `json:"webhook_url,omitempty" validate:"omitempty,url"` // Alerts print to stdout when empty

	// Fetching
	Fetcher               string   `json:"fetcher,omitempty" validate:"omitempty,oneof=browser http"`
	ListingTimeoutSeconds int      `json:"listing_timeout_seconds,omitempty" validate:"gte=0"`
	DetailTimeoutSeconds  int      `json:"detail_timeout_seconds,omitempty" validate:"gte=0"`
	DetailWaitMillis      int      `json:"detail_wait_ms,omitempty" validate:"gte=0"`
	FetchRatePerSecond    *float64 `json:"fetch_rate_per_second,omitempty" validate:"omitempty,gte=0"` // Page loads per second across the run; 0 disables the limit

	// Behavior
	ThematicFilteringDisabled bool `json:"thematic_filtering_disabled,omitempty"` // Title-only check always passes
	Verbose                   bool `json:"verbose,omitempty"`
}

// LoadConfig loads configuration from a JSON file. Comments and trailing
// commas are accepted (JSON5); the content must match the watch configuration schema.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var raw any
	if err := json5.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	canonical, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := schemas.ValidateConfig(canonical); err != nil {
		return nil, fmt.Errorf("config file %s does not match schema: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(canonical, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the merged configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	names := make(map[string]bool, len(c.Targets))
	for _, t := range c.Targets {
		if names[t.Name] {
			return fmt.Errorf("config error: duplicate target name %q", t.Name)
		}
		names[t.Name] = true
	}

	if c.DatabaseURL == "" && c.StatePath == "" {
		return fmt.Errorf("config error: one of 'state_path' or 'database_url' is required")
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// A false boolean counts as unset, so a true default always wins. Settings where
// zero is meaningful are pointers, so an explicit 0 survives the merge.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c
	// Same struct type on both sides, so Merge cannot fail. Set pointers are
	// kept as-is rather than merged through.
	_ = mergo.Merge(&result, defaults, mergo.WithoutDereference)
	return result
}

// ApplyEnv overrides delivery, persistence, and fetcher settings from environ
// (variable name to value). Empty values are ignored; a nil map reads nothing.
func (c *Config) ApplyEnv(environ map[string]string) error {
	if environ == nil {
		environ = map[string]string{}
	}
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.WebhookURL != "" {
		c.WebhookURL = o.WebhookURL
	}
	if o.StatePath != "" {
		c.StatePath = o.StatePath
	}
	if o.DatabaseURL != "" {
		c.DatabaseURL = o.DatabaseURL
	}
	if o.Fetcher != "" {
		c.Fetcher = o.Fetcher
	}
	return nil
}

// Capacity is the number of items kept after eviction. 0 keeps everything.
func (c *Config) Capacity() int {
	if c.StateCapacity == nil {
		return 0
	}
	return *c.StateCapacity
}

// FetchRate is the page load limit per second. 0 disables the limit.
func (c *Config) FetchRate() float64 {
	if c.FetchRatePerSecond == nil {
		return 0
	}
	return *c.FetchRatePerSecond
}

// ListingTimeout bounds one listing page fetch.
func (c *Config) ListingTimeout() time.Duration {
	return time.Duration(c.ListingTimeoutSeconds) * time.Second
}

// DetailTimeout bounds one product page fetch.
func (c *Config) DetailTimeout() time.Duration {
	return time.Duration(c.DetailTimeoutSeconds) * time.Second
}

// DetailWait is the settle time after a product page's DOM is ready.
func (c *Config) DetailWait() time.Duration {
	return time.Duration(c.DetailWaitMillis) * time.Millisecond
}
