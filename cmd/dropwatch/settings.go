package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/dropwatch/internal/config"
	"github.com/jonathan/dropwatch/internal/signals"
	"github.com/jonathan/dropwatch/internal/state"
)

// resolveConfig layers settings: built-in defaults, then the config file,
// then environment variables, then explicitly set flags.
func resolveConfig(cmd *cobra.Command, environ map[string]string) (*config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	cfg = cfg.MergeWithDefaults(config.Default())
	if err := cfg.ApplyEnv(environ); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("state") {
		cfg.StatePath = statePath
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL = databaseURL
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if f := flags.Lookup("webhook"); f != nil && f.Changed {
		cfg.WebhookURL = runWebhook
	}
	if f := flags.Lookup("fetcher"); f != nil && f.Changed {
		cfg.Fetcher = runFetcher
	}
	if f := flags.Lookup("thematic-filtering-disabled"); f != nil && f.Changed {
		cfg.ThematicFilteringDisabled = runFilteringDisabled
	}
	if f := flags.Lookup("fetch-rate"); f != nil && f.Changed {
		rate := runFetchRate
		cfg.FetchRatePerSecond = &rate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Verbose && configPath != "" {
		_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", configPath)
	}
	return &cfg, nil
}

// processEnv returns the process environment as a name to value map.
func processEnv() map[string]string {
	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environ[k] = v
		}
	}
	return environ
}

// newExtractor builds the signal extractor for cfg's keyword sets.
func newExtractor(cfg *config.Config) *signals.Extractor {
	return signals.NewExtractor(signals.Keywords{
		Thematic:        cfg.ThematicKeywords,
		Rarity:          cfg.RarityKeywords,
		PageExclusive:   cfg.PageExclusivePhrases,
		CurrencySymbols: cfg.CurrencySymbols,
	})
}

// openBackend selects PostgreSQL when a database URL is configured, SQLite when
// the state path has a database extension, and the JSON state file otherwise.
// The returned func releases the backend.
func openBackend(ctx context.Context, cfg *config.Config) (state.Backend, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := state.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Verbose {
			_, _ = fmt.Fprintf(os.Stdout, "[VERBOSE] Connected to database\n")
		}
		return pg, pg.Close, nil
	}
	if state.IsSQLitePath(cfg.StatePath) {
		lite, err := state.OpenSQLite(cfg.StatePath)
		if err != nil {
			return nil, nil, err
		}
		return lite, lite.Close, nil
	}
	return state.NewFileBackend(cfg.StatePath), func() {}, nil
}
