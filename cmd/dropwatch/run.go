package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/dropwatch/internal/alerts"
	"github.com/jonathan/dropwatch/internal/classify"
	"github.com/jonathan/dropwatch/internal/config"
	"github.com/jonathan/dropwatch/internal/diff"
	"github.com/jonathan/dropwatch/internal/fetch"
	"github.com/jonathan/dropwatch/internal/monitor"
	"github.com/jonathan/dropwatch/internal/observability"
	"github.com/jonathan/dropwatch/internal/state"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run one full watch pass over every target",
	Long: `Fetches every target's listing page, confirms candidates on their product pages, diffs against saved state, saves state, and delivers alerts.

Alerts go to the Discord webhook from --webhook or DISCORD_WEBHOOK, or to stdout when none is set. Flags override environment variables, which override the config file.`,
	RunE: runWatchCmd,
}

var (
	runWebhook           string
	runFetcher           string
	runFilteringDisabled bool
	runFetchRate         float64
)

func init() {
	runCommand.Flags().StringVar(&runWebhook, "webhook", "", "Discord webhook URL (defaults to DISCORD_WEBHOOK env var)")
	runCommand.Flags().StringVar(&runFetcher, "fetcher", "", "Page fetcher: browser (headless Chrome) or http")
	runCommand.Flags().BoolVar(&runFilteringDisabled, "thematic-filtering-disabled", false, "Treat every title as qualifying in the title-only check")
	runCommand.Flags().Float64Var(&runFetchRate, "fetch-rate", config.DefaultFetchRate, "Page loads per second across the run (0 disables the limit)")

	rootCmd.AddCommand(runCommand)
}

func runWatchCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := resolveConfig(cmd, processEnv())
	if err != nil {
		return err
	}

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	fetcher, closeFetcher, err := newFetcher(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFetcher()
	fetcher = fetch.NewThrottled(fetcher, cfg.FetchRate())

	extractor := newExtractor(cfg)
	runner := monitor.NewRunner(monitor.Options{
		Targets:        cfg.Targets,
		Fetcher:        fetcher,
		Store:          state.New(backend),
		Extractor:      extractor,
		Classifier:     classify.New(extractor, classify.Options{ThematicFilteringDisabled: cfg.ThematicFilteringDisabled}),
		Engine:         diff.NewEngine(diff.Options{UltraRareCeiling: cfg.UltraRareCeiling}),
		Dispatcher:     alerts.NewDispatcher(newTransport(cfg), dispatcherConfig(cfg)),
		StateCapacity:  runnerCapacity(cfg),
		ListingTimeout: cfg.ListingTimeout(),
		DetailTimeout:  cfg.DetailTimeout(),
		DetailWait:     cfg.DetailWait(),
		Verbose:        cfg.Verbose,
	})

	summary, err := runner.Run(ctx)
	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintRunSummary(summary)
	}
	return err
}

// newFetcher starts the configured page fetcher. The returned func releases it.
func newFetcher(ctx context.Context, cfg *config.Config) (fetch.Fetcher, func(), error) {
	if cfg.Fetcher == config.FetcherHTTP {
		return fetch.NewHTTPFetcher(fetch.DefaultOptions()), func() {}, nil
	}
	browser, err := fetch.NewBrowserFetcher(ctx, fetch.BrowserOptions{
		UserAgent: fetch.DefaultUserAgent,
		Verbose:   cfg.Verbose,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("browser fetcher unavailable (use --fetcher http to skip Chrome): %w", err)
	}
	return browser, browser.Close, nil
}

// newTransport picks Discord when a webhook is configured, stdout otherwise.
func newTransport(cfg *config.Config) alerts.Transport {
	if cfg.WebhookURL != "" {
		return alerts.NewDiscordTransport(cfg.WebhookURL, alerts.DefaultWebhookTimeout)
	}
	return alerts.NewWriterTransport(os.Stdout)
}

// runnerCapacity maps the configured capacity onto the runner's option, where
// zero means the default and a negative value keeps everything.
func runnerCapacity(cfg *config.Config) int {
	if capacity := cfg.Capacity(); capacity > 0 {
		return capacity
	}
	return -1
}

func dispatcherConfig(cfg *config.Config) alerts.DispatcherConfig {
	currency := ""
	if len(cfg.CurrencySymbols) > 0 {
		currency = cfg.CurrencySymbols[0]
	}
	return alerts.DispatcherConfig{
		Currency:    currency,
		ChunkBudget: cfg.ChunkBudget,
		Verbose:     cfg.Verbose,
	}
}
