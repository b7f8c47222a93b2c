// Package monitor runs one full watch pass: listing pages, candidate
// classification, product page confirmation, state diffing, and alert delivery.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/dropwatch/internal/alerts"
	"github.com/jonathan/dropwatch/internal/classify"
	"github.com/jonathan/dropwatch/internal/diff"
	"github.com/jonathan/dropwatch/internal/fetch"
	"github.com/jonathan/dropwatch/internal/listing"
	"github.com/jonathan/dropwatch/internal/signals"
	"github.com/jonathan/dropwatch/internal/state"
	"github.com/jonathan/dropwatch/internal/types"
)

// Default settle times after DOM ready.
const (
	DefaultListingWait = 1500 * time.Millisecond
	DefaultDetailWait  = 1200 * time.Millisecond
)

// Options wires a Runner. Every collaborator is required.
type Options struct {
	Targets    []types.Target
	Fetcher    fetch.Fetcher
	Store      *state.Store
	Extractor  *signals.Extractor
	Classifier *classify.Classifier
	Engine     *diff.Engine
	Dispatcher *alerts.Dispatcher

	StateCapacity  int // 0 uses state.DefaultCapacity; negative disables eviction
	ListingTimeout time.Duration
	DetailTimeout  time.Duration
	ListingWait    time.Duration // Used when a target sets no wait of its own
	DetailWait     time.Duration

	Now     func() time.Time
	Verbose bool
}

// Runner executes watch passes. It is not safe for concurrent use.
type Runner struct {
	opts Options
}

// NewRunner creates a Runner, filling zero durations with defaults.
func NewRunner(opts Options) *Runner {
	if opts.ListingTimeout <= 0 {
		opts.ListingTimeout = fetch.DefaultTimeout
	}
	if opts.DetailTimeout <= 0 {
		opts.DetailTimeout = fetch.DefaultTimeout
	}
	if opts.ListingWait <= 0 {
		opts.ListingWait = DefaultListingWait
	}
	if opts.DetailWait <= 0 {
		opts.DetailWait = DefaultDetailWait
	}
	if opts.StateCapacity == 0 {
		opts.StateCapacity = state.DefaultCapacity
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{opts: opts}
}

// Run performs one pass over every target. Fetch, parse, and delivery failures
// are logged and skipped. Corrupt state is replaced with an empty one; any other
// read failure aborts the run before a target is fetched, leaving stored state
// untouched. The returned error is also non-nil when the final state could not
// be saved; the summary is returned either way.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		RunID:     uuid.New(),
		StartedAt: r.opts.Now(),
	}
	runTag := summary.RunID.String()[:8]

	if err := r.opts.Store.Load(ctx); err != nil {
		var loadErr *state.LoadError
		if !errors.As(err, &loadErr) || !loadErr.Corrupt {
			log.Printf("[STATE] Failed to read state: %v; aborting run %s", err, runTag)
			summary.FinishedAt = r.opts.Now()
			return summary, fmt.Errorf("run %s: %w", summary.RunID, err)
		}
		summary.StateReset = true
		log.Printf("[STATE] Warning: %v; starting with empty state (run %s)", err, runTag)
	} else if r.opts.Verbose {
		log.Printf("[STATE] Loaded %d tracked items (run %s)", r.opts.Store.Len(), runTag)
	}

	var events []types.AlertEvent
	for _, target := range r.opts.Targets {
		ts, targetEvents := r.processTarget(ctx, target)
		summary.Targets = append(summary.Targets, ts)
		events = append(events, targetEvents...)
	}

	summary.Evicted = r.opts.Store.EvictOldest(r.opts.StateCapacity)
	summary.Tracked = r.opts.Store.Len()
	if summary.Evicted > 0 {
		log.Printf("[STATE] Evicted %d items over capacity %d", summary.Evicted, r.opts.StateCapacity)
	}

	saveErr := r.opts.Store.Save(ctx)
	if saveErr != nil {
		log.Printf("[STATE] Failed to save state: %v", saveErr)
	} else {
		summary.StateSaved = true
	}

	summary.Events = alerts.Order(events)
	summary.Dispatch = r.opts.Dispatcher.Dispatch(ctx, summary.Events)
	if len(summary.Events) > 0 {
		log.Printf("[MONITOR] Sent alerts: %d (%d/%d chunks delivered)",
			len(summary.Events), summary.Dispatch.Delivered, summary.Dispatch.Chunks)
	} else {
		log.Printf("[MONITOR] No alerts this run.")
	}

	summary.FinishedAt = r.opts.Now()
	if saveErr != nil {
		return summary, fmt.Errorf("run %s: %w", summary.RunID, saveErr)
	}
	return summary, nil
}

func (r *Runner) processTarget(ctx context.Context, target types.Target) (TargetSummary, []types.AlertEvent) {
	ts := TargetSummary{Name: target.Name}
	log.Printf("[MONITOR] Checking: %s -> %s", target.Name, target.URL)

	candidates, err := r.listCandidates(ctx, target)
	if err != nil {
		log.Printf("[MONITOR] Failed load: %s: %v", target.Name, err)
		ts.Failed = true
		ts.Error = err.Error()
		return ts, nil
	}
	ts.Candidates = len(candidates)

	now := r.opts.Now()
	rec := r.opts.Store.SetDigest(target.Name, target.URL, listing.Digest(candidates), now)
	ts.DigestChanged = rec.Changed
	if r.opts.Verbose {
		log.Printf("[MONITOR] %s: %d candidates (digest changed: %t)", target.Name, len(candidates), rec.Changed)
	}

	var events []types.AlertEvent
	for _, item := range candidates {
		res := r.processCandidate(ctx, target, item, now)
		events = append(events, res.events...)
		if res.isNew {
			ts.NewItems++
		}
		if res.fetched {
			ts.DetailFetches++
		}
		if res.skipped {
			ts.DetailSkips++
		}
	}
	return ts, events
}

// listCandidates fetches and normalizes one listing page.
func (r *Runner) listCandidates(ctx context.Context, target types.Target) ([]types.CandidateItem, error) {
	wait := r.opts.ListingWait
	if target.ListingWaitMillis > 0 {
		wait = time.Duration(target.ListingWaitMillis) * time.Millisecond
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.opts.ListingTimeout)
	defer cancel()

	page, err := r.opts.Fetcher.Fetch(fetchCtx, target.URL, wait)
	if err != nil {
		return nil, err
	}

	anchors, err := listing.ExtractAnchors(page.HTML)
	if err != nil {
		return nil, err
	}
	return listing.Normalize(anchors, target.BaseURL, r.opts.Extractor)
}

type candidateResult struct {
	events  []types.AlertEvent
	isNew   bool
	fetched bool // Product page observed and evaluated
	skipped bool // Product page wanted but unavailable
}

func (r *Runner) processCandidate(ctx context.Context, target types.Target, item types.CandidateItem, now time.Time) candidateResult {
	id := types.IdentityFor(item.URL)

	var prev *types.ItemRecord
	if existing, ok := r.opts.Store.Get(id); ok {
		prev = &existing
	}
	res := candidateResult{isNew: prev == nil}

	// Listing-level record is persisted before any product page work.
	rec := diff.Observe(prev, item, target.Name, now)
	if ev := r.opts.Engine.NewListing(prev, rec, r.opts.Classifier.TitleQualifies(item.Title)); ev != nil {
		res.events = append(res.events, *ev)
	}
	r.opts.Store.Upsert(id, rec)

	if !r.opts.Classifier.ShouldFetchDetail(item, target) {
		return res
	}

	result := r.fetchDetail(ctx, target, item)
	obs, ok := result.Observation()
	if !ok {
		log.Printf("[MONITOR] Product page skipped: %s: %s", item.URL, result.Reason())
		res.skipped = true
		return res
	}

	detailEvents, updated := r.opts.Engine.Evaluate(prev, rec, target, obs)
	r.opts.Store.Upsert(id, updated)
	res.events = append(res.events, detailEvents...)
	res.fetched = true
	return res
}

// fetchDetail loads a product page and extracts its signals. Any fetch failure
// becomes a Skipped result.
func (r *Runner) fetchDetail(ctx context.Context, target types.Target, item types.CandidateItem) diff.DetailResult {
	fetchCtx, cancel := context.WithTimeout(ctx, r.opts.DetailTimeout)
	defer cancel()

	page, err := r.opts.Fetcher.Fetch(fetchCtx, item.URL, r.opts.DetailWait)
	if err != nil {
		var fetchErr *fetch.Error
		if errors.As(err, &fetchErr) && fetchErr.Timeout() {
			return diff.Skipped("timeout")
		}
		return diff.Skipped(err.Error())
	}
	if page == nil {
		return diff.Skipped("empty page")
	}
	return diff.Ok(r.observe(target, item, page))
}

// observe derives detail-level signals: stock and exclusivity from the page
// markup, price and LE count from visible text with listing/title fallbacks.
func (r *Runner) observe(target types.Target, item types.CandidateItem, page *fetch.Page) diff.Observation {
	obs := diff.Observation{
		Thematic: r.opts.Classifier.Thematic(item.Title),
		Stock:    signals.StockStatus(page.HTML),
	}

	obs.PriceText = r.opts.Extractor.ExtractPriceText(page.Text)
	if obs.PriceText == nil && item.ListingPriceText != nil {
		obs.PriceText = r.opts.Extractor.ExtractPriceText(*item.ListingPriceText)
	}
	obs.Price = r.opts.Extractor.ParsePrice(obs.PriceText)

	obs.LECount = signals.ExtractLECount(page.Text)
	if obs.LECount == nil {
		obs.LECount = signals.ExtractLECount(item.Title)
	}

	pageExclusive := false
	if target.PageLevelSignals {
		pageExclusive = r.opts.Extractor.PageExclusive(page.HTML)
		obs.Exclusive = &pageExclusive
	}
	obs.Qualifies = r.opts.Classifier.Qualifies(item.Title, target, pageExclusive)
	return obs
}
