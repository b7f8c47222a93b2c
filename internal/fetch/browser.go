// Package fetch - browser.go renders pages in a shared headless browser.
package fetch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserOptions configures the headless browser.
type BrowserOptions struct {
	UserAgent string
	Verbose   bool
}

// BrowserFetcher renders pages with headless Chrome. One browser process serves a
// whole run; each Fetch opens and closes its own tab.
// Requires Chrome/Chromium to be installed on the system.
type BrowserFetcher struct {
	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
	verbose       bool
}

// NewBrowserFetcher starts the browser. Call Close when the run finishes.
func NewBrowserFetcher(ctx context.Context, opts BrowserOptions) (*BrowserFetcher, error) {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(userAgent),
		)...,
	)

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so launch failures surface here, not on the first page.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	if opts.Verbose {
		log.Printf("[BROWSER] Headless browser started")
	}

	return &BrowserFetcher{
		browserCtx:    browserCtx,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
		verbose:       opts.Verbose,
	}, nil
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() {
	b.cancelBrowser()
	b.cancelAlloc()
}

// Fetch navigates a new tab to url, waits for the body plus wait, and returns the
// rendered HTML and visible body text. ctx's deadline bounds the whole fetch.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string, wait time.Duration) (*Page, error) {
	if b.verbose {
		log.Printf("[BROWSER] Loading: %s", url)
	}

	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	defer cancelTab()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		tabCtx, cancelDeadline = context.WithDeadline(tabCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var html, text string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(wait),
		chromedp.OuterHTML("html", &html),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Body text is best effort; the HTML alone still carries every signal.
			_ = chromedp.Text("body", &text, chromedp.ByQuery).Do(ctx)
			return nil
		}),
	)
	if err != nil {
		if ctxErr := tabCtx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	if text == "" {
		if extracted, extractErr := ExtractBodyText(html); extractErr == nil {
			text = extracted
		}
	}

	if b.verbose {
		log.Printf("[BROWSER] Rendered HTML: %d bytes", len(html))
	}

	return &Page{URL: url, HTML: html, Text: text, StatusCode: 200}, nil
}
