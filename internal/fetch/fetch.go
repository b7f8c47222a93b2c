// Package fetch retrieves rendered listing and product pages.
// This package is the only part of dropwatch that performs page I/O.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default per-page timeout.
const DefaultTimeout = 60 * time.Second

// DefaultUserAgent is the user agent string for page requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome Safari"

// Page holds the raw and text content of a fetched page.
type Page struct {
	URL        string
	HTML       string
	Text       string // Visible body text
	StatusCode int
}

// Fetcher retrieves a page. wait is extra settle time after the DOM is ready,
// honored by fetchers that execute scripts.
type Fetcher interface {
	Fetch(ctx context.Context, url string, wait time.Duration) (*Page, error)
}

// Error represents an error during page fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the fetch failed because a deadline passed.
func (e *Error) Timeout() bool {
	return errors.Is(e.Cause, context.DeadlineExceeded)
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// HTTPFetcher fetches pages without executing JavaScript.
type HTTPFetcher struct {
	options *Options
}

// NewHTTPFetcher creates an HTTPFetcher. A nil opts uses DefaultOptions.
func NewHTTPFetcher(opts *Options) *HTTPFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTTPFetcher{options: opts}
}

// Fetch retrieves a page and extracts its body text. wait is ignored.
func (f *HTTPFetcher) Fetch(ctx context.Context, urlStr string, _ time.Duration) (*Page, error) {
	page, err := URL(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}
	text, err := ExtractBodyText(page.HTML)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to extract body text", Cause: err}
	}
	page.Text = text
	return page, nil
}

// URL retrieves HTML content from a URL.
func URL(ctx context.Context, urlStr string, opts *Options) (*Page, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	// Validate URL
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	client := &http.Client{
		Timeout: opts.Timeout,
	}

	req, err := http.NewRequestWithContext(ctx, "GET", urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("User-Agent", opts.UserAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return &Page{
		URL:        urlStr,
		HTML:       string(bodyBytes),
		StatusCode: resp.StatusCode,
	}, nil
}

// ExtractBodyText parses HTML and returns the visible body text with script and
// style content removed and blank lines dropped.
func ExtractBodyText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, template").Remove()

	return cleanWhitespace(doc.Find("body").Text()), nil
}

// cleanWhitespace trims each line and drops empty ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
