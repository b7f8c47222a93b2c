package listing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/dropwatch/internal/signals"
	"github.com/jonathan/dropwatch/internal/types"
)

// MinTitleLength is the shortest anchor text treated as a product card title.
// Shorter anchors are icons, pagination, and navigation.
const MinTitleLength = 3

var productPathMarkers = []string{"/products/", "/product/", "/p/", "/store/"}

var listingPathMarkers = []string{"/search", "/promotion", "/collections", "/category"}

// PriceFinder locates price text in free text.
type PriceFinder interface {
	ExtractPriceText(text string) *string
}

// LooksLikeProductURL reports whether a URL path points at a product page rather
// than a listing, search, or category page.
func LooksLikeProductURL(u string) bool {
	lower := strings.ToLower(u)
	matched := false
	for _, m := range productPathMarkers {
		if strings.Contains(lower, m) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, m := range listingPathMarkers {
		if strings.Contains(lower, m) {
			return false
		}
	}
	return true
}

// CanonicalURL resolves href against base and strips the query string and fragment.
func CanonicalURL(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	abs := base.ResolveReference(ref)
	abs.RawQuery = ""
	abs.ForceQuery = false
	abs.Fragment = ""
	abs.RawFragment = ""
	return abs.String(), nil
}

// Normalize converts raw anchors into candidates. Output preserves encounter order
// and holds each canonical URL once; the first occurrence wins.
func Normalize(anchors []types.RawAnchor, baseURL string, prices PriceFinder) ([]types.CandidateItem, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &ExtractionError{
			Message: "failed to parse base URL",
			Cause:   err,
		}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &ExtractionError{
			Message: fmt.Sprintf("invalid base URL: %s (must have scheme and host)", baseURL),
		}
	}

	seen := make(map[string]bool)
	items := make([]types.CandidateItem, 0)
	for _, a := range anchors {
		canonical, err := CanonicalURL(base, a.Href)
		if err != nil {
			// Skip malformed URLs
			continue
		}
		if !LooksLikeProductURL(canonical) {
			continue
		}

		title := collapseSpace(a.Text)
		if utf8.RuneCountInString(title) < MinTitleLength {
			continue
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true

		var priceText *string
		if prices != nil && a.NearbyText != "" {
			priceText = prices.ExtractPriceText(a.NearbyText)
		}
		items = append(items, types.CandidateItem{
			Title:            title,
			URL:              canonical,
			ListingPriceText: priceText,
		})
	}
	return items, nil
}

// Digest hashes the sorted set of "title|url|price" lines currently on a page.
func Digest(items []types.CandidateItem) string {
	lines := make([]string, len(items))
	for i, it := range items {
		price := ""
		if it.ListingPriceText != nil {
			price = *it.ListingPriceText
		}
		lines[i] = it.Title + "|" + it.URL + "|" + price
	}
	sort.Strings(lines)
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var _ PriceFinder = (*signals.Extractor)(nil)
