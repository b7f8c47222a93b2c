// Package signals provides pure text-analysis functions over listing titles and product page text:
// keyword matching, stock inference, price extraction, and limited-edition piece counts.
package signals

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize trims, lower-cases, and collapses runs of whitespace to a single space.
func Normalize(text string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}

// Keywords holds the configured phrase sets. Values are copied by NewExtractor.
type Keywords struct {
	Thematic        []string // Subject matter of interest (series, franchises)
	Rarity          []string // Title-level "hard" signals (exclusive, chase, ...)
	PageExclusive   []string // Broader exclusive/limited phrases scanned over full page text
	CurrencySymbols []string // Symbols recognized by price extraction; defaults to £
}

// Extractor evaluates text against an immutable set of keywords.
type Extractor struct {
	thematic      []string
	rarity        []string
	pageExclusive []string
	symbols       []string
	priceRe       *regexp.Regexp
}

// NewExtractor builds an Extractor. Keywords are normalized once so matching only
// has to normalize the input text.
func NewExtractor(k Keywords) *Extractor {
	symbols := k.CurrencySymbols
	if len(symbols) == 0 {
		symbols = []string{DefaultCurrencySymbol}
	}
	return &Extractor{
		thematic:      normalizeAll(k.Thematic),
		rarity:        normalizeAll(k.Rarity),
		pageExclusive: normalizeAll(k.PageExclusive),
		symbols:       append([]string(nil), symbols...),
		priceRe:       buildPriceRegexp(symbols),
	}
}

// Thematic reports whether the text mentions any thematic keyword.
func (e *Extractor) Thematic(text string) bool {
	return containsAny(Normalize(text), e.thematic)
}

// Rarity reports whether the text carries a title-level rarity/exclusivity keyword.
func (e *Extractor) Rarity(text string) bool {
	return containsAny(Normalize(text), e.rarity)
}

// PageExclusive reports whether full page text carries an exclusive/limited phrase.
func (e *Extractor) PageExclusive(pageText string) bool {
	return containsAny(Normalize(pageText), e.pageExclusive)
}

func normalizeAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if n := Normalize(k); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
