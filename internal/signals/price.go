package signals

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is used when no symbols are configured.
const DefaultCurrencySymbol = "£"

// buildPriceRegexp matches a price with the symbol before ("£12.99", "£ 5")
// or after ("12.99£") the amount.
func buildPriceRegexp(symbols []string) *regexp.Regexp {
	quoted := make([]string, len(symbols))
	for i, s := range symbols {
		quoted[i] = regexp.QuoteMeta(s)
	}
	sym := "(?:" + strings.Join(quoted, "|") + ")"
	amount := `\d+(?:\.\d{2})?`
	return regexp.MustCompile(sym + `\s?` + amount + `|` + amount + `\s?` + sym)
}

// ExtractPriceText returns the first currency-formatted substring of text, or nil.
func (e *Extractor) ExtractPriceText(text string) *string {
	if text == "" {
		return nil
	}
	match := e.priceRe.FindString(strings.ReplaceAll(text, "\n", " "))
	match = strings.TrimSpace(match)
	if match == "" {
		return nil
	}
	return &match
}

// ParsePrice strips currency symbols from price text and parses the amount.
// Malformed or missing input yields nil rather than an error.
func (e *Extractor) ParsePrice(priceText *string) *decimal.Decimal {
	if priceText == nil {
		return nil
	}
	p := *priceText
	for _, s := range e.symbols {
		p = strings.ReplaceAll(p, s, "")
	}
	p = strings.TrimSpace(p)
	if p == "" {
		return nil
	}
	d, err := decimal.NewFromString(p)
	if err != nil {
		return nil
	}
	return &d
}
