package signals

import (
	"regexp"
	"strconv"
	"strings"
)

// editionPattern is one limited-edition count phrasing.
type editionPattern struct {
	Name string
	re   *regexp.Regexp
}

// editionPatterns are tried in order and the first match wins. Explicit phrasings
// come before the generic "max" form, which is the most likely to match unrelated text.
var editionPatterns = []editionPattern{
	{Name: "le", re: regexp.MustCompile(`\ble\s*(\d{3,6})\b`)},
	{Name: "limited edition", re: regexp.MustCompile(`\blimited edition\s*(\d{3,6})\b`)},
	{Name: "pieces", re: regexp.MustCompile(`\b(\d{3,6})\s*(?:pcs|pieces)\b`)},
	{Name: "max", re: regexp.MustCompile(`\bmax\.*\s*(\d{2,6})\b`)},
}

// ExtractLECount returns the limited-edition piece count stated in text, or nil.
// Thousands separators are ignored, so "Limited Edition 3,000" yields 3000.
func ExtractLECount(text string) *int {
	if text == "" {
		return nil
	}
	t := strings.ReplaceAll(strings.ToLower(text), ",", "")
	for _, p := range editionPatterns {
		m := p.re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return &n
	}
	return nil
}
