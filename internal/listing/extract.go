package listing

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/dropwatch/internal/types"
)

// ExtractAnchors collects every <a href> on a listing page along with its visible
// text and the text of its parent node, where listing cards usually print the price.
func ExtractAnchors(htmlContent string) ([]types.RawAnchor, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &ExtractionError{
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	anchors := make([]types.RawAnchor, 0)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			return
		}
		anchors = append(anchors, types.RawAnchor{
			Href:       strings.TrimSpace(href),
			Text:       s.Text(),
			NearbyText: s.Parent().Text(),
		})
	})

	return anchors, nil
}
