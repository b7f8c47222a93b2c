// Package classify decides whether an item is an interesting drop.
//
// Sources without page-level signals qualify on the title alone (thematic AND rarity
// keyword). Sources with page-level signals qualify on a thematic title plus an
// exclusive/limited phrase on the product page, since their titles rarely say so.
package classify

import (
	"github.com/jonathan/dropwatch/internal/signals"
	"github.com/jonathan/dropwatch/internal/types"
)

// Options configures a Classifier.
type Options struct {
	// ThematicFilteringDisabled makes the title-only check pass for every item.
	ThematicFilteringDisabled bool
}

// Classifier combines signal extractor outputs into qualification verdicts.
type Classifier struct {
	signals  *signals.Extractor
	disabled bool
}

// New creates a Classifier over the given extractor.
func New(extractor *signals.Extractor, opts Options) *Classifier {
	return &Classifier{
		signals:  extractor,
		disabled: opts.ThematicFilteringDisabled,
	}
}

// TitleQualifies is the title-only pass: thematic match and rarity keyword.
func (c *Classifier) TitleQualifies(title string) bool {
	if c.disabled {
		return true
	}
	return c.signals.Thematic(title) && c.signals.Rarity(title)
}

// Thematic reports whether the title matches a thematic keyword.
func (c *Classifier) Thematic(title string) bool {
	return c.signals.Thematic(title)
}

// ShouldFetchDetail gates the product page fetch on title signals so that only
// plausible drops cost a browser navigation.
func (c *Classifier) ShouldFetchDetail(item types.CandidateItem, target types.Target) bool {
	if !c.signals.Thematic(item.Title) {
		return false
	}
	return target.PageLevelSignals || c.signals.Rarity(item.Title)
}

// Qualifies returns the full verdict once page-level signals are known.
// pageExclusive is ignored for targets without page-level signal support.
func (c *Classifier) Qualifies(title string, target types.Target, pageExclusive bool) bool {
	if target.PageLevelSignals {
		return c.signals.Thematic(title) && pageExclusive
	}
	return c.TitleQualifies(title)
}
