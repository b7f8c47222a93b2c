package diff

import (
	"time"

	"github.com/jonathan/dropwatch/internal/types"
)

// DefaultUltraRareCeiling is the largest LE count reported as ultra rare.
const DefaultUltraRareCeiling = 2500

// Options configures an Engine.
type Options struct {
	UltraRareCeiling int
}

// Engine applies the transition rules.
type Engine struct {
	ceiling int
}

// NewEngine creates an Engine. A non-positive ceiling falls back to the default.
func NewEngine(opts Options) *Engine {
	ceiling := opts.UltraRareCeiling
	if ceiling <= 0 {
		ceiling = DefaultUltraRareCeiling
	}
	return &Engine{ceiling: ceiling}
}

// Ceiling returns the configured ultra-rare ceiling.
func (e *Engine) Ceiling() int {
	return e.ceiling
}

// Observe builds this run's listing-level record for a candidate. FirstSeen is
// kept from prev when present; detail-level fields carry over untouched.
func Observe(prev *types.ItemRecord, item types.CandidateItem, source string, now time.Time) types.ItemRecord {
	var rec types.ItemRecord
	if prev != nil {
		rec = prev.Clone()
	} else {
		rec.FirstSeen = now
	}
	rec.ID = types.IdentityFor(item.URL)
	rec.Title = item.Title
	rec.URL = item.URL
	rec.Source = source
	rec.LastSeen = now
	rec.ListingPriceText = nil
	if item.ListingPriceText != nil {
		v := *item.ListingPriceText
		rec.ListingPriceText = &v
	}
	return rec
}

// NewListing returns a NewListing event when the identity was never persisted
// before and the title-only check passes.
func (e *Engine) NewListing(prev *types.ItemRecord, rec types.ItemRecord, titleQualifies bool) *types.AlertEvent {
	if prev != nil || !titleQualifies {
		return nil
	}
	return &types.AlertEvent{
		Kind:   types.AlertNewListing,
		Source: rec.Source,
		Item:   rec.Clone(),
	}
}

// Apply writes detail-level attributes into rec. Stock always reflects the latest
// observation; price and LE count keep the last confirmed value when this run
// found none.
func Apply(rec types.ItemRecord, obs Observation) types.ItemRecord {
	out := rec.Clone()
	stock := obs.Stock
	out.LastStock = &stock
	if obs.Price != nil {
		v := *obs.Price
		out.LastPrice = &v
		out.LastPriceText = nil
		if obs.PriceText != nil {
			t := *obs.PriceText
			out.LastPriceText = &t
		}
	}
	if obs.LECount != nil {
		v := *obs.LECount
		out.LastLECount = &v
	}
	if obs.Exclusive != nil {
		v := *obs.Exclusive
		out.LastExclusiveFlag = &v
	}
	return out
}

// Evaluate compares obs with prev (nil when never seen) and returns the events
// it triggers together with the updated record the caller must persist.
func (e *Engine) Evaluate(prev *types.ItemRecord, rec types.ItemRecord, target types.Target, obs Observation) ([]types.AlertEvent, types.ItemRecord) {
	var before types.ItemRecord
	if prev != nil {
		before = *prev
	}
	updated := Apply(rec, obs)
	events := make([]types.AlertEvent, 0)

	if ev := e.exclusivity(before, updated, target, obs); ev != nil {
		events = append(events, *ev)
	}
	if ev := e.inStock(before, updated, target, obs); ev != nil {
		events = append(events, *ev)
	}
	if ev := e.priceChange(before, updated, target, obs); ev != nil {
		events = append(events, *ev)
	}
	if ev := e.ultraRare(before, updated, target, obs); ev != nil {
		events = append(events, *ev)
	}
	return events, updated
}

func (e *Engine) exclusivity(before, rec types.ItemRecord, target types.Target, obs Observation) *types.AlertEvent {
	if !target.PageLevelSignals || !obs.Thematic || obs.Exclusive == nil || !*obs.Exclusive {
		return nil
	}
	if before.LastExclusiveFlag != nil && *before.LastExclusiveFlag {
		return nil
	}
	ev := newEvent(types.AlertExclusivityDetected, target, rec)
	ev.PrevExclusive = copyBool(before.LastExclusiveFlag)
	return ev
}

func (e *Engine) inStock(before, rec types.ItemRecord, target types.Target, obs Observation) *types.AlertEvent {
	if !obs.Qualifies || obs.Stock != types.StockInStock {
		return nil
	}
	if before.LastStock != nil && *before.LastStock == types.StockInStock {
		return nil
	}
	ev := newEvent(types.AlertInStockFlip, target, rec)
	if before.LastStock != nil {
		s := *before.LastStock
		ev.PrevStock = &s
	}
	return ev
}

func (e *Engine) priceChange(before, rec types.ItemRecord, target types.Target, obs Observation) *types.AlertEvent {
	if !obs.Qualifies || obs.Price == nil || before.LastPrice == nil {
		return nil
	}
	if obs.Price.Equal(*before.LastPrice) {
		return nil
	}
	ev := newEvent(types.AlertPriceChange, target, rec)
	p := *before.LastPrice
	ev.PrevPrice = &p
	return ev
}

func (e *Engine) ultraRare(before, rec types.ItemRecord, target types.Target, obs Observation) *types.AlertEvent {
	if !obs.Qualifies || obs.LECount == nil || *obs.LECount > e.ceiling {
		return nil
	}
	if before.LastLECount != nil && *before.LastLECount == *obs.LECount {
		return nil
	}
	ev := newEvent(types.AlertUltraRareSignal, target, rec)
	if before.LastLECount != nil {
		n := *before.LastLECount
		ev.PrevLECount = &n
	}
	return ev
}

func newEvent(kind types.AlertKind, target types.Target, rec types.ItemRecord) *types.AlertEvent {
	return &types.AlertEvent{
		Kind:   kind,
		Source: target.Name,
		Item:   rec.Clone(),
	}
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
