package types

import "github.com/shopspring/decimal"

// AlertKind tags an AlertEvent with the transition that produced it.
type AlertKind string

const (
	// AlertNewListing fires the first time a qualifying identity is persisted.
	AlertNewListing AlertKind = "new_listing"
	// AlertInStockFlip fires when a qualifying item becomes purchasable.
	AlertInStockFlip AlertKind = "in_stock_flip"
	// AlertPriceChange fires when a qualifying item's confirmed price moves.
	AlertPriceChange AlertKind = "price_change"
	// AlertExclusivityDetected fires when page-level exclusivity first appears.
	AlertExclusivityDetected AlertKind = "exclusivity_detected"
	// AlertUltraRareSignal fires when a new LE count at or under the ceiling is seen.
	AlertUltraRareSignal AlertKind = "ultra_rare_signal"
)

// Priority returns the delivery class; lower values are sent first.
func (k AlertKind) Priority() int {
	switch k {
	case AlertUltraRareSignal:
		return 0
	case AlertInStockFlip:
		return 1
	case AlertPriceChange:
		return 2
	default:
		return 3
	}
}

// AlertEvent is one alert-worthy transition. Prev* fields hold the persisted value
// the transition was measured against; only the one relevant to Kind is set.
type AlertEvent struct {
	Kind   AlertKind  `json:"kind"`
	Source string     `json:"source"`
	Item   ItemRecord `json:"item"`

	PrevStock     *StockStatus     `json:"prev_stock,omitempty"`
	PrevPrice     *decimal.Decimal `json:"prev_price,omitempty"`
	PrevLECount   *int             `json:"prev_le_count,omitempty"`
	PrevExclusive *bool            `json:"prev_exclusive,omitempty"`
}
