// Package diff compares newly observed item attributes with the last persisted
// record and decides which transitions are alert-worthy.
//
// Every rule requires the observed value to differ from the persisted one, so
// re-running with unchanged input never produces an event twice.
package diff

import (
	"github.com/shopspring/decimal"

	"github.com/jonathan/dropwatch/internal/types"
)

// Observation holds detail-page attributes for one item in one run.
type Observation struct {
	Thematic  bool // Title matched a thematic keyword
	Qualifies bool // Full classifier verdict
	Stock     types.StockStatus
	PriceText *string
	Price     *decimal.Decimal
	LECount   *int
	Exclusive *bool // Nil for targets without page-level signals
}

// DetailResult distinguishes "detail data observed" from "no detail data this run".
// A skipped result must not be read as confirmed absence of any signal.
type DetailResult struct {
	observation *Observation
	reason      string
}

// Ok wraps a successful observation.
func Ok(obs Observation) DetailResult {
	return DetailResult{observation: &obs}
}

// Skipped records why no detail data is available.
func Skipped(reason string) DetailResult {
	return DetailResult{reason: reason}
}

// Observation returns the observation and true, or false when skipped.
func (r DetailResult) Observation() (Observation, bool) {
	if r.observation == nil {
		return Observation{}, false
	}
	return *r.observation, true
}

// Reason returns the skip reason, empty for Ok results.
func (r DetailResult) Reason() string {
	return r.reason
}
