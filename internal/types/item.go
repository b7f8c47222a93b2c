// Package types provides type definitions for the listing, state, and alert data shared across dropwatch.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// IdentityLength is the number of hex characters kept from the URL hash.
const IdentityLength = 16

// ItemIdentity is the stable identifier of a watched item, derived from its canonical URL.
type ItemIdentity string

// IdentityFor returns the identity for a canonical product URL.
func IdentityFor(canonicalURL string) ItemIdentity {
	sum := sha256.Sum256([]byte(canonicalURL))
	return ItemIdentity(hex.EncodeToString(sum[:])[:IdentityLength])
}

// RawAnchor is a product-link observation as scraped from a listing page.
type RawAnchor struct {
	Href       string `json:"href"`
	Text       string `json:"text"`
	NearbyText string `json:"nearby_text,omitempty"` // Text of the anchor's parent node
}

// CandidateItem is a normalized, not yet confirmed product card from a listing page.
type CandidateItem struct {
	Title            string  `json:"title"`
	URL              string  `json:"url"` // Absolute, query-stripped
	ListingPriceText *string `json:"listing_price_text"`
}

// StockStatus is the stock state inferred from a product page.
type StockStatus string

const (
	// StockInStock means the page offers the item for purchase or pre-order.
	StockInStock StockStatus = "in_stock"
	// StockOutOfStock means the page states the item is unavailable.
	StockOutOfStock StockStatus = "out_of_stock"
	// StockUnknown means neither phrase set matched.
	StockUnknown StockStatus = "unknown"
)

// UnmarshalJSON accepts the legacy "oos" spelling written by older state files.
func (s *StockStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid stock status: %w", err)
	}
	switch raw {
	case "oos":
		*s = StockOutOfStock
	case string(StockInStock), string(StockOutOfStock), string(StockUnknown):
		*s = StockStatus(raw)
	default:
		*s = StockUnknown
	}
	return nil
}

// ItemRecord is the persisted last-known state of one item.
// Detail-level fields are nil until the first successful detail fetch.
type ItemRecord struct {
	ID               ItemIdentity `json:"id"`
	Title            string       `json:"title"`
	URL              string       `json:"url"`
	Source           string       `json:"source"`
	FirstSeen        time.Time    `json:"first_seen"`
	LastSeen         time.Time    `json:"last_seen"`
	ListingPriceText *string      `json:"listing_price_text"`

	LastStock         *StockStatus     `json:"last_stock"`
	LastPrice         *decimal.Decimal `json:"last_price"`
	LastPriceText     *string          `json:"last_price_text"`
	LastLECount       *int             `json:"last_le_count"`
	LastExclusiveFlag *bool            `json:"last_exclusive_flag"`
}

// Clone returns a deep copy so callers never share pointer fields with the store.
func (r ItemRecord) Clone() ItemRecord {
	out := r
	if r.ListingPriceText != nil {
		v := *r.ListingPriceText
		out.ListingPriceText = &v
	}
	if r.LastStock != nil {
		v := *r.LastStock
		out.LastStock = &v
	}
	if r.LastPrice != nil {
		v := *r.LastPrice
		out.LastPrice = &v
	}
	if r.LastPriceText != nil {
		v := *r.LastPriceText
		out.LastPriceText = &v
	}
	if r.LastLECount != nil {
		v := *r.LastLECount
		out.LastLECount = &v
	}
	if r.LastExclusiveFlag != nil {
		v := *r.LastExclusiveFlag
		out.LastExclusiveFlag = &v
	}
	return out
}

// TargetRecord is the per-target diagnostic digest record.
type TargetRecord struct {
	URL         string    `json:"url"`
	Digest      string    `json:"digest"`
	LastChecked time.Time `json:"last_checked"`
	Changed     bool      `json:"changed"`
}

// Target is one watched listing page.
type Target struct {
	Name              string `json:"name" validate:"required"`
	URL               string `json:"url" validate:"required,url"`
	BaseURL           string `json:"base_url" validate:"required,url"`
	PageLevelSignals  bool   `json:"page_level_signals,omitempty"`
	ListingWaitMillis int    `json:"listing_wait_ms,omitempty" validate:"gte=0"`
}
