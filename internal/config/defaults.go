package config

import (
	"github.com/jonathan/dropwatch/internal/alerts"
	"github.com/jonathan/dropwatch/internal/diff"
	"github.com/jonathan/dropwatch/internal/signals"
	"github.com/jonathan/dropwatch/internal/state"
	"github.com/jonathan/dropwatch/internal/types"
)

// DefaultFetchRate is the page load limit per second when none is configured.
const DefaultFetchRate = 2.0

// Default returns the built-in watch list: UK Funko retailers, anime series
// keywords, and title-level rarity keywords.
func Default() Config {
	capacity := state.DefaultCapacity
	fetchRate := DefaultFetchRate
	return Config{
		Targets: []types.Target{
			{Name: "Funko UK – New Releases", URL: "https://funko.com/gb/new-featured/new-releases/", BaseURL: "https://funko.com", PageLevelSignals: true},
			{Name: "Forbidden Planet – Funko Latest", URL: "https://forbiddenplanet.com/promotion/funko-see--latest/", BaseURL: "https://forbiddenplanet.com"},
			{Name: "Forbidden Planet Int'l – Funko Exclusives", URL: "https://shop.forbiddenplanet.co.uk/collections/funko-exclusives", BaseURL: "https://shop.forbiddenplanet.co.uk"},
			{Name: "GAME – Pop Animation", URL: "https://www.game.co.uk/funko/pop-animation", BaseURL: "https://www.game.co.uk"},
			{Name: "HMV – Funko Pre-orders", URL: "https://hmv.com/store/pop-culture/funko-pre-orders", BaseURL: "https://hmv.com"},
			{Name: "HMV – Pop Vinyl Animation", URL: "https://hmv.com/store/pop-culture/funko/pop-vinyl/animation", BaseURL: "https://hmv.com"},
			{Name: "Smyths – Funko Search", URL: "https://www.smythstoys.com/uk/en-gb/search?q=funko+pop", BaseURL: "https://www.smythstoys.com"},
		},
		ThematicKeywords: []string{
			"anime", "manga",
			"one piece", "naruto", "boruto", "bleach",
			"dragon ball", "dbz", "dragonball",
			"jujutsu", "jjk", "jujutsu kaisen",
			"demon slayer", "kimetsu",
			"chainsaw", "chainsaw man",
			"spy x family", "spyxfamily",
			"my hero", "mha", "my hero academia",
			"attack on titan", "aot",
			"hunter x hunter", "hxh",
			"black clover",
			"haikyuu",
			"jojo", "jojo's",
			"tokyo ghoul",
			"sailor moon",
			"yu-gi-oh", "yugioh",
			"inuyasha",
			"fullmetal", "fma", "fullmetal alchemist",
			"evangelion",
			"gundam",
			"ghibli", "studio ghibli",
			"pokemon",
		},
		RarityKeywords: []string{
			"exclusive",
			"limited",
			"chase",
			"convention",
			"sdcc",
			"nycc",
			"funko shop",
			"web exclusive",
			"special edition",
			"glow", "gitd", "glow-in-the-dark",
			"flocked",
			"metallic",
			"diamond",
			"signed",
		},
		PageExclusivePhrases: []string{
			"web exclusive",
			"funko exclusive",
			"limited edition",
			"special edition",
			"exclusive",
			"limited",
		},
		CurrencySymbols:       []string{signals.DefaultCurrencySymbol},
		UltraRareCeiling:      diff.DefaultUltraRareCeiling,
		StateCapacity:         &capacity,
		ChunkBudget:           alerts.DefaultChunkBudget,
		StatePath:             state.DefaultPath,
		Fetcher:               FetcherBrowser,
		ListingTimeoutSeconds: 60,
		DetailTimeoutSeconds:  60,
		DetailWaitMillis:      1200,
		FetchRatePerSecond:    &fetchRate,
	}
}
