package diff

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/dropwatch/internal/types"
)

var (
	now          = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	plainTarget  = types.Target{Name: "StoreX", URL: "https://x.example.com/new", BaseURL: "https://x.example.com"}
	signalTarget = types.Target{Name: "Funko", URL: "https://f.example.com/new", BaseURL: "https://f.example.com", PageLevelSignals: true}
	candidate    = types.CandidateItem{Title: "Naruto Exclusive Pop", URL: "https://x.example.com/products/naruto"}
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(i int) *int    { return &i }
func boolPtr(b bool) *bool { return &b }

func kinds(events []types.AlertEvent) []types.AlertKind {
	out := make([]types.AlertKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

// step runs one detail observation against prev and returns the events and new record.
func step(e *Engine, prev *types.ItemRecord, target types.Target, obs Observation, at time.Time) ([]types.AlertEvent, types.ItemRecord) {
	rec := Observe(prev, candidate, target.Name, at)
	return e.Evaluate(prev, rec, target, obs)
}

func TestObserve_FirstSeenSetOnce(t *testing.T) {
	rec := Observe(nil, candidate, "StoreX", now)
	assert.Equal(t, now, rec.FirstSeen)
	assert.Equal(t, now, rec.LastSeen)
	assert.Equal(t, types.IdentityFor(candidate.URL), rec.ID)
	assert.Nil(t, rec.LastStock)

	later := now.Add(time.Hour)
	again := Observe(&rec, candidate, "StoreX", later)
	assert.Equal(t, now, again.FirstSeen)
	assert.Equal(t, later, again.LastSeen)
}

func TestObserve_CarriesDetailFields(t *testing.T) {
	stock := types.StockOutOfStock
	prev := types.ItemRecord{FirstSeen: now, LastStock: &stock, LastLECount: intPtr(1000)}
	rec := Observe(&prev, candidate, "StoreX", now.Add(time.Hour))
	require.NotNil(t, rec.LastStock)
	assert.Equal(t, types.StockOutOfStock, *rec.LastStock)
	assert.Equal(t, 1000, *rec.LastLECount)
}

func TestNewListing(t *testing.T) {
	e := NewEngine(Options{})
	rec := Observe(nil, candidate, "StoreX", now)

	ev := e.NewListing(nil, rec, true)
	require.NotNil(t, ev)
	assert.Equal(t, types.AlertNewListing, ev.Kind)
	assert.Equal(t, "StoreX", ev.Source)

	assert.Nil(t, e.NewListing(nil, rec, false), "title check must pass")
	assert.Nil(t, e.NewListing(&rec, rec, true), "identity already persisted")
}

func TestEvaluate_InStockFlipScenario(t *testing.T) {
	e := NewEngine(Options{})
	base := Observe(nil, candidate, "StoreX", now)
	prev := &base

	// Run 2: sold out, no flip.
	events, rec := step(e, prev, plainTarget, Observation{Qualifies: true, Thematic: true, Stock: types.StockOutOfStock}, now.Add(time.Minute))
	assert.Empty(t, events)
	prev = &rec

	// Run 3: add to basket, flip.
	events, rec = step(e, prev, plainTarget, Observation{Qualifies: true, Thematic: true, Stock: types.StockInStock}, now.Add(2*time.Minute))
	require.Equal(t, []types.AlertKind{types.AlertInStockFlip}, kinds(events))
	require.NotNil(t, events[0].PrevStock)
	assert.Equal(t, types.StockOutOfStock, *events[0].PrevStock)
	prev = &rec

	// Run 4: still in stock, idempotent.
	events, rec = step(e, prev, plainTarget, Observation{Qualifies: true, Thematic: true, Stock: types.StockInStock}, now.Add(3*time.Minute))
	assert.Empty(t, events)
	prev = &rec

	// Re-flip out and back in re-triggers.
	_, rec = step(e, prev, plainTarget, Observation{Qualifies: true, Thematic: true, Stock: types.StockOutOfStock}, now.Add(4*time.Minute))
	prev = &rec
	events, _ = step(e, prev, plainTarget, Observation{Qualifies: true, Thematic: true, Stock: types.StockInStock}, now.Add(5*time.Minute))
	assert.Equal(t, []types.AlertKind{types.AlertInStockFlip}, kinds(events))
}

func TestEvaluate_InStockFromUnknownOrAbsent(t *testing.T) {
	e := NewEngine(Options{})
	events, _ := step(e, nil, plainTarget, Observation{Qualifies: true, Stock: types.StockInStock}, now)
	assert.Equal(t, []types.AlertKind{types.AlertInStockFlip}, kinds(events))
	assert.Nil(t, events[0].PrevStock)

	unknown := types.StockUnknown
	prev := types.ItemRecord{LastStock: &unknown}
	events, _ = step(e, &prev, plainTarget, Observation{Qualifies: true, Stock: types.StockInStock}, now)
	assert.Equal(t, []types.AlertKind{types.AlertInStockFlip}, kinds(events))
}

func TestEvaluate_NonQualifyingNeverAlertsButUpdates(t *testing.T) {
	e := NewEngine(Options{})
	obs := Observation{Qualifies: false, Stock: types.StockInStock, Price: price("10"), LECount: intPtr(100)}
	events, rec := step(e, nil, plainTarget, obs, now)
	assert.Empty(t, events)
	require.NotNil(t, rec.LastStock)
	assert.Equal(t, types.StockInStock, *rec.LastStock)
	assert.True(t, rec.LastPrice.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 100, *rec.LastLECount)
}

func TestEvaluate_PriceChange(t *testing.T) {
	e := NewEngine(Options{})
	tests := []struct {
		name      string
		old, new  *decimal.Decimal
		wantEvent bool
	}{
		{"increase", price("10.00"), price("12.50"), true},
		{"decrease", price("12.50"), price("9.99"), true},
		{"penny", price("10.00"), price("10.01"), true},
		{"same value different scale", price("10.0"), price("10.00"), false},
		{"no previous", nil, price("10.00"), false},
		{"no new", price("10.00"), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := types.StockInStock
			prev := types.ItemRecord{LastStock: &in, LastPrice: tt.old}
			events, rec := step(e, &prev, plainTarget, Observation{Qualifies: true, Stock: types.StockInStock, Price: tt.new}, now)
			if !tt.wantEvent {
				assert.Empty(t, events)
				return
			}
			require.Equal(t, []types.AlertKind{types.AlertPriceChange}, kinds(events))
			ev := events[0]
			require.NotNil(t, ev.PrevPrice)
			assert.True(t, ev.PrevPrice.Equal(*tt.old))
			assert.True(t, ev.Item.LastPrice.Equal(*tt.new))
			assert.True(t, rec.LastPrice.Equal(*tt.new))
		})
	}
}

func TestEvaluate_PriceKeptWhenMissing(t *testing.T) {
	e := NewEngine(Options{})
	prev := types.ItemRecord{LastPrice: price("10.00")}
	_, rec := step(e, &prev, plainTarget, Observation{Qualifies: true, Stock: types.StockUnknown}, now)
	require.NotNil(t, rec.LastPrice)
	assert.True(t, rec.LastPrice.Equal(decimal.NewFromInt(10)))
}

func TestEvaluate_UltraRareScenario(t *testing.T) {
	e := NewEngine(Options{UltraRareCeiling: 2500})
	in := types.StockInStock
	base := types.ItemRecord{LastStock: &in}
	prev := &base

	events, rec := step(e, prev, plainTarget, Observation{Qualifies: true, Stock: types.StockInStock, LECount: intPtr(2000)}, now)
	require.Equal(t, []types.AlertKind{types.AlertUltraRareSignal}, kinds(events))
	assert.Nil(t, events[0].PrevLECount)
	prev = &rec

	events, rec = step(e, prev, plainTarget, Observation{Qualifies: true, Stock: types.StockInStock, LECount: intPtr(2000)}, now)
	assert.Empty(t, events)
	prev = &rec

	events, _ = step(e, prev, plainTarget, Observation{Qualifies: true, Stock: types.StockInStock, LECount: intPtr(1500)}, now)
	require.Equal(t, []types.AlertKind{types.AlertUltraRareSignal}, kinds(events))
	assert.Equal(t, 2000, *events[0].PrevLECount)
	assert.Equal(t, 1500, *events[0].Item.LastLECount)
}

func TestEvaluate_UltraRareAboveCeiling(t *testing.T) {
	e := NewEngine(Options{UltraRareCeiling: 2500})
	in := types.StockInStock
	prev := types.ItemRecord{LastStock: &in}
	events, rec := step(e, &prev, plainTarget, Observation{Qualifies: true, Stock: types.StockInStock, LECount: intPtr(5000)}, now)
	assert.Empty(t, events)
	assert.Equal(t, 5000, *rec.LastLECount)
}

func TestEvaluate_ExclusivityDetected(t *testing.T) {
	e := NewEngine(Options{})
	oos := types.StockOutOfStock
	base := types.ItemRecord{LastStock: &oos, LastExclusiveFlag: boolPtr(false)}
	prev := &base

	obs := Observation{Thematic: true, Qualifies: true, Stock: types.StockOutOfStock, Exclusive: boolPtr(true)}
	events, rec := step(e, prev, signalTarget, obs, now)
	require.Equal(t, []types.AlertKind{types.AlertExclusivityDetected}, kinds(events))
	assert.Equal(t, "Funko", events[0].Source)
	require.NotNil(t, events[0].PrevExclusive)
	assert.False(t, *events[0].PrevExclusive)
	prev = &rec

	events, _ = step(e, prev, signalTarget, obs, now)
	assert.Empty(t, events, "flag stayed true")
}

func TestEvaluate_ExclusivityRequiresPageSignalsAndTheme(t *testing.T) {
	e := NewEngine(Options{})
	obs := Observation{Thematic: true, Qualifies: true, Stock: types.StockUnknown, Exclusive: boolPtr(true)}
	events, _ := step(e, nil, plainTarget, obs, now)
	assert.Empty(t, events)

	obs.Thematic = false
	obs.Qualifies = false
	events, _ = step(e, nil, signalTarget, obs, now)
	assert.Empty(t, events)
}

func TestDetailResult(t *testing.T) {
	ok := Ok(Observation{Stock: types.StockInStock})
	obs, has := ok.Observation()
	assert.True(t, has)
	assert.Equal(t, types.StockInStock, obs.Stock)
	assert.Empty(t, ok.Reason())

	skipped := Skipped("timeout")
	_, has = skipped.Observation()
	assert.False(t, has)
	assert.Equal(t, "timeout", skipped.Reason())
}

func TestNewEngine_DefaultCeiling(t *testing.T) {
	assert.Equal(t, DefaultUltraRareCeiling, NewEngine(Options{}).Ceiling())
	assert.Equal(t, 100, NewEngine(Options{UltraRareCeiling: 100}).Ceiling())
}
