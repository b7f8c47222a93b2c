package alerts

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jonathan/dropwatch/internal/types"
)

// DefaultChunkBudget is the maximum characters per outgoing message. Discord caps
// messages at 2000; the remainder is headroom.
const DefaultChunkBudget = 1800

const blockSeparator = "\n\n"

// Order returns events sorted by delivery priority: ultra rare and stock flips
// first, then price changes, then new listings and exclusivity. Events within a
// class keep their discovery order.
func Order(events []types.AlertEvent) []types.AlertEvent {
	out := append([]types.AlertEvent(nil), events...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kind.Priority() < out[j].Kind.Priority()
	})
	return out
}

// Formatter renders events as self-contained text blocks.
type Formatter struct {
	Currency string
}

// NewFormatter creates a Formatter using currency as the price prefix.
func NewFormatter(currency string) *Formatter {
	if currency == "" {
		currency = "£"
	}
	return &Formatter{Currency: currency}
}

// Render produces the text block for one event.
func (f *Formatter) Render(ev types.AlertEvent) string {
	item := ev.Item
	var sb strings.Builder

	switch ev.Kind {
	case types.AlertNewListing:
		fmt.Fprintf(&sb, "🆕 **NEW LISTING** (%s)", ev.Source)
	case types.AlertExclusivityDetected:
		fmt.Fprintf(&sb, "🎯 **EXCLUSIVE/LIMITED DETECTED** (%s)", ev.Source)
	case types.AlertInStockFlip:
		fmt.Fprintf(&sb, "✅ **IN STOCK** (%s)", ev.Source)
	case types.AlertPriceChange:
		fmt.Fprintf(&sb, "%s **PRICE CHANGE** (%s)", f.direction(ev), ev.Source)
	case types.AlertUltraRareSignal:
		fmt.Fprintf(&sb, "🚨 **ULTRA RARE SIGNAL (LE %d)** (%s)", derefInt(item.LastLECount), ev.Source)
	default:
		fmt.Fprintf(&sb, "**%s** (%s)", strings.ToUpper(string(ev.Kind)), ev.Source)
	}
	fmt.Fprintf(&sb, "\n**%s**\n%s", item.Title, item.URL)

	switch ev.Kind {
	case types.AlertInStockFlip:
		if ev.PrevStock != nil {
			fmt.Fprintf(&sb, "\nWas: %s", stockLabel(*ev.PrevStock))
		}
		if item.LastPrice != nil {
			fmt.Fprintf(&sb, "\nPrice: %s", f.money(*item.LastPrice))
		}
	case types.AlertPriceChange:
		if ev.PrevPrice != nil && item.LastPrice != nil {
			fmt.Fprintf(&sb, "\nWas: %s  Now: %s", f.money(*ev.PrevPrice), f.money(*item.LastPrice))
		}
	case types.AlertUltraRareSignal:
		if ev.PrevLECount != nil {
			fmt.Fprintf(&sb, "\nPrevious LE: %d", *ev.PrevLECount)
		}
		if item.LastStock != nil && *item.LastStock == types.StockInStock {
			sb.WriteString("\nIn Stock ✅")
		} else {
			sb.WriteString("\nNot In Stock yet")
		}
	}
	return sb.String()
}

// RenderAll orders events and renders each one.
func (f *Formatter) RenderAll(events []types.AlertEvent) []string {
	ordered := Order(events)
	blocks := make([]string, len(ordered))
	for i, ev := range ordered {
		blocks[i] = f.Render(ev)
	}
	return blocks
}

// Chunk packs blocks into messages of at most budget characters, never splitting
// a block. A block longer than the budget is sent as its own message.
func Chunk(blocks []string, budget int) []string {
	if budget <= 0 {
		budget = DefaultChunkBudget
	}
	sepLen := utf8.RuneCountInString(blockSeparator)

	chunks := make([]string, 0)
	var current []string
	size := 0
	for _, b := range blocks {
		n := utf8.RuneCountInString(b)
		if len(current) > 0 && size+sepLen+n > budget {
			chunks = append(chunks, strings.Join(current, blockSeparator))
			current = nil
			size = 0
		}
		if len(current) > 0 {
			size += sepLen
		}
		current = append(current, b)
		size += n
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, blockSeparator))
	}
	return chunks
}

// direction is the arrow for a price change event.
func (f *Formatter) direction(ev types.AlertEvent) string {
	if ev.PrevPrice == nil || ev.Item.LastPrice == nil {
		return "↕️"
	}
	if ev.Item.LastPrice.GreaterThan(*ev.PrevPrice) {
		return "⬆️"
	}
	return "⬇️"
}

func (f *Formatter) money(d decimal.Decimal) string {
	return f.Currency + d.StringFixed(2)
}

func stockLabel(s types.StockStatus) string {
	switch s {
	case types.StockInStock:
		return "in stock"
	case types.StockOutOfStock:
		return "out of stock"
	default:
		return "unknown"
	}
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
