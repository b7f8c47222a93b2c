package signals

import (
	"strings"

	"github.com/jonathan/dropwatch/internal/types"
)

// outOfStockPhrases are checked before inStockPhrases: product pages routinely carry
// "add to basket" boilerplate next to a "sold out" banner.
var outOfStockPhrases = []string{
	"out of stock",
	"sold out",
	"currently unavailable",
	"not available",
	"temporarily unavailable",
	"no longer available",
}

var inStockPhrases = []string{
	"add to basket",
	"add to cart",
	"add to bag",
	"add to trolley",
	"buy now",
	"pre-order",
	"preorder",
	"available for delivery",
	"available to collect",
	"in stock",
}

// StockStatus infers stock from page text. Out-of-stock phrasing wins ties.
func StockStatus(pageText string) types.StockStatus {
	lower := strings.ToLower(pageText)
	if containsAny(lower, outOfStockPhrases) {
		return types.StockOutOfStock
	}
	if containsAny(lower, inStockPhrases) {
		return types.StockInStock
	}
	return types.StockUnknown
}
