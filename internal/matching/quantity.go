package matching

import (
	"math"
	"strconv"
	"strings"

	"github.com/computerwizzy/shopify-inventory-sync/internal/utils"
)

// NormalizeQuantity converts a raw feed cell to an inventory quantity.
// Thousands separators are stripped, decimals truncate toward zero and
// negatives clamp to zero. Anything unparseable is zero; this never errors
// so one bad cell cannot abort a feed.
func NormalizeQuantity(raw string) int {
	raw = utils.CleanCell(raw)
	if raw == "" {
		return 0
	}
	raw = strings.ReplaceAll(raw, ",", "")

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	if value < 0 {
		return 0
	}
	if value > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(value)
}
