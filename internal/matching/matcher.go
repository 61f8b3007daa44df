// Package matching reconciles SKUs from supplier feeds against the Shopify
// catalog.
//
// Matching runs in tiers: a verbatim lookup, a case-insensitive scan, then a
// fuzzy pass scoring every catalog SKU with a normalized Levenshtein ratio.
// Rows whose best ratio falls below the configured threshold come back as
// no-match rows rather than errors, so one unknown SKU never aborts a feed.
package matching

import (
	"sort"
	"strings"

	"github.com/computerwizzy/shopify-inventory-sync/internal/config"
	"github.com/computerwizzy/shopify-inventory-sync/internal/feeds"
	"github.com/computerwizzy/shopify-inventory-sync/internal/mapping"
	"github.com/computerwizzy/shopify-inventory-sync/internal/shopify"
	"github.com/computerwizzy/shopify-inventory-sync/internal/utils"
)

type MatchType string

const (
	MatchTypeExact   MatchType = "exact"
	MatchTypeFuzzy   MatchType = "fuzzy"
	MatchTypeNoMatch MatchType = "no_match"
)

// NoMatchTitle is the product title reported for feed SKUs that matched
// nothing in the catalog.
const NoMatchTitle = "No Match Found"

// MatchResult describes the outcome for one feed row. Results keep the feed's
// row order, one per non-blank SKU.
type MatchResult struct {
	FileSKU         string            `json:"file_sku"`
	MatchedSKU      string            `json:"matched_sku,omitempty"`
	VariantID       int64             `json:"variant_id,omitempty"`
	ProductID       int64             `json:"product_id,omitempty"`
	InventoryItemID int64             `json:"inventory_item_id,omitempty"`
	ProductTitle    string            `json:"product_title"`
	CurrentQuantity int               `json:"current_quantity"`
	NewQuantity     int               `json:"new_quantity"`
	MatchType       MatchType         `json:"match_type"`
	Confidence      float64           `json:"confidence,omitempty"`
	Fields          map[string]string `json:"fields,omitempty"`
}

// Matcher compares feed SKUs against a catalog index.
type Matcher struct {
	threshold int
}

// NewMatcher creates a matcher with the given fuzzy threshold (0-100).
// Out-of-range values are clamped; zero or negative falls back to the
// default.
func NewMatcher(threshold int) *Matcher {
	if threshold <= 0 {
		threshold = config.DefaultFuzzyThreshold
	}
	if threshold > 100 {
		threshold = 100
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the configured fuzzy threshold.
func (m *Matcher) Threshold() int {
	return m.threshold
}

// Match reconciles mapped feed rows against the catalog index. Rows with a
// blank SKU are skipped; everything else yields exactly one result in input
// order. The index is read-only and safe to share across calls.
func (m *Matcher) Match(rows []feeds.Row, index map[string]shopify.CatalogVariant) []MatchResult {
	keys := make([]string, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	// Scans over the index run in sorted key order so repeated calls with
	// the same inputs produce the same winner.
	sort.Strings(keys)

	results := make([]MatchResult, 0, len(rows))
	for _, row := range rows {
		sku := strings.TrimSpace(row[mapping.FieldSKU])
		if utils.IsBlank(sku) {
			continue
		}
		quantity := NormalizeQuantity(row[mapping.FieldQuantity])
		results = append(results, m.matchOne(sku, quantity, extraFields(row), index, keys))
	}
	return results
}

func (m *Matcher) matchOne(sku string, quantity int, fields map[string]string, index map[string]shopify.CatalogVariant, keys []string) MatchResult {
	if variant, ok := index[sku]; ok {
		return matched(sku, variant, quantity, MatchTypeExact, 1.0, fields)
	}

	for _, key := range keys {
		if strings.EqualFold(key, sku) {
			return matched(sku, index[key], quantity, MatchTypeExact, 1.0, fields)
		}
	}

	bestScore := 0
	bestKey := ""
	for _, key := range keys {
		// Strictly greater keeps the first candidate on ties.
		if score := Ratio(sku, key); score > bestScore {
			bestScore = score
			bestKey = key
		}
	}
	if bestScore >= m.threshold {
		return matched(sku, index[bestKey], quantity, MatchTypeFuzzy, float64(bestScore)/100, fields)
	}

	return MatchResult{
		FileSKU:      sku,
		ProductTitle: NoMatchTitle,
		NewQuantity:  quantity,
		MatchType:    MatchTypeNoMatch,
		Fields:       fields,
	}
}

func matched(sku string, variant shopify.CatalogVariant, quantity int, matchType MatchType, confidence float64, fields map[string]string) MatchResult {
	return MatchResult{
		FileSKU:         sku,
		MatchedSKU:      variant.SKU,
		VariantID:       variant.VariantID,
		ProductID:       variant.ProductID,
		InventoryItemID: variant.InventoryItemID,
		ProductTitle:    variant.ProductTitle,
		CurrentQuantity: variant.InventoryQuantity,
		NewQuantity:     quantity,
		MatchType:       matchType,
		Confidence:      confidence,
		Fields:          fields,
	}
}

// extraFields copies the mapped row values the sync engine may write,
// dropping the SKU and quantity keys already carried on the result and any
// blank cells.
func extraFields(row feeds.Row) map[string]string {
	var fields map[string]string
	for key, value := range row {
		if key == mapping.FieldSKU || key == mapping.FieldQuantity {
			continue
		}
		if utils.IsBlank(value) {
			continue
		}
		if fields == nil {
			fields = make(map[string]string)
		}
		fields[key] = value
	}
	return fields
}
