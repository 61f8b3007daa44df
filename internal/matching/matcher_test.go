package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/computerwizzy/shopify-inventory-sync/internal/feeds"
	"github.com/computerwizzy/shopify-inventory-sync/internal/shopify"
)

func testIndex() map[string]shopify.CatalogVariant {
	return map[string]shopify.CatalogVariant{
		"ABC-123": {
			SKU: "ABC-123", VariantID: 11, ProductID: 1, InventoryItemID: 101,
			ProductTitle: "Widget Red", InventoryQuantity: 4, Price: "19.99",
		},
		"DEF-456": {
			SKU: "DEF-456", VariantID: 12, ProductID: 1, InventoryItemID: 102,
			ProductTitle: "Widget Blue", InventoryQuantity: 9, Price: "24.99",
		},
		"xyz-789": {
			SKU: "xyz-789", VariantID: 13, ProductID: 2, InventoryItemID: 103,
			ProductTitle: "Gadget", InventoryQuantity: 0, Price: "5.00",
		},
	}
}

func TestMatcher_ExactMatch(t *testing.T) {
	m := NewMatcher(85)

	rows := []feeds.Row{{"sku": "ABC-123", "quantity": "7"}}
	results := m.Match(rows, testIndex())

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, MatchTypeExact, r.MatchType)
	assert.Equal(t, 1.0, r.Confidence)
	assert.Equal(t, "ABC-123", r.MatchedSKU)
	assert.Equal(t, int64(11), r.VariantID)
	assert.Equal(t, int64(101), r.InventoryItemID)
	assert.Equal(t, "Widget Red", r.ProductTitle)
	assert.Equal(t, 4, r.CurrentQuantity)
	assert.Equal(t, 7, r.NewQuantity)
}

func TestMatcher_CaseInsensitiveExact(t *testing.T) {
	m := NewMatcher(85)

	rows := []feeds.Row{{"sku": "XYZ-789", "quantity": "3"}}
	results := m.Match(rows, testIndex())

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, MatchTypeExact, r.MatchType)
	assert.Equal(t, 1.0, r.Confidence, "case-insensitive hits count as exact")
	assert.Equal(t, "xyz-789", r.MatchedSKU, "matched SKU keeps the catalog's casing")
	assert.Equal(t, "XYZ-789", r.FileSKU)
}

func TestMatcher_FuzzyMatch(t *testing.T) {
	m := NewMatcher(85)

	// One substitution in seven characters: ratio 86
	rows := []feeds.Row{{"sku": "ABC-124", "quantity": "2"}}
	results := m.Match(rows, testIndex())

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, MatchTypeFuzzy, r.MatchType)
	assert.Equal(t, "ABC-123", r.MatchedSKU)
	assert.InDelta(t, 0.86, r.Confidence, 0.001)
	assert.GreaterOrEqual(t, r.Confidence, 0.85)
}

func TestMatcher_ThresholdBoundary(t *testing.T) {
	index := map[string]shopify.CatalogVariant{
		// Ratio("ABCDEFGHIJKLMNOPQRST", "ABCDEFGHIJKLMNOPQRSX") = 95
		"ABCDEFGHIJKLMNOPQRSX": {SKU: "ABCDEFGHIJKLMNOPQRSX", VariantID: 1, ProductTitle: "Close"},
	}
	rows := []feeds.Row{{"sku": "ABCDEFGHIJKLMNOPQRST", "quantity": "1"}}

	atThreshold := NewMatcher(95).Match(rows, index)
	require.Len(t, atThreshold, 1)
	assert.Equal(t, MatchTypeFuzzy, atThreshold[0].MatchType, "score equal to threshold matches")

	aboveThreshold := NewMatcher(96).Match(rows, index)
	require.Len(t, aboveThreshold, 1)
	assert.Equal(t, MatchTypeNoMatch, aboveThreshold[0].MatchType, "score one below threshold does not match")
}

func TestMatcher_NoMatchSentinel(t *testing.T) {
	m := NewMatcher(85)

	rows := []feeds.Row{{"sku": "TOTALLY-DIFFERENT", "quantity": "5"}}
	results := m.Match(rows, testIndex())

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, MatchTypeNoMatch, r.MatchType)
	assert.Equal(t, NoMatchTitle, r.ProductTitle)
	assert.Equal(t, "TOTALLY-DIFFERENT", r.FileSKU)
	assert.Empty(t, r.MatchedSKU)
	assert.Zero(t, r.Confidence)
	assert.Zero(t, r.CurrentQuantity)
	assert.Equal(t, 5, r.NewQuantity, "quantity is still carried for reporting")
}

func TestMatcher_TieBreakFirstCandidate(t *testing.T) {
	// Both catalog SKUs are one edit away from the input; the scan runs in
	// sorted key order so the lexicographically first candidate wins.
	index := map[string]shopify.CatalogVariant{
		"SKU-AAA-1": {SKU: "SKU-AAA-1", VariantID: 1, ProductTitle: "First"},
		"SKU-AAA-3": {SKU: "SKU-AAA-3", VariantID: 2, ProductTitle: "Second"},
	}
	rows := []feeds.Row{{"sku": "SKU-AAA-2", "quantity": "1"}}

	for i := 0; i < 5; i++ {
		results := NewMatcher(85).Match(rows, index)
		require.Len(t, results, 1)
		assert.Equal(t, MatchTypeFuzzy, results[0].MatchType)
		assert.Equal(t, "SKU-AAA-1", results[0].MatchedSKU)
	}
}

func TestMatcher_SkipsBlankSKUs(t *testing.T) {
	m := NewMatcher(85)

	rows := []feeds.Row{
		{"sku": "ABC-123", "quantity": "1"},
		{"sku": "", "quantity": "4"},
		{"sku": "   ", "quantity": "4"},
		{"sku": "nan", "quantity": "4"},
		{"sku": "DEF-456", "quantity": "2"},
	}
	results := m.Match(rows, testIndex())

	require.Len(t, results, 2)
	assert.Equal(t, "ABC-123", results[0].FileSKU)
	assert.Equal(t, "DEF-456", results[1].FileSKU)
}

func TestMatcher_PreservesInputOrder(t *testing.T) {
	m := NewMatcher(85)

	rows := []feeds.Row{
		{"sku": "DEF-456", "quantity": "1"},
		{"sku": "MISSING-SKU-READ", "quantity": "2"},
		{"sku": "ABC-123", "quantity": "3"},
	}
	results := m.Match(rows, testIndex())

	require.Len(t, results, 3)
	assert.Equal(t, "DEF-456", results[0].FileSKU)
	assert.Equal(t, "MISSING-SKU-READ", results[1].FileSKU)
	assert.Equal(t, "ABC-123", results[2].FileSKU)
}

func TestMatcher_Idempotent(t *testing.T) {
	m := NewMatcher(85)
	rows := []feeds.Row{
		{"sku": "ABC-123", "quantity": "7"},
		{"sku": "ABC-124", "quantity": "2"},
		{"sku": "UNKNOWN-1", "quantity": "9"},
	}
	index := testIndex()

	first := m.Match(rows, index)
	second := m.Match(rows, index)
	assert.Equal(t, first, second)
}

func TestMatcher_CarriesExtraFields(t *testing.T) {
	m := NewMatcher(85)

	rows := []feeds.Row{{
		"sku":      "ABC-123",
		"quantity": "7",
		"price":    "18.50",
		"title":    "Widget Red (2024)",
		"vendor":   "",
	}}
	results := m.Match(rows, testIndex())

	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, "18.50", r.Fields["price"])
	assert.Equal(t, "Widget Red (2024)", r.Fields["title"])
	_, hasVendor := r.Fields["vendor"]
	assert.False(t, hasVendor, "blank cells are dropped")
	_, hasSKU := r.Fields["sku"]
	assert.False(t, hasSKU)
}

func TestNewMatcher_Clamps(t *testing.T) {
	assert.Equal(t, 85, NewMatcher(0).Threshold())
	assert.Equal(t, 85, NewMatcher(-10).Threshold())
	assert.Equal(t, 100, NewMatcher(150).Threshold())
	assert.Equal(t, 60, NewMatcher(60).Threshold())
}

func TestMatcher_EmptyIndex(t *testing.T) {
	m := NewMatcher(85)

	rows := []feeds.Row{{"sku": "ABC-123", "quantity": "7"}}
	results := m.Match(rows, map[string]shopify.CatalogVariant{})

	require.Len(t, results, 1)
	assert.Equal(t, MatchTypeNoMatch, results[0].MatchType)
}
