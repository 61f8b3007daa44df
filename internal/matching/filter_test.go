package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []MatchResult {
	return []MatchResult{
		{FileSKU: "A", MatchedSKU: "A", MatchType: MatchTypeExact, Confidence: 1.0, NewQuantity: 5},
		{FileSKU: "B", MatchedSKU: "B1", MatchType: MatchTypeFuzzy, Confidence: 0.91, NewQuantity: 0},
		{FileSKU: "C", MatchedSKU: "C1", MatchType: MatchTypeFuzzy, Confidence: 0.86, NewQuantity: 3},
		{FileSKU: "D", ProductTitle: NoMatchTitle, MatchType: MatchTypeNoMatch, NewQuantity: 9},
		{FileSKU: "E", MatchedSKU: "E", MatchType: MatchTypeExact, Confidence: 1.0, NewQuantity: 0},
	}
}

func TestFilter_ExactOnly(t *testing.T) {
	filtered := Filter(sampleResults(), FilterOptions{IncludeExact: true})

	require.Len(t, filtered, 2)
	assert.Equal(t, "A", filtered[0].FileSKU)
	assert.Equal(t, "E", filtered[1].FileSKU)
}

func TestFilter_ExactAndFuzzy(t *testing.T) {
	filtered := Filter(sampleResults(), FilterOptions{IncludeExact: true, IncludeFuzzy: true})

	require.Len(t, filtered, 4)
	for _, r := range filtered {
		assert.NotEqual(t, MatchTypeNoMatch, r.MatchType, "no-match rows never pass the filter")
	}
}

func TestFilter_MinConfidence(t *testing.T) {
	filtered := Filter(sampleResults(), FilterOptions{
		IncludeExact:  true,
		IncludeFuzzy:  true,
		MinConfidence: 0.90,
	})

	require.Len(t, filtered, 3)
	for _, r := range filtered {
		assert.GreaterOrEqual(t, r.Confidence, 0.90)
	}
}

func TestFilter_ExcludeZeroQuantity(t *testing.T) {
	filtered := Filter(sampleResults(), FilterOptions{
		IncludeExact:        true,
		IncludeFuzzy:        true,
		ExcludeZeroQuantity: true,
	})

	require.Len(t, filtered, 2)
	assert.Equal(t, "A", filtered[0].FileSKU)
	assert.Equal(t, "C", filtered[1].FileSKU)
}

func TestFilter_NothingIncluded(t *testing.T) {
	filtered := Filter(sampleResults(), FilterOptions{})
	assert.Empty(t, filtered)
}

func TestStatistics(t *testing.T) {
	stats := Statistics(sampleResults())

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Exact)
	assert.Equal(t, 2, stats.Fuzzy)
	assert.Equal(t, 1, stats.NoMatch)
	assert.InDelta(t, 0.8, stats.MatchRate, 0.001)
	assert.InDelta(t, 0.885, stats.AvgFuzzyConfidence, 0.001)
}

func TestStatistics_Empty(t *testing.T) {
	stats := Statistics(nil)

	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.MatchRate)
	assert.Zero(t, stats.AvgFuzzyConfidence)
}
