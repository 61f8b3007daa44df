package matching

// MatchStats summarizes one matching pass for previews and run reports.
type MatchStats struct {
	Total              int     `json:"total"`
	Exact              int     `json:"exact"`
	Fuzzy              int     `json:"fuzzy"`
	NoMatch            int     `json:"no_match"`
	MatchRate          float64 `json:"match_rate"`
	AvgFuzzyConfidence float64 `json:"avg_fuzzy_confidence"`
}

// Statistics tallies results by match type.
func Statistics(results []MatchResult) MatchStats {
	stats := MatchStats{Total: len(results)}

	fuzzySum := 0.0
	for _, result := range results {
		switch result.MatchType {
		case MatchTypeExact:
			stats.Exact++
		case MatchTypeFuzzy:
			stats.Fuzzy++
			fuzzySum += result.Confidence
		default:
			stats.NoMatch++
		}
	}

	if stats.Total > 0 {
		stats.MatchRate = float64(stats.Exact+stats.Fuzzy) / float64(stats.Total)
	}
	if stats.Fuzzy > 0 {
		stats.AvgFuzzyConfidence = fuzzySum / float64(stats.Fuzzy)
	}
	return stats
}
