package matching

// FilterOptions selects which match results survive Filter.
type FilterOptions struct {
	IncludeExact        bool
	IncludeFuzzy        bool
	MinConfidence       float64
	ExcludeZeroQuantity bool
}

// Filter returns the results allowed by the options, preserving order.
// No-match rows are always excluded; they carry nothing to sync.
func Filter(results []MatchResult, opts FilterOptions) []MatchResult {
	filtered := make([]MatchResult, 0, len(results))
	for _, result := range results {
		switch result.MatchType {
		case MatchTypeExact:
			if !opts.IncludeExact {
				continue
			}
		case MatchTypeFuzzy:
			if !opts.IncludeFuzzy {
				continue
			}
		default:
			continue
		}
		if opts.MinConfidence > 0 && result.Confidence < opts.MinConfidence {
			continue
		}
		if opts.ExcludeZeroQuantity && result.NewQuantity == 0 {
			continue
		}
		filtered = append(filtered, result)
	}
	return filtered
}
