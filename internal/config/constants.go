package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./inventory-sync.db"
)

// Matching defaults
const (
	// DefaultFuzzyThreshold is the minimum similarity score (0-100) for a
	// fuzzy SKU match to be accepted
	DefaultFuzzyThreshold = 85

	// DefaultHistoryCap is how many execution records are kept per job
	DefaultHistoryCap = 100
)

// Sync execution defaults
const (
	// DefaultBatchSize is how many items are written per batch
	DefaultBatchSize = 5

	// DefaultBatchPauseSeconds is the pause between batches
	DefaultBatchPauseSeconds = 1
)
