package scheduler

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JobOptions are per-job overrides for the global sync tuning. Zero values
// (nil for the skip flag) inherit the settings-store value at run time.
type JobOptions struct {
	BatchSize         int      `json:"batch_size,omitempty"`
	FuzzyThreshold    int      `json:"fuzzy_threshold,omitempty"`
	SkipZeroInventory *bool    `json:"skip_zero_inventory,omitempty"`
	SelectedColumns   []string `json:"selected_columns,omitempty"`
}

// ParseJobOptions decodes the options JSON stored on a job row. Blank input
// yields all-inherit options.
func ParseJobOptions(raw string) (JobOptions, error) {
	var opts JobOptions
	if strings.TrimSpace(raw) == "" {
		return opts, nil
	}
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return JobOptions{}, fmt.Errorf("invalid job options: %w", err)
	}
	return opts, nil
}
