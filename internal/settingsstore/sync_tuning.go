package settingsstore

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/computerwizzy/shopify-inventory-sync/internal/config"
	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
)

// SyncTuning represents the effective runtime tuning for sync runs
type SyncTuning struct {
	FuzzyThreshold    int  `json:"fuzzy_threshold"`
	BatchSize         int  `json:"batch_size"`
	BatchPauseSeconds int  `json:"batch_pause_seconds"`
	SkipZeroInventory bool `json:"skip_zero_inventory"`
	HistoryCap        int  `json:"history_cap"`
}

// SyncTuningInfo includes source information for each field
type SyncTuningInfo struct {
	FuzzyThreshold       int    `json:"fuzzy_threshold"`
	FuzzyThresholdSource string `json:"fuzzy_threshold_source"` // "database", "environment", "default"

	BatchSize       int    `json:"batch_size"`
	BatchSizeSource string `json:"batch_size_source"`

	BatchPauseSeconds int    `json:"batch_pause_seconds"`
	BatchPauseSource  string `json:"batch_pause_source"`

	SkipZeroInventory       bool   `json:"skip_zero_inventory"`
	SkipZeroInventorySource string `json:"skip_zero_inventory_source"`

	HistoryCap       int    `json:"history_cap"`
	HistoryCapSource string `json:"history_cap_source"`
}

// parseIntInRange accepts a decimal string within [lo, hi]. Out-of-range or
// unparseable values are treated as absent so the next source applies.
func parseIntInRange(raw string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}

// GetFuzzyThreshold returns the minimum fuzzy match score (database > env > default)
func (s *SettingsStore) GetFuzzyThreshold() int {
	// Try database first
	setting, err := s.settings.GetSetting(entities.SettingKeyFuzzyThreshold)
	if err == nil && setting.Value != "" {
		if n, ok := parseIntInRange(setting.Value, 0, 100); ok {
			return n
		}
	}

	// Try environment variable
	if envVal := os.Getenv("FUZZY_MATCH_THRESHOLD"); envVal != "" {
		if n, ok := parseIntInRange(envVal, 0, 100); ok {
			return n
		}
	}

	return config.DefaultFuzzyThreshold
}

// GetFuzzyThresholdSource returns the source of the threshold setting
func (s *SettingsStore) GetFuzzyThresholdSource() string {
	setting, err := s.settings.GetSetting(entities.SettingKeyFuzzyThreshold)
	if err == nil && setting.Value != "" {
		if _, ok := parseIntInRange(setting.Value, 0, 100); ok {
			return "database"
		}
	}
	if envVal := os.Getenv("FUZZY_MATCH_THRESHOLD"); envVal != "" {
		if _, ok := parseIntInRange(envVal, 0, 100); ok {
			return "environment"
		}
	}
	return "default"
}

// SetFuzzyThreshold saves the threshold to database
func (s *SettingsStore) SetFuzzyThreshold(threshold int) error {
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("fuzzy threshold must be between 0 and 100, got %d", threshold)
	}
	return s.settings.SetSetting(entities.SettingKeyFuzzyThreshold, strconv.Itoa(threshold))
}

// GetBatchSize returns how many items are written per batch (database > env > default)
func (s *SettingsStore) GetBatchSize() int {
	// Try database first
	setting, err := s.settings.GetSetting(entities.SettingKeyBatchSize)
	if err == nil && setting.Value != "" {
		if n, ok := parseIntInRange(setting.Value, 1, 250); ok {
			return n
		}
	}

	// Try environment variable
	if envVal := os.Getenv("SYNC_BATCH_SIZE"); envVal != "" {
		if n, ok := parseIntInRange(envVal, 1, 250); ok {
			return n
		}
	}

	return config.DefaultBatchSize
}

// GetBatchSizeSource returns the source of the batch size setting
func (s *SettingsStore) GetBatchSizeSource() string {
	setting, err := s.settings.GetSetting(entities.SettingKeyBatchSize)
	if err == nil && setting.Value != "" {
		if _, ok := parseIntInRange(setting.Value, 1, 250); ok {
			return "database"
		}
	}
	if envVal := os.Getenv("SYNC_BATCH_SIZE"); envVal != "" {
		if _, ok := parseIntInRange(envVal, 1, 250); ok {
			return "environment"
		}
	}
	return "default"
}

// SetBatchSize saves the batch size to database
func (s *SettingsStore) SetBatchSize(size int) error {
	if size < 1 || size > 250 {
		return fmt.Errorf("batch size must be between 1 and 250, got %d", size)
	}
	return s.settings.SetSetting(entities.SettingKeyBatchSize, strconv.Itoa(size))
}

// GetBatchPause returns the pause between write batches (database > env > default)
func (s *SettingsStore) GetBatchPause() time.Duration {
	// Try database first; the database stores whole seconds
	setting, err := s.settings.GetSetting(entities.SettingKeyBatchPauseSeconds)
	if err == nil && setting.Value != "" {
		if n, ok := parseIntInRange(setting.Value, 0, 3600); ok {
			return time.Duration(n) * time.Second
		}
	}

	// Try environment variable; the environment uses a Go duration string
	if envVal := os.Getenv("SYNC_BATCH_PAUSE"); envVal != "" {
		if d, err := time.ParseDuration(envVal); err == nil && d >= 0 {
			return d
		}
	}

	return time.Duration(config.DefaultBatchPauseSeconds) * time.Second
}

// GetBatchPauseSource returns the source of the batch pause setting
func (s *SettingsStore) GetBatchPauseSource() string {
	setting, err := s.settings.GetSetting(entities.SettingKeyBatchPauseSeconds)
	if err == nil && setting.Value != "" {
		if _, ok := parseIntInRange(setting.Value, 0, 3600); ok {
			return "database"
		}
	}
	if envVal := os.Getenv("SYNC_BATCH_PAUSE"); envVal != "" {
		if d, err := time.ParseDuration(envVal); err == nil && d >= 0 {
			return "environment"
		}
	}
	return "default"
}

// SetBatchPauseSeconds saves the pause between batches to database
func (s *SettingsStore) SetBatchPauseSeconds(seconds int) error {
	if seconds < 0 || seconds > 3600 {
		return fmt.Errorf("batch pause must be between 0 and 3600 seconds, got %d", seconds)
	}
	return s.settings.SetSetting(entities.SettingKeyBatchPauseSeconds, strconv.Itoa(seconds))
}

// GetSkipZeroInventory returns whether zero-quantity rows are skipped (database > env > default)
func (s *SettingsStore) GetSkipZeroInventory() bool {
	// Try database first
	setting, err := s.settings.GetSetting(entities.SettingKeySkipZeroInventory)
	if err == nil && setting.Value != "" {
		return setting.Value == "true" || setting.Value == "1"
	}

	// Try environment variable
	if envVal := os.Getenv("SYNC_SKIP_ZERO_INVENTORY"); envVal != "" {
		return envVal == "true" || envVal == "1"
	}

	// Default: zero quantities are written out like any other value
	return false
}

// GetSkipZeroInventorySource returns the source of the skip setting
func (s *SettingsStore) GetSkipZeroInventorySource() string {
	setting, err := s.settings.GetSetting(entities.SettingKeySkipZeroInventory)
	if err == nil && setting.Value != "" {
		return "database"
	}
	if envVal := os.Getenv("SYNC_SKIP_ZERO_INVENTORY"); envVal != "" {
		return "environment"
	}
	return "default"
}

// SetSkipZeroInventory saves the skip setting to database
func (s *SettingsStore) SetSkipZeroInventory(skip bool) error {
	return s.settings.SetSetting(entities.SettingKeySkipZeroInventory, strconv.FormatBool(skip))
}

// GetHistoryCap returns how many run records are kept per job (database > env > default)
func (s *SettingsStore) GetHistoryCap() int {
	// Try database first
	setting, err := s.settings.GetSetting(entities.SettingKeyHistoryCap)
	if err == nil && setting.Value != "" {
		if n, ok := parseIntInRange(setting.Value, 1, 10000); ok {
			return n
		}
	}

	// Try environment variable
	if envVal := os.Getenv("SCHEDULER_HISTORY_CAP"); envVal != "" {
		if n, ok := parseIntInRange(envVal, 1, 10000); ok {
			return n
		}
	}

	return config.DefaultHistoryCap
}

// GetHistoryCapSource returns the source of the history cap setting
func (s *SettingsStore) GetHistoryCapSource() string {
	setting, err := s.settings.GetSetting(entities.SettingKeyHistoryCap)
	if err == nil && setting.Value != "" {
		if _, ok := parseIntInRange(setting.Value, 1, 10000); ok {
			return "database"
		}
	}
	if envVal := os.Getenv("SCHEDULER_HISTORY_CAP"); envVal != "" {
		if _, ok := parseIntInRange(envVal, 1, 10000); ok {
			return "environment"
		}
	}
	return "default"
}

// SetHistoryCap saves the history cap to database
func (s *SettingsStore) SetHistoryCap(limit int) error {
	if limit < 1 || limit > 10000 {
		return fmt.Errorf("history cap must be between 1 and 10000, got %d", limit)
	}
	return s.settings.SetSetting(entities.SettingKeyHistoryCap, strconv.Itoa(limit))
}

// GetSyncTuning returns the effective tuning values across all sources
func (s *SettingsStore) GetSyncTuning() SyncTuning {
	return SyncTuning{
		FuzzyThreshold:    s.GetFuzzyThreshold(),
		BatchSize:         s.GetBatchSize(),
		BatchPauseSeconds: int(s.GetBatchPause() / time.Second),
		SkipZeroInventory: s.GetSkipZeroInventory(),
		HistoryCap:        s.GetHistoryCap(),
	}
}

// GetSyncTuningInfo reports each tuning value together with where it came from
func (s *SettingsStore) GetSyncTuningInfo() SyncTuningInfo {
	return SyncTuningInfo{
		FuzzyThreshold:          s.GetFuzzyThreshold(),
		FuzzyThresholdSource:    s.GetFuzzyThresholdSource(),
		BatchSize:               s.GetBatchSize(),
		BatchSizeSource:         s.GetBatchSizeSource(),
		BatchPauseSeconds:       int(s.GetBatchPause() / time.Second),
		BatchPauseSource:        s.GetBatchPauseSource(),
		SkipZeroInventory:       s.GetSkipZeroInventory(),
		SkipZeroInventorySource: s.GetSkipZeroInventorySource(),
		HistoryCap:              s.GetHistoryCap(),
		HistoryCapSource:        s.GetHistoryCapSource(),
	}
}

// ResetSyncTuning removes all database overrides so environment values and
// compiled defaults apply again
func (s *SettingsStore) ResetSyncTuning() error {
	keys := []string{
		entities.SettingKeyFuzzyThreshold,
		entities.SettingKeyBatchSize,
		entities.SettingKeyBatchPauseSeconds,
		entities.SettingKeySkipZeroInventory,
		entities.SettingKeyHistoryCap,
	}
	for _, key := range keys {
		if err := s.settings.DeleteSetting(key); err != nil {
			return err
		}
	}
	return nil
}
