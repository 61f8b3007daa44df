package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// Sync tuning settings (runtime overrides for env defaults)
	SettingKeyFuzzyThreshold    = "sync_fuzzy_threshold"
	SettingKeyBatchSize         = "sync_batch_size"
	SettingKeyBatchPauseSeconds = "sync_batch_pause_seconds"
	SettingKeySkipZeroInventory = "sync_skip_zero_inventory"
	SettingKeyHistoryCap        = "sync_history_cap"
)
