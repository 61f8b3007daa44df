package entities

import "time"

type TriggerType string

const (
	TriggerTypeCron     TriggerType = "cron"
	TriggerTypeInterval TriggerType = "interval"
)

// ScheduledJob binds a feed source to a recurrence trigger, a column mapping
// and a field-update policy. Counters and timestamps are mutated after every
// execution; the row itself is only removed by an explicit delete.
type ScheduledJob struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"uniqueIndex;size:100" json:"name"`
	FeedSourceID uint        `gorm:"index" json:"feed_source_id"`
	FeedSource   *FeedSource `gorm:"foreignKey:FeedSourceID" json:"feed_source,omitempty"`

	TriggerType     TriggerType `gorm:"size:20" json:"trigger_type"`
	CronExpr        string      `gorm:"size:100" json:"cron_expr,omitempty"`
	IntervalMinutes int         `json:"interval_minutes,omitempty"`

	// ColumnMapping holds job-level mapping overrides as JSON; entries win
	// over the feed's own mapping field-by-field.
	ColumnMapping string `gorm:"type:text" json:"column_mapping,omitempty"`

	// FieldPolicy is the SyncFieldPolicy serialized as JSON.
	FieldPolicy string `gorm:"type:text" json:"field_policy"`

	// Options holds batch size, skip-zero-inventory, fuzzy threshold and the
	// optional column subset, serialized as JSON.
	Options string `gorm:"type:text" json:"options,omitempty"`

	Enabled bool `gorm:"index" json:"enabled"`

	RunCount     int        `json:"run_count"`
	SuccessCount int        `json:"success_count"`
	ErrorCount   int        `json:"error_count"`
	LastRunAt    *time.Time `json:"last_run_at,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastError    string     `gorm:"type:text" json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ScheduledJob) TableName() string {
	return "scheduled_jobs"
}
