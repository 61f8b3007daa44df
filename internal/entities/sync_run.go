package entities

import "time"

type RunTrigger string

const (
	RunTriggerScheduled RunTrigger = "scheduled"
	RunTriggerManual    RunTrigger = "manual"
)

// SyncRun is one append-only execution record. Per job the log is rolling:
// rows past the configured cap are pruned after each append.
type SyncRun struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	RunID string `gorm:"uniqueIndex;size:36" json:"run_id"`
	JobID uint   `gorm:"index" json:"job_id"`

	Trigger    RunTrigger `gorm:"size:20" json:"trigger"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	DurationMs int64      `json:"duration_ms"`
	Success    bool       `json:"success"`

	RecordsProcessed int `json:"records_processed"`
	RecordsMatched   int `json:"records_matched"`
	RecordsSynced    int `json:"records_synced"`
	RecordsFailed    int `json:"records_failed"`
	RecordsSkipped   int `json:"records_skipped"`

	Error string `gorm:"type:text" json:"error,omitempty"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}
