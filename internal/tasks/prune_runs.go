package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// SyncRunPruner provides the ability to delete old sync run records.
type SyncRunPruner interface {
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// PruneSyncRunsTask removes sync run records older than the configured
// retention period. The per-job rolling cap already bounds history size;
// this task bounds its age.
type PruneSyncRunsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for run pruning tasks.
func (t PruneSyncRunsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_sync_runs",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PruneSyncRunsProcessor creates a processor function for PruneSyncRunsTask.
func PruneSyncRunsProcessor(pruner SyncRunPruner) backlite.QueueProcessor[PruneSyncRunsTask] {
	return func(ctx context.Context, task PruneSyncRunsTask) error {
		if pruner == nil {
			return fmt.Errorf("sync run pruner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 90
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)

		deleted, err := pruner.DeleteOlderThan(cutoff)
		if err != nil {
			return fmt.Errorf("prune sync runs: %w", err)
		}

		log.Printf("[TASK] Pruned %d sync run(s) older than %d days", deleted, retentionDays)
		return nil
	}
}

// NewPruneSyncRunsQueue creates a backlite queue for run pruning tasks.
func NewPruneSyncRunsQueue(pruner SyncRunPruner) backlite.Queue {
	return backlite.NewQueue(PruneSyncRunsProcessor(pruner))
}
