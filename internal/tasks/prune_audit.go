package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// AuditEventPruner provides the ability to delete old audit events.
type AuditEventPruner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// PruneAuditEventsTask removes audit events older than the configured
// retention period.
type PruneAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit pruning tasks.
func (t PruneAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_audit_events",
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

// PruneAuditEventsProcessor creates a processor function for PruneAuditEventsTask.
func PruneAuditEventsProcessor(pruner AuditEventPruner) backlite.QueueProcessor[PruneAuditEventsTask] {
	return func(ctx context.Context, task PruneAuditEventsTask) error {
		if pruner == nil {
			return fmt.Errorf("audit event pruner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 30
		}
		retention := time.Duration(retentionDays) * 24 * time.Hour

		deleted, err := pruner.DeleteOldEvents(retention)
		if err != nil {
			return fmt.Errorf("prune audit events: %w", err)
		}

		log.Printf("[TASK] Pruned %d audit event(s) older than %d days", deleted, retentionDays)
		return nil
	}
}

// NewPruneAuditEventsQueue creates a backlite queue for audit pruning tasks.
func NewPruneAuditEventsQueue(pruner AuditEventPruner) backlite.Queue {
	return backlite.NewQueue(PruneAuditEventsProcessor(pruner))
}
