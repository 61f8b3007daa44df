package audit

import (
	"encoding/json"
	"log"
	"time"

	"github.com/computerwizzy/shopify-inventory-sync/internal/database/audit"
	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// LogJob records a job configuration change (create, update, delete, enable).
func (s *Service) LogJob(action string, jobID uint, description string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventJob,
		Action:      action,
		Description: description,
		EntityType:  "job",
		EntityID:    &jobID,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogFeed records a feed source change or connection test.
func (s *Service) LogFeed(action string, feedID uint, description string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventFeed,
		Action:      action,
		Description: description,
		EntityType:  "feed_source",
		EntityID:    &feedID,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogSyncRun records the outcome of one sync execution. The run id lands in
// the metadata so the event can be joined back to the run history.
func (s *Service) LogSyncRun(jobID uint, runID, description string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventSync,
		Action:      "sync_run",
		Description: description,
		EntityType:  "job",
		EntityID:    &jobID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{"run_id": runID}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogSettings records a settings change event.
func (s *Service) LogSettings(action, description string) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventSettings,
		Action:      action,
		Description: description,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogCache records a catalog cache event (manual refresh, invalidation).
func (s *Service) LogCache(action, description string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventCache,
		Action:      action,
		Description: description,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, limit, offset)
}

// GetEventsForEntity retrieves the recent events touching one entity.
func (s *Service) GetEventsForEntity(entityType string, entityID uint, limit int) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsForEntity(entityType, entityID, limit)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
