// Package runs provides database operations for the sync run history.
//
// History is a rolling log: after each append the per-job history is pruned
// down to the configured cap, oldest rows first.
package runs

import (
	"time"

	"gorm.io/gorm"

	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
)

// Repository handles all sync run database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new runs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append records one finished execution.
func (r *Repository) Append(run *entities.SyncRun) error {
	return r.db.Create(run).Error
}

// PruneHistory deletes a job's runs beyond the cap, keeping the most recent
// rows. Returns the number of deleted runs. A cap of zero or less is a no-op.
func (r *Repository) PruneHistory(jobID uint, cap int) (int64, error) {
	if cap <= 0 {
		return 0, nil
	}
	keep := r.db.Model(&entities.SyncRun{}).
		Select("id").
		Where("job_id = ?", jobID).
		Order("started_at DESC, id DESC").
		Limit(cap)
	result := r.db.Where("job_id = ? AND id NOT IN (?)", jobID, keep).Delete(&entities.SyncRun{})
	return result.RowsAffected, result.Error
}

// GetByRunID retrieves a run by its public identifier.
func (r *Repository) GetByRunID(runID string) (*entities.SyncRun, error) {
	var run entities.SyncRun
	err := r.db.Where("run_id = ?", runID).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListByJob retrieves a job's runs, most recent first.
func (r *Repository) ListByJob(jobID uint, limit int) ([]entities.SyncRun, error) {
	var runs []entities.SyncRun
	query := r.db.Where("job_id = ?", jobID).Order("started_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&runs).Error
	return runs, err
}

// ListRecent retrieves the latest runs across all jobs.
func (r *Repository) ListRecent(limit int) ([]entities.SyncRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []entities.SyncRun
	err := r.db.Order("started_at DESC, id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// DeleteByJob purges all history for a job. Called when the job is deleted.
func (r *Repository) DeleteByJob(jobID uint) (int64, error) {
	result := r.db.Where("job_id = ?", jobID).Delete(&entities.SyncRun{})
	return result.RowsAffected, result.Error
}

// DeleteOlderThan removes runs that finished before the cutoff.
// Returns the number of deleted runs.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("started_at < ?", cutoff).Delete(&entities.SyncRun{})
	return result.RowsAffected, result.Error
}

// CountSince returns how many runs started after the given time, and how
// many of those failed.
func (r *Repository) CountSince(since time.Time) (total int64, failed int64, err error) {
	err = r.db.Model(&entities.SyncRun{}).Where("started_at > ?", since).Count(&total).Error
	if err != nil {
		return
	}
	err = r.db.Model(&entities.SyncRun{}).Where("started_at > ? AND success = ?", since, false).Count(&failed).Error
	return
}
