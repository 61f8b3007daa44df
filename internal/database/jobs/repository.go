// Package jobs provides database operations for scheduled sync jobs.
//
// # Usage
//
//	repo := jobs.NewRepository(db)
//	job, err := repo.GetJobByID(12)
package jobs

import (
	"time"

	"gorm.io/gorm"

	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
)

// Repository handles all scheduled job database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new jobs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateJob persists a new scheduled job.
func (r *Repository) CreateJob(job *entities.ScheduledJob) error {
	return r.db.Create(job).Error
}

// GetJobByID retrieves a job with its feed source preloaded.
func (r *Repository) GetJobByID(id uint) (*entities.ScheduledJob, error) {
	var job entities.ScheduledJob
	err := r.db.Preload("FeedSource").First(&job, id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJobByName retrieves a job by its unique name.
func (r *Repository) GetJobByName(name string) (*entities.ScheduledJob, error) {
	var job entities.ScheduledJob
	err := r.db.Preload("FeedSource").Where("name = ?", name).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetAllJobs lists every job ordered by name.
func (r *Repository) GetAllJobs() ([]entities.ScheduledJob, error) {
	var jobs []entities.ScheduledJob
	err := r.db.Preload("FeedSource").Order("name ASC").Find(&jobs).Error
	return jobs, err
}

// GetEnabledJobs lists jobs that should be registered with the scheduler.
func (r *Repository) GetEnabledJobs() ([]entities.ScheduledJob, error) {
	var jobs []entities.ScheduledJob
	err := r.db.Preload("FeedSource").Where("enabled = ?", true).Order("id ASC").Find(&jobs).Error
	return jobs, err
}

// CountJobsForFeed returns how many jobs reference a feed source.
func (r *Repository) CountJobsForFeed(feedSourceID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.ScheduledJob{}).Where("feed_source_id = ?", feedSourceID).Count(&count).Error
	return count, err
}

// UpdateJob saves changes to an existing job.
func (r *Repository) UpdateJob(job *entities.ScheduledJob) error {
	return r.db.Save(job).Error
}

// SetEnabled toggles a job without touching the rest of the row.
func (r *Repository) SetEnabled(id uint, enabled bool) error {
	return r.db.Model(&entities.ScheduledJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"enabled":    enabled,
			"updated_at": time.Now(),
		}).Error
}

// DeleteJob removes a job.
func (r *Repository) DeleteJob(id uint) error {
	return r.db.Delete(&entities.ScheduledJob{}, id).Error
}

// RecordRunStart bumps the run counter and stamps the start of an execution.
func (r *Repository) RecordRunStart(id uint, startedAt time.Time) error {
	return r.db.Model(&entities.ScheduledJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"run_count":   gorm.Expr("run_count + 1"),
			"last_run_at": startedAt,
			"updated_at":  time.Now(),
		}).Error
}

// RecordRunResult bumps the success or error counter after an execution.
// On success the last error is cleared.
func (r *Repository) RecordRunResult(id uint, succeeded bool, errorMsg string, finishedAt time.Time) error {
	updates := map[string]any{
		"updated_at": time.Now(),
	}
	if succeeded {
		updates["success_count"] = gorm.Expr("success_count + 1")
		updates["last_success"] = finishedAt
		updates["last_error"] = ""
	} else {
		updates["error_count"] = gorm.Expr("error_count + 1")
		updates["last_error"] = errorMsg
	}
	return r.db.Model(&entities.ScheduledJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}
