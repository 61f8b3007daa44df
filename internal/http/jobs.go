package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/computerwizzy/shopify-inventory-sync/internal/audit"
	"github.com/computerwizzy/shopify-inventory-sync/internal/database/jobs"
	"github.com/computerwizzy/shopify-inventory-sync/internal/database/runs"
	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
	"github.com/computerwizzy/shopify-inventory-sync/internal/mapping"
	"github.com/computerwizzy/shopify-inventory-sync/internal/scheduler"
	"github.com/computerwizzy/shopify-inventory-sync/internal/syncer"
)

// JobsController handles scheduled job management endpoints.
type JobsController struct {
	scheduler *scheduler.Scheduler
	jobs      *jobs.Repository
	runs      *runs.Repository
	audit     *audit.Service
}

func NewJobsController(sched *scheduler.Scheduler, jobsRepo *jobs.Repository, runsRepo *runs.Repository, auditService *audit.Service) *JobsController {
	return &JobsController{
		scheduler: sched,
		jobs:      jobsRepo,
		runs:      runsRepo,
		audit:     auditService,
	}
}

// JobRequest is the request body for creating or updating a job.
type JobRequest struct {
	Name            string                  `json:"name" binding:"required"`
	FeedSourceID    uint                    `json:"feed_source_id" binding:"required"`
	TriggerType     string                  `json:"trigger_type" binding:"required"`
	CronExpr        string                  `json:"cron_expr"`
	IntervalMinutes int                     `json:"interval_minutes"`
	ColumnMapping   map[string]string       `json:"column_mapping"`
	FieldPolicy     *syncer.SyncFieldPolicy `json:"field_policy"`
	Options         *scheduler.JobOptions   `json:"options"`
	Enabled         *bool                   `json:"enabled"`
}

// JobResponse wraps a job with its live scheduling state.
type JobResponse struct {
	entities.ScheduledJob
	TriggerDescription string     `json:"trigger_description"`
	NextRun            *time.Time `json:"next_run,omitempty"`
	IsSyncing          bool       `json:"is_syncing"`
}

func (jc *JobsController) wrapJob(job entities.ScheduledJob) JobResponse {
	return JobResponse{
		ScheduledJob:       job,
		TriggerDescription: scheduler.TriggerDescription(&job),
		NextRun:            jc.scheduler.NextRunTime(job.ID),
		IsSyncing:          jc.scheduler.IsJobSyncing(job.ID),
	}
}

// applyRequest copies the definable fields onto a job entity, leaving
// counters and timestamps alone.
func (jc *JobsController) applyRequest(job *entities.ScheduledJob, req JobRequest) error {
	job.Name = req.Name
	job.FeedSourceID = req.FeedSourceID
	job.TriggerType = entities.TriggerType(req.TriggerType)
	job.CronExpr = req.CronExpr
	job.IntervalMinutes = req.IntervalMinutes

	if req.ColumnMapping != nil {
		mappingJSON, err := mapping.ToJSON(req.ColumnMapping)
		if err != nil {
			return err
		}
		job.ColumnMapping = mappingJSON
	}
	if req.FieldPolicy != nil {
		policyJSON, err := json.Marshal(req.FieldPolicy)
		if err != nil {
			return fmt.Errorf("failed to serialize field policy: %w", err)
		}
		job.FieldPolicy = string(policyJSON)
	}
	if req.Options != nil {
		optionsJSON, err := json.Marshal(req.Options)
		if err != nil {
			return fmt.Errorf("failed to serialize options: %w", err)
		}
		job.Options = string(optionsJSON)
	}
	if req.Enabled != nil {
		job.Enabled = *req.Enabled
	}
	return nil
}

// ListJobs returns all jobs with their scheduling state
// GET /api/jobs
func (jc *JobsController) ListJobs(c *gin.Context) {
	all, err := jc.jobs.GetAllJobs()
	if err != nil {
		respondInternalError(c, err, "list jobs")
		return
	}

	out := make([]JobResponse, 0, len(all))
	for _, job := range all {
		out = append(out, jc.wrapJob(job))
	}
	c.JSON(http.StatusOK, gin.H{"jobs": out, "total": len(out)})
}

// GetJob returns one job
// GET /api/jobs/:id
func (jc *JobsController) GetJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	job, err := jc.jobs.GetJobByID(id)
	if err != nil {
		respondNotFound(c, "job")
		return
	}
	c.JSON(http.StatusOK, jc.wrapJob(*job))
}

// CreateJob validates, persists and registers a new job
// POST /api/jobs
func (jc *JobsController) CreateJob(c *gin.Context) {
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	job := &entities.ScheduledJob{Enabled: true}
	if err := jc.applyRequest(job, req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := jc.scheduler.AddJob(job); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	jc.logJobAudit("job_create", job.ID, fmt.Sprintf("Created job %q (%s)", job.Name, scheduler.TriggerDescription(job)), nil)
	respondCreated(c, jc.wrapJob(*job))
}

// UpdateJob replaces a job's definition, keeping its counters
// PUT /api/jobs/:id
func (jc *JobsController) UpdateJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	job, err := jc.jobs.GetJobByID(id)
	if err != nil {
		respondNotFound(c, "job")
		return
	}

	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := jc.applyRequest(job, req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := jc.scheduler.UpdateJob(job); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	jc.logJobAudit("job_update", job.ID, fmt.Sprintf("Updated job %q", job.Name), nil)
	c.JSON(http.StatusOK, jc.wrapJob(*job))
}

// SetJobEnabled flips a job's enabled flag
// PATCH /api/jobs/:id/enabled
func (jc *JobsController) SetJobEnabled(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	job, err := jc.jobs.GetJobByID(id)
	if err != nil {
		respondNotFound(c, "job")
		return
	}

	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "enabled is required")
		return
	}

	if err := jc.scheduler.SetJobEnabled(id, *req.Enabled); err != nil {
		respondInternalError(c, err, "set job enabled")
		return
	}

	action := "job_disable"
	if *req.Enabled {
		action = "job_enable"
	}
	jc.logJobAudit(action, id, fmt.Sprintf("Job %q enabled=%t", job.Name, *req.Enabled), nil)

	updated, err := jc.jobs.GetJobByID(id)
	if err != nil {
		respondInternalError(c, err, "reload job")
		return
	}
	c.JSON(http.StatusOK, jc.wrapJob(*updated))
}

// DeleteJob removes a job and its run history
// DELETE /api/jobs/:id
func (jc *JobsController) DeleteJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	job, err := jc.jobs.GetJobByID(id)
	if err != nil {
		respondNotFound(c, "job")
		return
	}

	if err := jc.scheduler.RemoveJob(id); err != nil {
		respondInternalError(c, err, "delete job")
		return
	}

	jc.logJobAudit("job_delete", id, fmt.Sprintf("Deleted job %q", job.Name), nil)
	respondSuccess(c, "job deleted")
}

// RunJob triggers a job immediately, off-schedule
// POST /api/jobs/:id/run
func (jc *JobsController) RunJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if jc.scheduler.IsJobSyncing(id) {
		respondError(c, http.StatusConflict, "job is already running")
		return
	}

	if err := jc.scheduler.RunNow(id); err != nil {
		respondNotFound(c, "job")
		return
	}
	respondAccepted(c, "sync started", gin.H{"job_id": id})
}

// GetJobHistory returns a job's recent runs, newest first
// GET /api/jobs/:id/history?limit=
func (jc *JobsController) GetJobHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := jc.jobs.GetJobByID(id); err != nil {
		respondNotFound(c, "job")
		return
	}

	limit := parseLimitQuery(c, 20, 200)
	history, err := jc.runs.ListByJob(id, limit)
	if err != nil {
		respondInternalError(c, err, "job history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": history, "total": len(history)})
}

// ListRecentRuns returns the latest runs across all jobs
// GET /api/runs/recent?limit=
func (jc *JobsController) ListRecentRuns(c *gin.Context) {
	limit := parseLimitQuery(c, 20, 200)
	recent, err := jc.runs.ListRecent(limit)
	if err != nil {
		respondInternalError(c, err, "recent runs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": recent, "total": len(recent)})
}

func (jc *JobsController) logJobAudit(action string, jobID uint, description string, err error) {
	if jc.audit == nil {
		return
	}
	jc.audit.LogJob(action, jobID, description, err)
}
