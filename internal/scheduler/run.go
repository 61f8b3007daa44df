package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
	"github.com/computerwizzy/shopify-inventory-sync/internal/feeds"
	"github.com/computerwizzy/shopify-inventory-sync/internal/mapping"
	"github.com/computerwizzy/shopify-inventory-sync/internal/matching"
	"github.com/computerwizzy/shopify-inventory-sync/internal/syncer"
)

// runReport carries the pipeline counters into the run record.
type runReport struct {
	processed int
	matched   int
	synced    int
	failed    int
	skipped   int
	err       error
}

// runJob is the single execution path for scheduled fires and manual
// triggers. A failure never panics the scheduler and never deregisters the
// job; every outcome lands on the job row and in the run history.
func (s *Scheduler) runJob(jobID uint, trigger entities.RunTrigger) {
	s.mu.Lock()
	if s.inFlight[jobID] {
		s.mu.Unlock()
		log.Printf("Sync scheduler: job %d skipped (already running)", jobID)
		return
	}
	s.inFlight[jobID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, jobID)
		s.mu.Unlock()
	}()

	job, err := s.deps.Jobs.GetJobByID(jobID)
	if err != nil {
		log.Printf("Sync scheduler: job %d no longer exists, skipping run: %v", jobID, err)
		return
	}

	startedAt := time.Now()
	if err := s.deps.Jobs.RecordRunStart(job.ID, startedAt); err != nil {
		log.Printf("Sync scheduler: failed to record run start for job %q: %v", job.Name, err)
	}
	log.Printf("Sync scheduler: job %q starting (%s)", job.Name, trigger)

	ctx, cancel := context.WithTimeout(context.Background(), s.deps.RunTimeout)
	defer cancel()

	report := s.executeJob(ctx, job)

	finishedAt := time.Now()
	duration := finishedAt.Sub(startedAt)

	var errMsg string
	if report.err != nil {
		errMsg = report.err.Error()
	}
	if err := s.deps.Jobs.RecordRunResult(job.ID, report.err == nil, errMsg, finishedAt); err != nil {
		log.Printf("Sync scheduler: failed to record run result for job %q: %v", job.Name, err)
	}

	run := &entities.SyncRun{
		RunID:            uuid.New().String(),
		JobID:            job.ID,
		Trigger:          trigger,
		StartedAt:        startedAt,
		FinishedAt:       finishedAt,
		DurationMs:       duration.Milliseconds(),
		Success:          report.err == nil,
		RecordsProcessed: report.processed,
		RecordsMatched:   report.matched,
		RecordsSynced:    report.synced,
		RecordsFailed:    report.failed,
		RecordsSkipped:   report.skipped,
		Error:            errMsg,
	}
	if err := s.deps.Runs.Append(run); err != nil {
		log.Printf("Sync scheduler: failed to append run history for job %q: %v", job.Name, err)
	} else if _, err := s.deps.Runs.PruneHistory(job.ID, s.deps.Settings.GetHistoryCap()); err != nil {
		log.Printf("Sync scheduler: failed to prune run history for job %q: %v", job.Name, err)
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordRun(string(trigger), run.Success, duration)
		s.deps.Metrics.RecordRecords(report.synced, report.failed, report.skipped)
	}

	if report.err != nil {
		log.Printf("Sync scheduler: job %q failed after %v: %v",
			job.Name, duration.Round(time.Millisecond), report.err)
	} else {
		log.Printf("Sync scheduler: job %q completed in %v: %d synced, %d failed, %d skipped",
			job.Name, duration.Round(time.Millisecond), report.synced, report.failed, report.skipped)
	}
	s.logAudit(job, run)
}

// executeJob runs the pipeline: feed read, column mapping, reconciliation
// against the catalog snapshot, batch sync. Unattended executions write
// exact matches only; fuzzy hits show up in the matched counter but are
// left for manual review.
func (s *Scheduler) executeJob(ctx context.Context, job *entities.ScheduledJob) runReport {
	var report runReport
	fail := func(err error) runReport {
		report.err = err
		return report
	}

	feed := job.FeedSource
	if feed == nil {
		return fail(fmt.Errorf("feed source %d not found", job.FeedSourceID))
	}
	if !feed.Enabled {
		return fail(fmt.Errorf("feed source %q is disabled", feed.Name))
	}

	opts, err := ParseJobOptions(job.Options)
	if err != nil {
		return fail(err)
	}

	source, err := feeds.Open(feed, s.deps.Encryptor)
	if err != nil {
		return fail(err)
	}
	table, err := source.Rows(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to read feed %q: %w", feed.Name, err))
	}
	report.processed = len(table.Rows)
	if report.processed == 0 {
		return fail(fmt.Errorf("feed %q returned no rows", feed.Name))
	}

	table = table.Project(opts.SelectedColumns)

	feedMapping, err := mapping.ParseJSON(feed.ColumnMapping)
	if err != nil {
		return fail(fmt.Errorf("feed %q: %w", feed.Name, err))
	}
	overrides, err := mapping.ParseJSON(job.ColumnMapping)
	if err != nil {
		return fail(err)
	}
	columnMapping := mapping.Merge(feedMapping, overrides)
	if err := mapping.ValidateRequired(columnMapping); err != nil {
		return fail(err)
	}
	for _, warning := range matching.QualityWarnings(table, columnMapping) {
		log.Printf("Sync scheduler: job %q feed warning: %s", job.Name, warning)
	}
	mapped := mapping.Apply(table, columnMapping)

	index, _, err := s.deps.Catalog.Index(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to fetch catalog: %w", err))
	}

	threshold := opts.FuzzyThreshold
	if threshold <= 0 {
		threshold = s.deps.Settings.GetFuzzyThreshold()
	}
	results := matching.NewMatcher(threshold).Match(mapped.Rows, index)
	stats := matching.Statistics(results)
	report.matched = stats.Exact + stats.Fuzzy

	exact := matching.Filter(results, matching.FilterOptions{IncludeExact: true})
	if len(exact) == 0 {
		log.Printf("Sync scheduler: job %q matched no SKUs exactly, nothing to sync", job.Name)
		return report
	}

	policy, err := syncer.ParsePolicy(job.FieldPolicy)
	if err != nil {
		return fail(err)
	}

	skipZero := s.deps.Settings.GetSkipZeroInventory()
	if opts.SkipZeroInventory != nil {
		skipZero = *opts.SkipZeroInventory
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = s.deps.Settings.GetBatchSize()
	}

	result, err := s.deps.Engine.Execute(ctx, exact, policy, syncer.Options{
		BatchSize:         batchSize,
		BatchPause:        s.deps.Settings.GetBatchPause(),
		SkipZeroInventory: skipZero,
	})
	if result != nil {
		report.synced = result.Synced
		report.failed = result.Failed
		report.skipped = result.Skipped
	}
	if report.synced > 0 {
		// The writes just made the cached snapshot stale.
		s.deps.Catalog.Invalidate()
	}
	report.err = err
	return report
}

func (s *Scheduler) logAudit(job *entities.ScheduledJob, run *entities.SyncRun) {
	if s.deps.Audit == nil {
		return
	}
	if run.Success {
		desc := fmt.Sprintf("Job %q synced %d of %d matched record(s)",
			job.Name, run.RecordsSynced, run.RecordsMatched)
		s.deps.Audit.LogSyncRun(job.ID, run.RunID, desc, nil)
		return
	}
	s.deps.Audit.LogSyncRun(job.ID, run.RunID,
		fmt.Sprintf("Job %q failed", job.Name), errors.New(run.Error))
}
