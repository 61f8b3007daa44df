// Package scheduler drives recurring sync jobs. Persisted job definitions
// are registered on a single cron runner; each fire reads the job's feed,
// reconciles it against the Shopify catalog and pushes the exact matches
// through the sync engine. Every execution updates the job's counters and
// appends a run record, success or failure.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/computerwizzy/shopify-inventory-sync/internal/audit"
	"github.com/computerwizzy/shopify-inventory-sync/internal/catalogcache"
	"github.com/computerwizzy/shopify-inventory-sync/internal/crypto"
	"github.com/computerwizzy/shopify-inventory-sync/internal/database/jobs"
	"github.com/computerwizzy/shopify-inventory-sync/internal/database/runs"
	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
	"github.com/computerwizzy/shopify-inventory-sync/internal/metrics"
	"github.com/computerwizzy/shopify-inventory-sync/internal/settingsstore"
	"github.com/computerwizzy/shopify-inventory-sync/internal/syncer"
)

const defaultRunTimeout = 30 * time.Minute

// Deps bundles everything a job execution touches. Audit and Metrics may
// be nil.
type Deps struct {
	Jobs      *jobs.Repository
	Runs      *runs.Repository
	Settings  *settingsstore.SettingsStore
	Catalog   *catalogcache.Cache
	Engine    *syncer.Engine
	Encryptor *crypto.Encryptor
	Audit     *audit.Service
	Metrics   *metrics.Recorder

	// RunTimeout bounds one execution end to end. Zero means 30 minutes.
	RunTimeout time.Duration
}

// Scheduler manages recurring sync jobs on one cron runner.
type Scheduler struct {
	deps Deps

	cron       *cron.Cron
	mu         sync.RWMutex
	isRunning  bool
	generation uint64
	entries    map[uint]cron.EntryID
	inFlight   map[uint]bool
	cancelFunc context.CancelFunc
}

// New creates a stopped scheduler. Nothing fires until Start.
func New(deps Deps) *Scheduler {
	if deps.RunTimeout <= 0 {
		deps.RunTimeout = defaultRunTimeout
	}
	return &Scheduler{
		deps:     deps,
		cron:     cron.New(cron.WithParser(scheduleParser)),
		entries:  make(map[uint]cron.EntryID),
		inFlight: make(map[uint]bool),
	}
}

// Start registers every enabled persisted job and begins firing triggers.
// A job whose stored trigger no longer parses is skipped with a log line,
// never dropped from the database. The scheduler shuts down when ctx is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	enabled, err := s.deps.Jobs.GetEnabledJobs()
	if err != nil {
		return fmt.Errorf("failed to load enabled jobs: %w", err)
	}
	for i := range enabled {
		job := &enabled[i]
		if err := s.registerLocked(job); err != nil {
			log.Printf("Sync scheduler: not registering job %q: %v", job.Name, err)
		}
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true
	s.generation++
	gen := s.generation
	log.Printf("Sync scheduler: started with %d job(s) registered", len(s.entries))

	go func() {
		<-cancelCtx.Done()
		s.stopRun(gen)
	}()

	return nil
}

// Stop halts the trigger loop and waits for in-flight executions to
// finish. Registered entries survive, so a later Start resumes them.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()
	s.stopRun(gen)
}

// stopRun halts the trigger loop when gen matches the active run. A stale
// context watcher from an earlier Start is a no-op.
func (s *Scheduler) stopRun(gen uint64) {
	s.mu.Lock()
	if !s.isRunning || s.generation != gen {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.mu.Unlock()

	// Draining must happen outside the lock: a running job needs it to
	// clear its in-flight flag.
	drained := s.cron.Stop()
	<-drained.Done()

	log.Printf("Sync scheduler: stopped")
}

// IsRunning reports whether the trigger loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// AddJob validates the trigger, persists the job and, when the scheduler
// is running and the job enabled, registers it immediately.
func (s *Scheduler) AddJob(job *entities.ScheduledJob) error {
	if _, err := TriggerSpec(job); err != nil {
		return err
	}
	if err := s.deps.Jobs.CreateJob(job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning && job.Enabled {
		if err := s.registerLocked(job); err != nil {
			return err
		}
	}
	log.Printf("Sync scheduler: job %q added (%s)", job.Name, TriggerDescription(job))
	return nil
}

// UpdateJob persists the changed job and swaps its registration: the old
// trigger entry is removed and the new one added, or dropped entirely when
// the job was disabled.
func (s *Scheduler) UpdateJob(job *entities.ScheduledJob) error {
	if _, err := TriggerSpec(job); err != nil {
		return err
	}
	if err := s.deps.Jobs.UpdateJob(job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return nil
	}
	if !job.Enabled {
		s.deregisterLocked(job.ID)
		return nil
	}
	return s.registerLocked(job)
}

// SetJobEnabled flips the enabled flag and registers or deregisters the
// trigger to match.
func (s *Scheduler) SetJobEnabled(jobID uint, enabled bool) error {
	if err := s.deps.Jobs.SetEnabled(jobID, enabled); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return nil
	}
	if !enabled {
		s.deregisterLocked(jobID)
		return nil
	}
	job, err := s.deps.Jobs.GetJobByID(jobID)
	if err != nil {
		return err
	}
	return s.registerLocked(job)
}

// RemoveJob deregisters the trigger and deletes the job with its run
// history. History rows go first so a failure never orphans them.
func (s *Scheduler) RemoveJob(jobID uint) error {
	s.mu.Lock()
	s.deregisterLocked(jobID)
	s.mu.Unlock()

	if _, err := s.deps.Runs.DeleteByJob(jobID); err != nil {
		return fmt.Errorf("failed to delete run history: %w", err)
	}
	if err := s.deps.Jobs.DeleteJob(jobID); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	log.Printf("Sync scheduler: job %d removed", jobID)
	return nil
}

// RunNow fires a job once, immediately, off-schedule. The execution runs
// in the background; overlap with a scheduled fire is skipped the same
// way scheduled overlaps are.
func (s *Scheduler) RunNow(jobID uint) error {
	job, err := s.deps.Jobs.GetJobByID(jobID)
	if err != nil {
		return fmt.Errorf("job %d not found: %w", jobID, err)
	}
	go s.runJob(job.ID, entities.RunTriggerManual)
	return nil
}

// IsJobSyncing reports whether a job execution is currently in flight.
func (s *Scheduler) IsJobSyncing(jobID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight[jobID]
}

// NextRunTime returns when a registered job fires next, or nil when the
// scheduler is stopped or the job is not registered.
func (s *Scheduler) NextRunTime(jobID uint) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	entryID, ok := s.entries[jobID]
	if !ok {
		return nil
	}
	entry := s.cron.Entry(entryID)
	if !entry.Valid() {
		return nil
	}
	next := entry.Next
	return &next
}

// Snapshot reports scheduler state for status endpoints.
type Snapshot struct {
	Running    bool `json:"running"`
	Registered int  `json:"registered"`
	InFlight   int  `json:"in_flight"`
}

func (s *Scheduler) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Running:    s.isRunning,
		Registered: len(s.entries),
		InFlight:   len(s.inFlight),
	}
}

// registerLocked swaps in the trigger entry for a job. Caller holds s.mu.
func (s *Scheduler) registerLocked(job *entities.ScheduledJob) error {
	spec, err := TriggerSpec(job)
	if err != nil {
		return err
	}

	if old, ok := s.entries[job.ID]; ok {
		s.cron.Remove(old)
		delete(s.entries, job.ID)
	}

	jobID := job.ID
	entryID, err := s.cron.AddFunc(spec, func() {
		s.runJob(jobID, entities.RunTriggerScheduled)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", job.Name, err)
	}
	s.entries[jobID] = entryID
	return nil
}

// deregisterLocked removes a job's trigger entry if present. Caller holds
// s.mu.
func (s *Scheduler) deregisterLocked(jobID uint) {
	if entryID, ok := s.entries[jobID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, jobID)
	}
}
