// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations
//	├── feeds/           # Feed source CRUD operations
//	├── jobs/            # Scheduled job CRUD and run counters
//	├── runs/            # Sync run history (rolling log)
//	├── settings/        # Application settings
//	└── audit/           # Audit event log
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./inventory-sync.db")
//
//	// Create domain-specific repositories
//	jobsRepo := jobs.NewRepository(db.DB)
//	runsRepo := runs.NewRepository(db.DB)
//
//	// Use repositories
//	job, err := jobsRepo.GetJobByID(123)
//	history, err := runsRepo.ListByJob(job.ID, 25)
//
// # Interface Implementations
//
//   - jobs.Repository: implements scheduler.JobStore and http.JobStore
//   - runs.Repository: implements scheduler.RunStore and http.RunStore
//   - feeds.Repository: implements http.FeedStore
//   - settings.Repository: implements settingsstore.Store
//   - audit.Repository: implements audit.Store
//
// # Adding a New Domain
//
// To add a new domain (e.g., locations):
//
//  1. Create a new sub-package: internal/database/locations/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
