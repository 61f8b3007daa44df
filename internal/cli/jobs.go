package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/computerwizzy/shopify-inventory-sync/internal/config"
	"github.com/computerwizzy/shopify-inventory-sync/internal/database"
	jobsdb "github.com/computerwizzy/shopify-inventory-sync/internal/database/jobs"
	runsdb "github.com/computerwizzy/shopify-inventory-sync/internal/database/runs"
	"github.com/computerwizzy/shopify-inventory-sync/internal/scheduler"
)

type JobsCommand struct {
	DatabasePath string
	History      int
}

func NewJobsCommand() *JobsCommand {
	return &JobsCommand{}
}

func (cmd *JobsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("jobs", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.IntVar(&cmd.History, "history", 0, "Also print the last N runs per job")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s jobs [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List configured sync jobs with their schedules and run counters.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s jobs\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s jobs -db ./inventory-sync.db -history 3\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *JobsCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	jobs, err := jobsdb.NewRepository(db.DB).GetAllJobs()
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No sync jobs configured")
		return nil
	}

	runs := runsdb.NewRepository(db.DB)

	fmt.Printf("=== Sync Jobs (%d) ===\n", len(jobs))
	for _, job := range jobs {
		state := "enabled"
		if !job.Enabled {
			state = "disabled"
		}

		feedName := fmt.Sprintf("feed #%d", job.FeedSourceID)
		if job.FeedSource != nil {
			feedName = job.FeedSource.Name
		}

		fmt.Printf("\n%d. %s (%s)\n", job.ID, job.Name, state)
		fmt.Printf("   Feed:     %s\n", feedName)
		fmt.Printf("   Schedule: %s\n", scheduler.TriggerDescription(&job))
		fmt.Printf("   Runs:     %d total, %d ok, %d failed\n", job.RunCount, job.SuccessCount, job.ErrorCount)
		if job.LastRunAt != nil {
			fmt.Printf("   Last run: %s\n", job.LastRunAt.Format("2006-01-02 15:04:05"))
		}
		if job.LastError != "" {
			fmt.Printf("   Last error: %s\n", job.LastError)
		}

		if cmd.History > 0 {
			history, err := runs.ListByJob(job.ID, cmd.History)
			if err != nil {
				return fmt.Errorf("failed to load history for job %d: %w", job.ID, err)
			}
			for _, run := range history {
				status := "[OK]"
				if !run.Success {
					status = "[ERROR]"
				}
				fmt.Printf("   %s %s  synced %d, failed %d, skipped %d\n",
					status, run.StartedAt.Format("2006-01-02 15:04:05"),
					run.RecordsSynced, run.RecordsFailed, run.RecordsSkipped)
			}
		}
	}

	return nil
}
