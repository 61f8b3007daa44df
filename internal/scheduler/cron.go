package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
)

// scheduleParser accepts the classic five-field cron syntax plus @every
// descriptors, which interval triggers compile to.
var scheduleParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// TriggerSpec renders a job's trigger as the spec it is registered under:
// the cron expression verbatim, or "@every Nm" for interval jobs.
func TriggerSpec(job *entities.ScheduledJob) (string, error) {
	switch job.TriggerType {
	case entities.TriggerTypeCron:
		if err := ValidateCronSchedule(job.CronExpr); err != nil {
			return "", err
		}
		return job.CronExpr, nil
	case entities.TriggerTypeInterval:
		if job.IntervalMinutes < 1 {
			return "", fmt.Errorf("interval must be at least one minute, got %d", job.IntervalMinutes)
		}
		return fmt.Sprintf("@every %dm", job.IntervalMinutes), nil
	default:
		return "", fmt.Errorf("unknown trigger type %q", job.TriggerType)
	}
}

// ValidateCronSchedule validates a cron schedule string
func ValidateCronSchedule(schedule string) error {
	if strings.TrimSpace(schedule) == "" {
		return fmt.Errorf("cron expression is empty")
	}
	if _, err := scheduleParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}
	return nil
}

// GetCronDescription returns a human-readable description of a cron schedule
func GetCronDescription(schedule string) string {
	switch schedule {
	case "* * * * *":
		return "Every minute"
	case "*/15 * * * *":
		return "Every 15 minutes"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 * * * *":
		return "Every hour at :00"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime calculates when a schedule spec fires next
func GetNextRunTime(schedule string) (*time.Time, error) {
	sched, err := scheduleParser.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule: %w", err)
	}
	next := sched.Next(time.Now())
	return &next, nil
}

// TriggerDescription renders a job's trigger for display
func TriggerDescription(job *entities.ScheduledJob) string {
	switch job.TriggerType {
	case entities.TriggerTypeInterval:
		if job.IntervalMinutes == 1 {
			return "Every minute"
		}
		return fmt.Sprintf("Every %d minutes", job.IntervalMinutes)
	case entities.TriggerTypeCron:
		return GetCronDescription(job.CronExpr)
	default:
		return string(job.TriggerType)
	}
}
