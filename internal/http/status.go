package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/computerwizzy/shopify-inventory-sync/internal/database"
	"github.com/computerwizzy/shopify-inventory-sync/internal/database/runs"
	"github.com/computerwizzy/shopify-inventory-sync/internal/scheduler"
)

// StatusController reports scheduler and data-volume statistics.
type StatusController struct {
	scheduler *scheduler.Scheduler
	db        *database.Database
	runs      *runs.Repository
}

func NewStatusController(sched *scheduler.Scheduler, db *database.Database, runsRepo *runs.Repository) *StatusController {
	return &StatusController{scheduler: sched, db: db, runs: runsRepo}
}

// GetStatus returns the scheduler snapshot, row counts and a 24h run
// success summary
// GET /api/scheduler/status
func (sc *StatusController) GetStatus(c *gin.Context) {
	totalFeeds, totalJobs, totalRuns, err := sc.db.GetStats()
	if err != nil {
		respondInternalError(c, err, "status")
		return
	}

	since := time.Now().Add(-24 * time.Hour)
	runsLast24h, failedLast24h, err := sc.runs.CountSince(since)
	if err != nil {
		respondInternalError(c, err, "status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scheduler": sc.scheduler.Snapshot(),
		"totals": gin.H{
			"feeds": totalFeeds,
			"jobs":  totalJobs,
			"runs":  totalRuns,
		},
		"last_24h": gin.H{
			"runs":   runsLast24h,
			"failed": failedLast24h,
		},
	})
}
