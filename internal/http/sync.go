package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/computerwizzy/shopify-inventory-sync/internal/audit"
	"github.com/computerwizzy/shopify-inventory-sync/internal/catalogcache"
	"github.com/computerwizzy/shopify-inventory-sync/internal/crypto"
	feedsdb "github.com/computerwizzy/shopify-inventory-sync/internal/database/feeds"
	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
	"github.com/computerwizzy/shopify-inventory-sync/internal/feeds"
	"github.com/computerwizzy/shopify-inventory-sync/internal/mapping"
	"github.com/computerwizzy/shopify-inventory-sync/internal/matching"
	"github.com/computerwizzy/shopify-inventory-sync/internal/settingsstore"
	"github.com/computerwizzy/shopify-inventory-sync/internal/syncer"
)

// SyncController runs ad-hoc syncs outside the job scheduler. Unlike
// scheduled runs, the caller may opt fuzzy matches into the write set.
type SyncController struct {
	feeds     *feedsdb.Repository
	catalog   *catalogcache.Cache
	engine    *syncer.Engine
	settings  *settingsstore.SettingsStore
	encryptor *crypto.Encryptor
	audit     *audit.Service
}

func NewSyncController(feedsRepo *feedsdb.Repository, catalog *catalogcache.Cache, engine *syncer.Engine, settings *settingsstore.SettingsStore, encryptor *crypto.Encryptor, auditService *audit.Service) *SyncController {
	return &SyncController{
		feeds:     feedsRepo,
		catalog:   catalog,
		engine:    engine,
		settings:  settings,
		encryptor: encryptor,
		audit:     auditService,
	}
}

// SyncRunRequest configures one ad-hoc sync. Zero values inherit the
// stored sync tuning settings.
type SyncRunRequest struct {
	FeedSourceID      uint                    `json:"feed_source_id" binding:"required"`
	ColumnMapping     map[string]string       `json:"column_mapping"`
	FuzzyThreshold    int                     `json:"fuzzy_threshold"`
	IncludeFuzzy      bool                    `json:"include_fuzzy"`
	MinConfidence     float64                 `json:"min_confidence"`
	FieldPolicy       *syncer.SyncFieldPolicy `json:"field_policy"`
	BatchSize         int                     `json:"batch_size"`
	SkipZeroInventory *bool                   `json:"skip_zero_inventory"`
	DryRun            bool                    `json:"dry_run"`
}

// Run reads a feed, reconciles it against the catalog and pushes the
// selected matches to Shopify. With dry_run the write phase is skipped
// and the candidate set is returned instead
// POST /api/sync/run
func (sc *SyncController) Run(c *gin.Context) {
	var req SyncRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	feed, err := sc.feeds.GetFeedByID(req.FeedSourceID)
	if err != nil {
		respondNotFound(c, "feed")
		return
	}

	source, err := feeds.Open(feed, sc.encryptor)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	table, err := source.Rows(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusBadGateway, fmt.Sprintf("failed to read feed: %v", err))
		return
	}

	stored, err := mapping.ParseJSON(feed.ColumnMapping)
	if err != nil {
		respondInternalError(c, err, "feed mapping")
		return
	}
	colMap := mapping.Merge(stored, req.ColumnMapping)
	if err := mapping.ValidateRequired(colMap); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if missing := mapping.MissingColumns(table, colMap); len(missing) > 0 {
		respondBadRequest(c, fmt.Sprintf("feed is missing mapped columns: %v", missing))
		return
	}
	mapped := mapping.Apply(table, colMap)

	index, _, err := sc.catalog.Index(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusBadGateway, fmt.Sprintf("failed to fetch catalog: %v", err))
		return
	}

	threshold := req.FuzzyThreshold
	if threshold <= 0 {
		threshold = sc.settings.GetFuzzyThreshold()
	}
	results := matching.NewMatcher(threshold).Match(mapped.Rows, index)
	stats := matching.Statistics(results)
	warnings := matching.QualityWarnings(table, colMap)

	candidates := matching.Filter(results, matching.FilterOptions{
		IncludeExact:  true,
		IncludeFuzzy:  req.IncludeFuzzy,
		MinConfidence: req.MinConfidence,
	})

	if req.DryRun {
		c.JSON(http.StatusOK, gin.H{
			"dry_run":    true,
			"candidates": candidates,
			"stats":      stats,
			"warnings":   warnings,
		})
		return
	}

	policy := syncer.InventoryOnly()
	if req.FieldPolicy != nil {
		policy = *req.FieldPolicy
	}

	skipZero := sc.settings.GetSkipZeroInventory()
	if req.SkipZeroInventory != nil {
		skipZero = *req.SkipZeroInventory
	}
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = sc.settings.GetBatchSize()
	}

	result, err := sc.engine.Execute(c.Request.Context(), candidates, policy, syncer.Options{
		BatchSize:         batchSize,
		BatchPause:        sc.settings.GetBatchPause(),
		SkipZeroInventory: skipZero,
	})
	if errors.Is(err, syncer.ErrNoFieldsEnabled) {
		respondBadRequest(c, err.Error())
		return
	}

	sc.logSyncAudit(feed, result, err)
	if result != nil && result.Synced > 0 {
		// The writes just made the cached snapshot stale.
		sc.catalog.Invalidate()
	}

	body := gin.H{"result": result, "stats": stats, "warnings": warnings}
	if err != nil {
		body["error"] = err.Error()
	}
	if result != nil && result.Aborted {
		c.JSON(http.StatusBadGateway, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (sc *SyncController) logSyncAudit(feed *entities.FeedSource, result *syncer.Result, err error) {
	if sc.audit == nil {
		return
	}
	desc := fmt.Sprintf("Manual sync of feed %q", feed.Name)
	if result != nil {
		desc = fmt.Sprintf("Manual sync of feed %q: %d synced, %d failed, %d skipped", feed.Name, result.Synced, result.Failed, result.Skipped)
	}
	sc.audit.LogFeed("manual_sync", feed.ID, desc, err)
}
