package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/computerwizzy/shopify-inventory-sync/internal/catalogcache"
	"github.com/computerwizzy/shopify-inventory-sync/internal/crypto"
	feedsdb "github.com/computerwizzy/shopify-inventory-sync/internal/database/feeds"
	"github.com/computerwizzy/shopify-inventory-sync/internal/feeds"
	"github.com/computerwizzy/shopify-inventory-sync/internal/mapping"
	"github.com/computerwizzy/shopify-inventory-sync/internal/matching"
	"github.com/computerwizzy/shopify-inventory-sync/internal/settingsstore"
)

// MatchingController runs the reconciliation pipeline without writing
// anything to Shopify, so users can inspect what a sync would do.
type MatchingController struct {
	feeds     *feedsdb.Repository
	catalog   *catalogcache.Cache
	settings  *settingsstore.SettingsStore
	encryptor *crypto.Encryptor
}

func NewMatchingController(feedsRepo *feedsdb.Repository, catalog *catalogcache.Cache, settings *settingsstore.SettingsStore, encryptor *crypto.Encryptor) *MatchingController {
	return &MatchingController{
		feeds:     feedsRepo,
		catalog:   catalog,
		settings:  settings,
		encryptor: encryptor,
	}
}

// PreviewRequest selects a feed and optional per-request tweaks. Mapping
// entries override the feed's stored mapping; an empty value drops a field.
type PreviewRequest struct {
	FeedSourceID   uint              `json:"feed_source_id" binding:"required"`
	ColumnMapping  map[string]string `json:"column_mapping"`
	FuzzyThreshold int               `json:"fuzzy_threshold"`
}

// Preview fetches the feed, matches it against the catalog and returns
// every row's outcome plus aggregate statistics
// POST /api/matching/preview
func (mc *MatchingController) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	feed, err := mc.feeds.GetFeedByID(req.FeedSourceID)
	if err != nil {
		respondNotFound(c, "feed")
		return
	}

	source, err := feeds.Open(feed, mc.encryptor)
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

	index, fetchedAt, err := mc.catalog.Index(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusBadGateway, fmt.Sprintf("failed to fetch catalog: %v", err))
		return
	}

	threshold := req.FuzzyThreshold
	if threshold <= 0 {
		threshold = mc.settings.GetFuzzyThreshold()
	}
	matcher := matching.NewMatcher(threshold)
	results := matcher.Match(mapped.Rows, index)

	c.JSON(http.StatusOK, gin.H{
		"results":            results,
		"stats":              matching.Statistics(results),
		"warnings":           matching.QualityWarnings(table, colMap),
		"threshold":          matcher.Threshold(),
		"catalog_fetched_at": fetchedAt,
	})
}
