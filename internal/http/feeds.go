package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/computerwizzy/shopify-inventory-sync/internal/audit"
	"github.com/computerwizzy/shopify-inventory-sync/internal/crypto"
	feedsdb "github.com/computerwizzy/shopify-inventory-sync/internal/database/feeds"
	"github.com/computerwizzy/shopify-inventory-sync/internal/database/jobs"
	"github.com/computerwizzy/shopify-inventory-sync/internal/entities"
	"github.com/computerwizzy/shopify-inventory-sync/internal/feeds"
	"github.com/computerwizzy/shopify-inventory-sync/internal/mapping"
)

// FeedsController handles feed source management endpoints.
type FeedsController struct {
	feeds     *feedsdb.Repository
	jobs      *jobs.Repository
	encryptor *crypto.Encryptor
	audit     *audit.Service
}

func NewFeedsController(feedsRepo *feedsdb.Repository, jobsRepo *jobs.Repository, encryptor *crypto.Encryptor, auditService *audit.Service) *FeedsController {
	return &FeedsController{
		feeds:     feedsRepo,
		jobs:      jobsRepo,
		encryptor: encryptor,
		audit:     auditService,
	}
}

// FeedRequest is the request body for creating or updating a feed source.
// Password and Headers arrive in plaintext and are stored encrypted; on
// update an empty password means "keep the stored one".
type FeedRequest struct {
	Name          string            `json:"name" binding:"required"`
	Type          string            `json:"type" binding:"required"`
	URL           string            `json:"url"`
	Host          string            `json:"host"`
	Port          int               `json:"port"`
	Path          string            `json:"path"`
	Username      string            `json:"username"`
	Password      string            `json:"password"`
	Headers       map[string]string `json:"headers"`
	ColumnMapping map[string]string `json:"column_mapping"`
	Enabled       *bool             `json:"enabled"`
}

func (fc *FeedsController) applyRequest(feed *entities.FeedSource, req FeedRequest) error {
	feed.Name = req.Name
	feed.Type = entities.FeedType(req.Type)
	feed.URL = req.URL
	feed.Host = req.Host
	feed.Port = req.Port
	feed.Path = req.Path
	feed.Username = req.Username

	if req.Password != "" {
		encrypted, err := fc.encryptor.Encrypt(req.Password)
		if err != nil {
			return fmt.Errorf("failed to encrypt password: %w", err)
		}
		feed.EncryptedPassword = encrypted
	}
	if req.Headers != nil {
		encrypted, err := fc.encryptor.EncryptJSON(req.Headers)
		if err != nil {
			return fmt.Errorf("failed to encrypt headers: %w", err)
		}
		feed.EncryptedHeaders = encrypted
	}
	if req.ColumnMapping != nil {
		mappingJSON, err := mapping.ToJSON(req.ColumnMapping)
		if err != nil {
			return err
		}
		feed.ColumnMapping = mappingJSON
	}
	if req.Enabled != nil {
		feed.Enabled = *req.Enabled
	}
	return nil
}

// ListFeeds returns all feed sources
// GET /api/feeds
func (fc *FeedsController) ListFeeds(c *gin.Context) {
	all, err := fc.feeds.GetAllFeeds()
	if err != nil {
		respondInternalError(c, err, "list feeds")
		return
	}
	c.JSON(http.StatusOK, gin.H{"feeds": all, "total": len(all)})
}

// GetFeed returns one feed source
// GET /api/feeds/:id
func (fc *FeedsController) GetFeed(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	feed, err := fc.feeds.GetFeedByID(id)
	if err != nil {
		respondNotFound(c, "feed")
		return
	}
	c.JSON(http.StatusOK, feed)
}

// CreateFeed stores a new feed source
// POST /api/feeds
func (fc *FeedsController) CreateFeed(c *gin.Context) {
	var req FeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	feed := &entities.FeedSource{Enabled: true}
	if err := fc.applyRequest(feed, req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := fc.feeds.CreateFeed(feed); err != nil {
		respondError(c, http.StatusConflict, err.Error())
		return
	}

	fc.logFeedAudit("feed_create", feed.ID, fmt.Sprintf("Created feed %q (%s)", feed.Name, feed.Type), nil)
	respondCreated(c, feed)
}

// UpdateFeed replaces a feed's definition. An empty password keeps the
// stored credentials
// PUT /api/feeds/:id
func (fc *FeedsController) UpdateFeed(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	feed, err := fc.feeds.GetFeedByID(id)
	if err != nil {
		respondNotFound(c, "feed")
		return
	}

	var req FeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := fc.applyRequest(feed, req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := fc.feeds.UpdateFeed(feed); err != nil {
		respondInternalError(c, err, "update feed")
		return
	}

	fc.logFeedAudit("feed_update", feed.ID, fmt.Sprintf("Updated feed %q", feed.Name), nil)
	c.JSON(http.StatusOK, feed)
}

// DeleteFeed removes a feed source unless jobs still reference it
// DELETE /api/feeds/:id
func (fc *FeedsController) DeleteFeed(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	feed, err := fc.feeds.GetFeedByID(id)
	if err != nil {
		respondNotFound(c, "feed")
		return
	}

	count, err := fc.jobs.CountJobsForFeed(id)
	if err != nil {
		respondInternalError(c, err, "delete feed")
		return
	}
	if count > 0 {
		respondError(c, http.StatusConflict, fmt.Sprintf("feed is used by %d job(s); delete them first", count))
		return
	}

	if err := fc.feeds.DeleteFeed(id); err != nil {
		respondInternalError(c, err, "delete feed")
		return
	}

	fc.logFeedAudit("feed_delete", id, fmt.Sprintf("Deleted feed %q", feed.Name), nil)
	respondSuccess(c, "feed deleted")
}

// TestFeed checks that the feed is reachable with its stored credentials
// POST /api/feeds/:id/test
func (fc *FeedsController) TestFeed(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	feed, err := fc.feeds.GetFeedByID(id)
	if err != nil {
		respondNotFound(c, "feed")
		return
	}

	source, err := feeds.Open(feed, fc.encryptor)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	if err := source.TestConnection(c.Request.Context()); err != nil {
		fc.logFeedAudit("feed_test", id, fmt.Sprintf("Connection test for feed %q failed", feed.Name), err)
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	fc.logFeedAudit("feed_test", id, fmt.Sprintf("Connection test for feed %q succeeded", feed.Name), nil)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetFeedHeaders fetches the feed and returns its column headers
// GET /api/feeds/:id/headers
func (fc *FeedsController) GetFeedHeaders(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	feed, err := fc.feeds.GetFeedByID(id)
	if err != nil {
		respondNotFound(c, "feed")
		return
	}

	source, err := feeds.Open(feed, fc.encryptor)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	headers, err := source.Headers(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusBadGateway, fmt.Sprintf("failed to read feed: %v", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"headers": headers})
}

// SuggestMapping fetches the feed's headers and proposes a column mapping
// GET /api/feeds/:id/suggest-mapping
func (fc *FeedsController) SuggestMapping(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	feed, err := fc.feeds.GetFeedByID(id)
	if err != nil {
		respondNotFound(c, "feed")
		return
	}

	source, err := feeds.Open(feed, fc.encryptor)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	headers, err := source.Headers(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusBadGateway, fmt.Sprintf("failed to read feed: %v", err))
		return
	}

	suggested := mapping.Suggest(headers)
	c.JSON(http.StatusOK, gin.H{"headers": headers, "suggested_mapping": suggested})
}

func (fc *FeedsController) logFeedAudit(action string, feedID uint, description string, err error) {
	if fc.audit == nil {
		return
	}
	fc.audit.LogFeed(action, feedID, description, err)
}
