package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/computerwizzy/shopify-inventory-sync/internal/audit"
	"github.com/computerwizzy/shopify-inventory-sync/internal/catalogcache"
	"github.com/computerwizzy/shopify-inventory-sync/internal/resilience"
	"github.com/computerwizzy/shopify-inventory-sync/internal/tasks"
)

// StatsSource exposes the gateway's breaker and rate limiter snapshot.
type StatsSource interface {
	Stats() resilience.Stats
}

// GatewayController reports the Shopify gateway's resilience state.
type GatewayController struct {
	source StatsSource
}

func NewGatewayController(source StatsSource) *GatewayController {
	return &GatewayController{source: source}
}

// GetStats returns the current breaker state and adaptive delay
// GET /api/gateway/stats
func (gc *GatewayController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gc.source.Stats())
}

// CacheController manages the catalog snapshot cache.
type CacheController struct {
	catalog    *catalogcache.Cache
	taskClient *tasks.Client
	audit      *audit.Service
}

func NewCacheController(catalog *catalogcache.Cache, taskClient *tasks.Client, auditService *audit.Service) *CacheController {
	return &CacheController{
		catalog:    catalog,
		taskClient: taskClient,
		audit:      auditService,
	}
}

// GetStats returns the cache's age, size and hit counters
// GET /api/cache/stats
func (cc *CacheController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, cc.catalog.Stats())
}

// Refresh invalidates the snapshot and fetches a fresh one. With a task
// client the fetch runs in the background; otherwise it happens inline
// POST /api/cache/refresh
func (cc *CacheController) Refresh(c *gin.Context) {
	if cc.taskClient != nil {
		ids, err := cc.taskClient.Add(tasks.RefreshCatalogTask{}).Save()
		if err != nil {
			respondInternalError(c, err, "queue catalog refresh")
			return
		}
		cc.logCacheAudit("Catalog refresh queued", nil)
		respondAccepted(c, "catalog refresh queued", gin.H{"task_id": ids[0]})
		return
	}

	if err := cc.catalog.RefreshNow(c.Request.Context()); err != nil {
		cc.logCacheAudit("Catalog refresh failed", err)
		respondError(c, http.StatusBadGateway, "failed to refresh catalog: "+err.Error())
		return
	}
	cc.logCacheAudit("Catalog refreshed", nil)
	respondSuccess(c, "catalog refreshed")
}

func (cc *CacheController) logCacheAudit(description string, err error) {
	if cc.audit == nil {
		return
	}
	cc.audit.LogCache("cache_refresh", description, err)
}
