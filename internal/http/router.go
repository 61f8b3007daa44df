package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(SecurityHeadersMiddleware())

	// Create controllers
	health := NewHealthController(cfg.Database, cfg.Scheduler, cfg.Version)
	jobsController := NewJobsController(cfg.Scheduler, cfg.Jobs, cfg.Runs, cfg.Audit)
	feedsController := NewFeedsController(cfg.Feeds, cfg.Jobs, cfg.Encryptor, cfg.Audit)
	matchingController := NewMatchingController(cfg.Feeds, cfg.Catalog, cfg.Settings, cfg.Encryptor)
	syncController := NewSyncController(cfg.Feeds, cfg.Catalog, cfg.Engine, cfg.Settings, cfg.Encryptor, cfg.Audit)
	cacheController := NewCacheController(cfg.Catalog, cfg.TaskClient, cfg.Audit)
	settingsController := NewSettingsController(cfg.Settings, cfg.Audit)
	statusController := NewStatusController(cfg.Scheduler, cfg.Database, cfg.Runs)

	// Health endpoints, reachable without a token so load balancers and
	// scrapers work unauthenticated
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("/api")
	if cfg.APIToken != "" {
		api.Use(TokenAuthMiddleware(cfg.APIToken))
	}

	// Feed source endpoints
	api.GET("/feeds", feedsController.ListFeeds)
	api.POST("/feeds", feedsController.CreateFeed)
	api.GET("/feeds/:id", feedsController.GetFeed)
	api.PUT("/feeds/:id", feedsController.UpdateFeed)
	api.DELETE("/feeds/:id", feedsController.DeleteFeed)
	api.POST("/feeds/:id/test", feedsController.TestFeed)
	api.GET("/feeds/:id/headers", feedsController.GetFeedHeaders)
	api.GET("/feeds/:id/suggest-mapping", feedsController.SuggestMapping)

	// Scheduled job endpoints
	api.GET("/jobs", jobsController.ListJobs)
	api.POST("/jobs", jobsController.CreateJob)
	api.GET("/jobs/:id", jobsController.GetJob)
	api.PUT("/jobs/:id", jobsController.UpdateJob)
	api.DELETE("/jobs/:id", jobsController.DeleteJob)
	api.POST("/jobs/:id/run", jobsController.RunJob)
	api.PATCH("/jobs/:id/enabled", jobsController.SetJobEnabled)
	api.GET("/jobs/:id/history", jobsController.GetJobHistory)
	api.GET("/runs/recent", jobsController.ListRecentRuns)

	// Reconciliation and ad-hoc sync endpoints
	api.POST("/matching/preview", matchingController.Preview)
	api.POST("/sync/run", syncController.Run)

	// Gateway statistics, hidden when no Shopify client is configured
	if cfg.GatewayStats != nil {
		gatewayController := NewGatewayController(cfg.GatewayStats)
		api.GET("/gateway/stats", gatewayController.GetStats)
	}

	// Catalog cache endpoints
	api.GET("/cache/stats", cacheController.GetStats)
	api.POST("/cache/refresh", cacheController.Refresh)

	// Sync tuning endpoints
	api.GET("/settings/sync", settingsController.GetSyncSettings)
	api.PUT("/settings/sync", settingsController.UpdateSyncSettings)
	api.POST("/settings/sync/reset", settingsController.ResetSyncSettings)

	// Audit log endpoints
	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		api.GET("/audit", auditController.ListEvents)
	}

	// Task queue endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	// Scheduler status endpoint
	api.GET("/scheduler/status", statusController.GetStatus)

	return router
}
