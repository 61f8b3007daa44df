package http

import (
	"github.com/computerwizzy/shopify-inventory-sync/internal/audit"
	"github.com/computerwizzy/shopify-inventory-sync/internal/catalogcache"
	"github.com/computerwizzy/shopify-inventory-sync/internal/crypto"
	"github.com/computerwizzy/shopify-inventory-sync/internal/database"
	feedsdb "github.com/computerwizzy/shopify-inventory-sync/internal/database/feeds"
	"github.com/computerwizzy/shopify-inventory-sync/internal/database/jobs"
	"github.com/computerwizzy/shopify-inventory-sync/internal/database/runs"
	"github.com/computerwizzy/shopify-inventory-sync/internal/metrics"
	"github.com/computerwizzy/shopify-inventory-sync/internal/scheduler"
	"github.com/computerwizzy/shopify-inventory-sync/internal/settingsstore"
	"github.com/computerwizzy/shopify-inventory-sync/internal/syncer"
	"github.com/computerwizzy/shopify-inventory-sync/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router. This replaces a long parameter list in NewRouter.
type RouterConfig struct {
	// Core dependencies
	Database  *database.Database
	Feeds     *feedsdb.Repository
	Jobs      *jobs.Repository
	Runs      *runs.Repository
	Scheduler *scheduler.Scheduler
	Settings  *settingsstore.SettingsStore
	Catalog   *catalogcache.Cache
	Engine    *syncer.Engine
	Encryptor *crypto.Encryptor

	// GatewayStats reports the breaker/limiter snapshot. Nil hides the
	// endpoint (no store configured).
	GatewayStats StatsSource

	// Optional services
	Audit      *audit.Service
	TaskClient *tasks.Client
	Metrics    *metrics.Recorder

	// APIToken guards /api routes when non-empty.
	APIToken string

	// Application info
	Version string
}
