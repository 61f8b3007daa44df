package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/computerwizzy/shopify-inventory-sync/internal/audit"
	"github.com/computerwizzy/shopify-inventory-sync/internal/catalogcache"
	"github.com/computerwizzy/shopify-inventory-sync/internal/database/runs"
	"github.com/computerwizzy/shopify-inventory-sync/internal/feeds"
	"github.com/computerwizzy/shopify-inventory-sync/internal/http"
	"github.com/computerwizzy/shopify-inventory-sync/internal/shopify"
	"github.com/computerwizzy/shopify-inventory-sync/internal/syncer"
	"github.com/computerwizzy/shopify-inventory-sync/internal/tasks"
)

// =============================================================================
// Feed Sources
// =============================================================================

// Source implementations, one per supported transport
var _ feeds.Source = (*feeds.HTTPSource)(nil)
var _ feeds.Source = (*feeds.FTPSource)(nil)
var _ feeds.Source = (*feeds.SFTPSource)(nil)
var _ feeds.Source = (*feeds.LocalSource)(nil)

// =============================================================================
// Shopify Gateway
// =============================================================================

// The resilient client is both the sync target and the stats source for
// the gateway health endpoint
var _ syncer.Gateway = (*shopify.Client)(nil)
var _ http.StatsSource = (*shopify.Client)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

// Task queue dependency implementations
var _ tasks.SyncRunPruner = (*runs.Repository)(nil)
var _ tasks.AuditEventPruner = (*audit.Service)(nil)
var _ tasks.CatalogRefresher = (*catalogcache.Cache)(nil)
