package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// CatalogRefresher provides the ability to re-fetch the catalog snapshot.
type CatalogRefresher interface {
	RefreshNow(ctx context.Context) error
}

// RefreshCatalogTask re-fetches the Shopify catalog into the cache so the
// next sync starts from a warm snapshot. Enqueued on demand and after
// catalog-heavy operations.
type RefreshCatalogTask struct{}

// Config returns the queue configuration for catalog refresh tasks.
func (t RefreshCatalogTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_catalog",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshCatalogProcessor creates a processor function for RefreshCatalogTask.
func RefreshCatalogProcessor(refresher CatalogRefresher) backlite.QueueProcessor[RefreshCatalogTask] {
	return func(ctx context.Context, task RefreshCatalogTask) error {
		if refresher == nil {
			return fmt.Errorf("catalog refresher not configured")
		}

		start := time.Now()
		if err := refresher.RefreshNow(ctx); err != nil {
			return fmt.Errorf("refresh catalog: %w", err)
		}

		log.Printf("[TASK] Catalog snapshot refreshed in %v", time.Since(start).Round(time.Millisecond))
		return nil
	}
}

// NewRefreshCatalogQueue creates a backlite queue for catalog refresh tasks.
func NewRefreshCatalogQueue(refresher CatalogRefresher) backlite.Queue {
	return backlite.NewQueue(RefreshCatalogProcessor(refresher))
}
