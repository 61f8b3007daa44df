// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help code agents understand
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// The application uses several categories of interfaces:
//
// ## Feed Access Interfaces
//
//   - feeds.Source: Fetch and parse one inventory feed (internal/feeds/source.go)
//
// ## External Service Interfaces
//
//   - syncer.Gateway: Write inventory and product fields to Shopify (internal/syncer/engine.go)
//   - http.StatsSource: Report breaker and rate limiter health (internal/http/stats.go)
//
// ## Background Task Interfaces
//
//   - tasks.SyncRunPruner: Delete old run history (internal/tasks/prune_runs.go)
//   - tasks.AuditEventPruner: Delete old audit events (internal/tasks/prune_audit.go)
//   - tasks.CatalogRefresher: Re-fetch the catalog snapshot (internal/tasks/refresh_catalog.go)
//
// # Adding a New Feed Source Type
//
// To add support for a new feed transport (e.g., S3):
//
//  1. Create the source in internal/feeds/
//
//     type S3Source struct {
//         bucket string
//         key    string
//     }
//
//     func (s *S3Source) Headers(ctx context.Context) ([]string, error)
//     func (s *S3Source) Rows(ctx context.Context) (*feeds.Table, error)
//     func (s *S3Source) TestConnection(ctx context.Context) error
//
//     var _ feeds.Source = (*S3Source)(nil)
//
//  2. Add a FeedType constant in internal/entities/feed_source.go
//
//  3. Add the case to feeds.Open so stored definitions resolve to it
//
// # Adding a New Background Task
//
// To add a new periodic or on-demand task:
//
//  1. Define the task and its queue in internal/tasks/
//
//     type RebuildIndexTask struct{}
//
//     func (t RebuildIndexTask) Config() backlite.QueueConfig
//
//     func NewRebuildIndexQueue(dep SomeDep) backlite.Queue {
//         return backlite.NewQueue(RebuildIndexProcessor(dep))
//     }
//
//  2. Register the queue in entrypoint.Run
//
//  3. Expose it in the task catalog in internal/http/tasks.go if it should
//     be runnable from the API
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
