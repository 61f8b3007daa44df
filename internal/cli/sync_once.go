package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/computerwizzy/shopify-inventory-sync/internal/config"
	"github.com/computerwizzy/shopify-inventory-sync/internal/crypto"
	"github.com/computerwizzy/shopify-inventory-sync/internal/database"
	feedsdb "github.com/computerwizzy/shopify-inventory-sync/internal/database/feeds"
	"github.com/computerwizzy/shopify-inventory-sync/internal/feeds"
	"github.com/computerwizzy/shopify-inventory-sync/internal/mapping"
	"github.com/computerwizzy/shopify-inventory-sync/internal/matching"
	"github.com/computerwizzy/shopify-inventory-sync/internal/resilience"
	"github.com/computerwizzy/shopify-inventory-sync/internal/shopify"
	"github.com/computerwizzy/shopify-inventory-sync/internal/syncer"
)

type SyncOnceCommand struct {
	FeedName      string
	DatabasePath  string
	Policy        string
	Threshold     int
	IncludeFuzzy  bool
	MinConfidence float64
	BatchSize     int
	SkipZero      bool
	DryRun        bool
	Timeout       time.Duration
	Verbose       bool
}

func NewSyncOnceCommand() *SyncOnceCommand {
	return &SyncOnceCommand{}
}

func (cmd *SyncOnceCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync-once", flag.ExitOnError)

	fs.StringVar(&cmd.FeedName, "feed", "", "Name of the stored feed source to sync (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.Policy, "policy", "inventory", "Comma-separated Shopify fields to push (see below)")
	fs.IntVar(&cmd.Threshold, "threshold", 0, "Fuzzy match threshold 1-100 (0 uses the configured default)")
	fs.BoolVar(&cmd.IncludeFuzzy, "include-fuzzy", false, "Sync fuzzy matches too, not just exact SKU matches")
	fs.Float64Var(&cmd.MinConfidence, "min-confidence", 0, "Drop fuzzy matches below this confidence (0.0-1.0)")
	fs.IntVar(&cmd.BatchSize, "batch-size", 0, "Variants per batch (0 uses the configured default)")
	fs.BoolVar(&cmd.SkipZero, "skip-zero", false, "Skip rows whose feed quantity is zero")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Match and report without writing to Shopify")
	fs.DurationVar(&cmd.Timeout, "timeout", 10*time.Minute, "Overall run timeout")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every match and sync outcome")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync-once [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Run one sync of a stored feed against the Shopify catalog, outside the scheduler.\n")
		fmt.Fprintf(os.Stderr, "Requires SHOPIFY_STORE_DOMAIN and SHOPIFY_ACCESS_TOKEN in the environment.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nPolicy fields: %s\n", strings.Join(policyFieldNames(), ", "))
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s sync-once -feed warehouse -dry-run\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync-once -feed warehouse -policy inventory,price\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync-once -feed warehouse -include-fuzzy -threshold 90 -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FeedName == "" {
		fs.Usage()
		return fmt.Errorf("feed name is required")
	}

	return nil
}

func (cmd *SyncOnceCommand) Run() error {
	cfg := config.NewConfig()

	if cfg.Shopify.StoreDomain == "" || cfg.Shopify.AccessToken == "" {
		return fmt.Errorf("SHOPIFY_STORE_DOMAIN and SHOPIFY_ACCESS_TOKEN must be set")
	}

	policy, err := parsePolicyFlag(cmd.Policy)
	if err != nil {
		return err
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	feed, err := feedsdb.NewRepository(db.DB).GetFeedByName(cmd.FeedName)
	if err != nil {
		return fmt.Errorf("feed %q not found in %s: %w", cmd.FeedName, cmd.DatabasePath, err)
	}

	enc, err := commandEncryptor(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	fmt.Printf("Fetching feed %q (%s)...\n", feed.Name, feed.Type)
	src, err := feeds.Open(feed, enc)
	if err != nil {
		return err
	}
	table, err := src.Rows(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}
	fmt.Printf("Fetched %d rows with %d columns\n", len(table.Rows), len(table.Headers))

	colMapping, err := mapping.ParseJSON(feed.ColumnMapping)
	if err != nil {
		return fmt.Errorf("feed %q has an invalid column mapping: %w", feed.Name, err)
	}
	if err := mapping.ValidateRequired(colMapping); err != nil {
		return err
	}
	if missing := mapping.MissingColumns(table, colMapping); len(missing) > 0 {
		return fmt.Errorf("feed is missing mapped columns: %s", strings.Join(missing, ", "))
	}
	for _, warning := range matching.QualityWarnings(table, colMapping) {
		fmt.Printf("[WARN] %s\n", warning)
	}
	mapped := mapping.Apply(table, colMapping)

	fmt.Println("Fetching Shopify catalog...")
	gateway := newGateway(cfg)
	index, err := gateway.BuildSKUIndex(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch Shopify catalog: %w", err)
	}
	fmt.Printf("Indexed %d catalog variants\n", len(index))

	threshold := cmd.Threshold
	if threshold == 0 {
		threshold = cfg.Matching.FuzzyThreshold
	}
	results := matching.NewMatcher(threshold).Match(mapped.Rows, index)
	stats := matching.Statistics(results)

	fmt.Printf("\n=== Match Results ===\n")
	fmt.Printf("Matched: %d/%d rows (%.1f%%)\n", stats.Exact+stats.Fuzzy, stats.Total, stats.MatchRate*100)
	fmt.Printf("Exact: %d  Fuzzy: %d  Unmatched: %d\n", stats.Exact, stats.Fuzzy, stats.NoMatch)
	if cmd.Verbose {
		for _, r := range results {
			switch r.MatchType {
			case matching.MatchTypeExact:
				fmt.Printf("  [exact] %-24s qty %d -> %d\n", r.FileSKU, r.CurrentQuantity, r.NewQuantity)
			case matching.MatchTypeFuzzy:
				fmt.Printf("  [fuzzy] %-24s -> %-24s (%.0f%%) qty %d -> %d\n",
					r.FileSKU, r.MatchedSKU, r.Confidence*100, r.CurrentQuantity, r.NewQuantity)
			default:
				fmt.Printf("  [none]  %s\n", r.FileSKU)
			}
		}
	}

	candidates := matching.Filter(results, matching.FilterOptions{
		IncludeExact:  true,
		IncludeFuzzy:  cmd.IncludeFuzzy,
		MinConfidence: cmd.MinConfidence,
	})
	if len(candidates) == 0 {
		fmt.Println("\nNothing to sync")
		return nil
	}

	if cmd.DryRun {
		fmt.Printf("\n=== Dry Run (%d candidates) ===\n", len(candidates))
		for _, m := range candidates {
			fmt.Printf("  %-24s variant %-12d qty %d -> %d\n", m.MatchedSKU, m.VariantID, m.CurrentQuantity, m.NewQuantity)
		}
		fmt.Println("\n[OK] Dry run complete, nothing was written")
		return nil
	}

	batchSize := cmd.BatchSize
	if batchSize <= 0 {
		batchSize = cfg.Sync.BatchSize
	}

	fmt.Printf("\nSyncing %d variants in batches of %d...\n", len(candidates), batchSize)
	result, runErr := syncer.NewEngine(gateway).Execute(ctx, candidates, policy, syncer.Options{
		BatchSize:         batchSize,
		BatchPause:        cfg.Sync.BatchPause,
		SkipZeroInventory: cmd.SkipZero,
	})
	if result == nil {
		return runErr
	}

	fmt.Printf("\n=== Sync Summary ===\n")
	fmt.Printf("Synced:  %d\n", result.Synced)
	fmt.Printf("Failed:  %d\n", result.Failed)
	fmt.Printf("Skipped: %d\n", result.Skipped)
	for _, o := range result.Outcomes {
		if !o.Success {
			fmt.Printf("[ERROR] %s (variant %d): %s\n", o.SKU, o.VariantID, o.Error)
		} else if cmd.Verbose {
			fmt.Printf("[OK] %s: %s\n", o.SKU, strings.Join(o.UpdatedFields, ", "))
		}
	}

	if result.Aborted {
		fmt.Println("[ERROR] Run aborted early: Shopify is overloaded, remaining rows were not attempted")
	}
	if runErr != nil {
		return fmt.Errorf("sync finished with errors")
	}
	fmt.Printf("[OK] Successfully synced %d variants\n", result.Synced)
	return nil
}

// newGateway builds the resilient Shopify client from environment config,
// the same stack the server uses.
func newGateway(cfg *config.Config) *shopify.Client {
	breaker := resilience.NewCircuitBreaker(cfg.Shopify.FailureThreshold, cfg.Shopify.RecoveryTimeout)
	limiter := resilience.NewAdaptiveRateLimiter(cfg.Shopify.RateLimitInitialDelay, cfg.Shopify.RateLimitMaxDelay)

	retry := resilience.DefaultRetryPolicy()
	if cfg.Shopify.RetryMaxAttempts > 0 {
		retry.MaxAttempts = cfg.Shopify.RetryMaxAttempts
	}
	if cfg.Shopify.RetryMaxElapsed > 0 {
		retry.MaxElapsed = cfg.Shopify.RetryMaxElapsed
	}

	return shopify.NewClient(shopify.Config{
		ShopDomain:  cfg.Shopify.StoreDomain,
		AccessToken: cfg.Shopify.AccessToken,
		APIVersion:  cfg.Shopify.APIVersion,
		Timeout:     cfg.Shopify.RequestTimeout,
	}, breaker, limiter, retry)
}

// commandEncryptor returns the credentials encryptor for CLI use. Without a
// configured key, feeds that carry stored credentials cannot be opened, so a
// throwaway key is generated and a warning printed.
func commandEncryptor(cfg *config.Config) (*crypto.Encryptor, error) {
	key := cfg.Credentials.EncryptionKey
	if key == "" {
		generated, err := crypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate throwaway key: %w", err)
		}
		key = generated
		log.Println("CREDENTIALS_ENCRYPTION_KEY is not set; feeds with stored credentials will fail to decrypt")
	}
	enc, err := crypto.NewEncryptorFromBase64(key)
	if err != nil {
		return nil, fmt.Errorf("invalid CREDENTIALS_ENCRYPTION_KEY: %w", err)
	}
	return enc, nil
}

var policyFields = map[string]func(*syncer.SyncFieldPolicy){
	"inventory":        func(p *syncer.SyncFieldPolicy) { p.InventoryQuantity = true },
	"title":            func(p *syncer.SyncFieldPolicy) { p.ProductTitle = true },
	"description":      func(p *syncer.SyncFieldPolicy) { p.ProductDescription = true },
	"vendor":           func(p *syncer.SyncFieldPolicy) { p.ProductVendor = true },
	"product-type":     func(p *syncer.SyncFieldPolicy) { p.ProductType = true },
	"status":           func(p *syncer.SyncFieldPolicy) { p.ProductStatus = true },
	"price":            func(p *syncer.SyncFieldPolicy) { p.VariantPrice = true },
	"compare-at-price": func(p *syncer.SyncFieldPolicy) { p.CompareAtPrice = true },
	"weight":           func(p *syncer.SyncFieldPolicy) { p.VariantWeight = true },
	"sku":              func(p *syncer.SyncFieldPolicy) { p.VariantSKU = true },
	"track-inventory":  func(p *syncer.SyncFieldPolicy) { p.TrackInventory = true },
}

func policyFieldNames() []string {
	names := make([]string, 0, len(policyFields))
	for name := range policyFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parsePolicyFlag(raw string) (syncer.SyncFieldPolicy, error) {
	var policy syncer.SyncFieldPolicy
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(strings.ToLower(token))
		if token == "" {
			continue
		}
		set, ok := policyFields[token]
		if !ok {
			return policy, fmt.Errorf("unknown policy field %q (valid: %s)", token, strings.Join(policyFieldNames(), ", "))
		}
		set(&policy)
	}
	if !policy.Enabled() {
		return policy, fmt.Errorf("policy selects no fields")
	}
	return policy, nil
}
