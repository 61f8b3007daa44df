package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/computerwizzy/shopify-inventory-sync/internal/audit"
	"github.com/computerwizzy/shopify-inventory-sync/internal/catalogcache"
	"github.com/computerwizzy/shopify-inventory-sync/internal/config"
	"github.com/computerwizzy/shopify-inventory-sync/internal/crypto"
	"github.com/computerwizzy/shopify-inventory-sync/internal/database"
	auditdb "github.com/computerwizzy/shopify-inventory-sync/internal/database/audit"
	feedsdb "github.com/computerwizzy/shopify-inventory-sync/internal/database/feeds"
	jobsdb "github.com/computerwizzy/shopify-inventory-sync/internal/database/jobs"
	runsdb "github.com/computerwizzy/shopify-inventory-sync/internal/database/runs"
	settingsdb "github.com/computerwizzy/shopify-inventory-sync/internal/database/settings"
	http_controllers "github.com/computerwizzy/shopify-inventory-sync/internal/http"
	"github.com/computerwizzy/shopify-inventory-sync/internal/metrics"
	"github.com/computerwizzy/shopify-inventory-sync/internal/resilience"
	"github.com/computerwizzy/shopify-inventory-sync/internal/scheduler"
	"github.com/computerwizzy/shopify-inventory-sync/internal/settingsstore"
	"github.com/computerwizzy/shopify-inventory-sync/internal/shopify"
	"github.com/computerwizzy/shopify-inventory-sync/internal/syncer"
	"github.com/computerwizzy/shopify-inventory-sync/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	if cfg.Shopify.StoreDomain == "" || cfg.Shopify.AccessToken == "" {
		log.Printf("WARNING: Shopify credentials are not set. Catalog and sync operations will fail. Set 'SHOPIFY_STORE_DOMAIN' and 'SHOPIFY_ACCESS_TOKEN' environment variables to enable.")
	}

	// The SQLite file and the task queue database both live next to the
	// configured path, so its directory must exist and be writable.
	if cfg.Database.Path != ":memory:" {
		dir := filepath.Dir(cfg.Database.Path)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			log.Fatalf("Database directory %s does not exist", dir)
			return
		}

		probe := filepath.Join(dir, ".inventory-sync-probe")
		f, err := os.Create(probe)
		if err != nil {
			log.Fatalf("Database directory %s is not writable", dir)
			return
		}
		f.Close()
		os.Remove(probe)
	}

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Block until SIGINT or SIGTERM, then drain within the configured
	// timeout. The shutdown callback runs first so in-flight syncs and
	// task workers stop before the listener closes.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Inventory Sync v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	feedRepo := feedsdb.NewRepository(db.DB)
	jobRepo := jobsdb.NewRepository(db.DB)
	runRepo := runsdb.NewRepository(db.DB)
	settingsStore := settingsstore.New(settingsdb.NewRepository(db.DB))
	auditService := audit.NewService(auditdb.NewRepository(db.DB))

	encryptor, err := buildEncryptor(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize credentials encryptor: %v", err)
	}

	// The Shopify gateway is optional at startup: without credentials the
	// server still manages feeds and jobs, it just cannot reach the store.
	var gateway *shopify.Client
	if cfg.Shopify.StoreDomain != "" && cfg.Shopify.AccessToken != "" {
		gateway = buildGateway(cfg)
		log.Printf("Shopify gateway configured for %s", cfg.Shopify.StoreDomain)
	}

	fetch := func(ctx context.Context) (map[string]shopify.CatalogVariant, error) {
		return nil, fmt.Errorf("shopify credentials are not configured")
	}
	if gateway != nil {
		fetch = gateway.BuildSKUIndex
	}
	catalog := catalogcache.New(cfg.Cache.CatalogTTL, fetch)
	engine := syncer.NewEngine(gateway)

	recorder := metrics.NewRecorder()
	recorder.ObserveCatalogCache(catalog.Stats)
	if gateway != nil {
		recorder.ObserveGateway(gateway.Stats)
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
			RunRetentionDays:  cfg.Tasks.RunRetentionDays,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewPruneSyncRunsQueue(runRepo),
			tasks.NewPruneAuditEventsQueue(auditService),
			tasks.NewRefreshCatalogQueue(catalog),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	sched := scheduler.New(scheduler.Deps{
		Jobs:       jobRepo,
		Runs:       runRepo,
		Settings:   settingsStore,
		Catalog:    catalog,
		Engine:     engine,
		Encryptor:  encryptor,
		Audit:      auditService,
		Metrics:    recorder,
		RunTimeout: cfg.Sync.RunTimeout,
	})
	if cfg.Scheduler.Enabled {
		if err := sched.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	} else {
		log.Printf("Scheduler disabled; jobs only run on demand (set SCHEDULER_ENABLED=true to enable)")
	}

	var gatewayStats http_controllers.StatsSource
	if gateway != nil {
		gatewayStats = gateway
	}

	routerCfg := http_controllers.RouterConfig{
		Database:     db,
		Feeds:        feedRepo,
		Jobs:         jobRepo,
		Runs:         runRepo,
		Scheduler:    sched,
		Settings:     settingsStore,
		Catalog:      catalog,
		Engine:       engine,
		Encryptor:    encryptor,
		GatewayStats: gatewayStats,
		Audit:        auditService,
		TaskClient:   taskClient,
		Metrics:      recorder,
		APIToken:     cfg.Admin.APIToken,
		Version:      version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		sched.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// buildGateway assembles the resilience stack around the Shopify client
// from environment configuration.
func buildGateway(cfg *config.Config) *shopify.Client {
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

// buildEncryptor returns the credentials encryptor. Without a configured
// key an ephemeral one is generated so the server still starts, but stored
// feed credentials become unreadable after a restart.
func buildEncryptor(cfg *config.Config) (*crypto.Encryptor, error) {
	key := cfg.Credentials.EncryptionKey
	if key == "" {
		generated, err := crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		key = generated
		log.Printf("CREDENTIALS_ENCRYPTION_KEY is not set; using an ephemeral key. Generate a persistent one with 'gen-key'.")
	}
	return crypto.NewEncryptorFromBase64(key)
}
