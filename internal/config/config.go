package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Shopify
		Matching
		Sync
		Scheduler
		Cache
		Tasks
		Credentials
		Admin
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	// Shopify holds the catalog API connection settings. Token lifecycle is
	// not managed here; the token is attached verbatim to every request.
	Shopify struct {
		StoreDomain string // e.g. "my-store.myshopify.com"
		AccessToken string
		APIVersion  string // e.g. "2024-01"

		RequestTimeout time.Duration

		// Circuit breaker
		FailureThreshold int
		RecoveryTimeout  time.Duration

		// Adaptive rate limiter
		RateLimitInitialDelay time.Duration
		RateLimitMaxDelay     time.Duration

		// Retry policy
		RetryMaxAttempts int
		RetryMaxElapsed  time.Duration
	}

	Matching struct {
		FuzzyThreshold int
	}

	Sync struct {
		BatchSize         int
		BatchPause        time.Duration
		SkipZeroInventory bool
		RunTimeout        time.Duration
	}

	Scheduler struct {
		Enabled    bool
		HistoryCap int
	}

	Cache struct {
		CatalogTTL time.Duration
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
		RunRetentionDays  int
	}

	Credentials struct {
		// EncryptionKey is a base64-encoded 32-byte AES key used to encrypt
		// feed credentials at rest. Generated with the gen-key command.
		EncryptionKey string
	}

	Admin struct {
		// APIToken guards the control-plane endpoints. Empty disables auth
		// (local development).
		APIToken string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Shopify API defaults
	v.SetDefault("shopify_store_domain", "")
	v.SetDefault("shopify_access_token", "")
	v.SetDefault("shopify_api_version", "2024-01")
	v.SetDefault("shopify_request_timeout", "30s")
	v.SetDefault("shopify_failure_threshold", 5)
	v.SetDefault("shopify_recovery_timeout", "60s")
	v.SetDefault("rate_limit_initial_delay", "500ms")
	v.SetDefault("rate_limit_max_delay", "10s")
	v.SetDefault("retry_max_attempts", 10)
	v.SetDefault("retry_max_elapsed", "5m")

	// Matching defaults
	v.SetDefault("fuzzy_match_threshold", DefaultFuzzyThreshold)

	// Sync execution defaults
	v.SetDefault("sync_batch_size", DefaultBatchSize)
	v.SetDefault("sync_batch_pause", "1s")
	v.SetDefault("sync_skip_zero_inventory", false)
	v.SetDefault("sync_run_timeout", "30m")

	// Scheduler defaults
	v.SetDefault("scheduler_enabled", true)
	v.SetDefault("scheduler_history_cap", DefaultHistoryCap)

	// Catalog cache defaults
	v.SetDefault("catalog_cache_ttl", "5m")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")
	v.SetDefault("run_retention_days", 90)

	// Credentials / control plane
	v.SetDefault("credentials_encryption_key", "")
	v.SetDefault("admin_api_token", "")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Shopify: Shopify{
			StoreDomain:           v.GetString("SHOPIFY_STORE_DOMAIN"),
			AccessToken:           v.GetString("SHOPIFY_ACCESS_TOKEN"),
			APIVersion:            v.GetString("SHOPIFY_API_VERSION"),
			RequestTimeout:        v.GetDuration("SHOPIFY_REQUEST_TIMEOUT"),
			FailureThreshold:      v.GetInt("SHOPIFY_FAILURE_THRESHOLD"),
			RecoveryTimeout:       v.GetDuration("SHOPIFY_RECOVERY_TIMEOUT"),
			RateLimitInitialDelay: v.GetDuration("RATE_LIMIT_INITIAL_DELAY"),
			RateLimitMaxDelay:     v.GetDuration("RATE_LIMIT_MAX_DELAY"),
			RetryMaxAttempts:      v.GetInt("RETRY_MAX_ATTEMPTS"),
			RetryMaxElapsed:       v.GetDuration("RETRY_MAX_ELAPSED"),
		},
		Matching: Matching{
			FuzzyThreshold: v.GetInt("FUZZY_MATCH_THRESHOLD"),
		},
		Sync: Sync{
			BatchSize:         v.GetInt("SYNC_BATCH_SIZE"),
			BatchPause:        v.GetDuration("SYNC_BATCH_PAUSE"),
			SkipZeroInventory: v.GetBool("SYNC_SKIP_ZERO_INVENTORY"),
			RunTimeout:        v.GetDuration("SYNC_RUN_TIMEOUT"),
		},
		Scheduler: Scheduler{
			Enabled:    v.GetBool("SCHEDULER_ENABLED"),
			HistoryCap: v.GetInt("SCHEDULER_HISTORY_CAP"),
		},
		Cache: Cache{
			CatalogTTL: v.GetDuration("CATALOG_CACHE_TTL"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
			RunRetentionDays:  v.GetInt("RUN_RETENTION_DAYS"),
		},
		Credentials: Credentials{
			EncryptionKey: v.GetString("CREDENTIALS_ENCRYPTION_KEY"),
		},
		Admin: Admin{
			APIToken: v.GetString("ADMIN_API_TOKEN"),
		},
	}
}
