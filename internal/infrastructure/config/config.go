package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Shopify   ShopifyConfig
	Sync      SyncConfig
	Webhook   WebhookConfig
	Purge     PurgeConfig
	Recompute RecomputeConfig
	Archive   ArchiveConfig
	Scheduler SchedulerConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// ShopifyConfig holds Shopify Admin API settings
type ShopifyConfig struct {
	APIVersion     string
	WebhookSecret  string
	RequestTimeout time.Duration
	MaxCostRetries int
}

// SyncConfig holds bulk synchronization settings
type SyncConfig struct {
	InitialPageSize int
	MinPageSize     int
	CostBackoff     time.Duration
	PageDelay       time.Duration
	BatchSize       int
}

// WebhookConfig holds webhook retry-queue settings
type WebhookConfig struct {
	RetryDelay     time.Duration
	MaxAttempts    int
	DrainInterval  time.Duration
	DrainBatchSize int
	ReceiptTTL     time.Duration
}

// PurgeConfig holds tenant offboarding settings
type PurgeConfig struct {
	BatchSize          int
	VerifyAttempts     int
	VerifyInitialDelay time.Duration
	VerifyMaxDelay     time.Duration
}

// RecomputeConfig holds recompute dispatch settings
type RecomputeConfig struct {
	DebounceWindow  time.Duration
	MaxPendingDates int
}

// ArchiveConfig holds object storage settings for abandoned webhook payloads
type ArchiveConfig struct {
	Enabled   bool
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// SchedulerConfig holds background job scheduler settings
type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	DBTraceEnabled    bool
	DBLogFullSQL      bool
	DBSlowQueryThresh time.Duration
	ProfilingEnabled  bool
	ProfilingEndpoint string
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with STORESYNC_ prefix (e.g., STORESYNC_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STORESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Shopify: ShopifyConfig{
			APIVersion:     v.GetString("shopify.api_version"),
			WebhookSecret:  v.GetString("shopify.webhook_secret"),
			RequestTimeout: v.GetDuration("shopify.request_timeout"),
			MaxCostRetries: v.GetInt("shopify.max_cost_retries"),
		},
		Sync: SyncConfig{
			InitialPageSize: v.GetInt("sync.initial_page_size"),
			MinPageSize:     v.GetInt("sync.min_page_size"),
			CostBackoff:     v.GetDuration("sync.cost_backoff"),
			PageDelay:       v.GetDuration("sync.page_delay"),
			BatchSize:       v.GetInt("sync.batch_size"),
		},
		Webhook: WebhookConfig{
			RetryDelay:     v.GetDuration("webhook.retry_delay"),
			MaxAttempts:    v.GetInt("webhook.max_attempts"),
			DrainInterval:  v.GetDuration("webhook.drain_interval"),
			DrainBatchSize: v.GetInt("webhook.drain_batch_size"),
			ReceiptTTL:     v.GetDuration("webhook.receipt_ttl"),
		},
		Purge: PurgeConfig{
			BatchSize:          v.GetInt("purge.batch_size"),
			VerifyAttempts:     v.GetInt("purge.verify_attempts"),
			VerifyInitialDelay: v.GetDuration("purge.verify_initial_delay"),
			VerifyMaxDelay:     v.GetDuration("purge.verify_max_delay"),
		},
		Recompute: RecomputeConfig{
			DebounceWindow:  v.GetDuration("recompute.debounce_window"),
			MaxPendingDates: v.GetInt("recompute.max_pending_dates"),
		},
		Archive: ArchiveConfig{
			Enabled:   v.GetBool("archive.enabled"),
			Bucket:    v.GetString("archive.bucket"),
			Region:    v.GetString("archive.region"),
			Endpoint:  v.GetString("archive.endpoint"),
			AccessKey: v.GetString("archive.access_key"),
			SecretKey: v.GetString("archive.secret_key"),
			Prefix:    v.GetString("archive.prefix"),
		},
		Scheduler: SchedulerConfig{
			Enabled:           v.GetBool("scheduler.enabled"),
			MaxConcurrentJobs: v.GetInt("scheduler.max_concurrent_jobs"),
			JobTimeout:        v.GetDuration("scheduler.job_timeout"),
			RetryAttempts:     v.GetInt("scheduler.retry_attempts"),
			RetryDelay:        v.GetDuration("scheduler.retry_delay"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			ProfilingEndpoint: v.GetString("telemetry.profiling_endpoint"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storesync-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storesync"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB; Shopify caps webhook payloads well below this
	}
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = "2024-07"
	}
	if cfg.Shopify.RequestTimeout == 0 {
		cfg.Shopify.RequestTimeout = 30 * time.Second
	}
	if cfg.Shopify.MaxCostRetries == 0 {
		cfg.Shopify.MaxCostRetries = 6
	}
	if cfg.Sync.InitialPageSize == 0 {
		cfg.Sync.InitialPageSize = 250
	}
	if cfg.Sync.MinPageSize == 0 {
		cfg.Sync.MinPageSize = 25
	}
	if cfg.Sync.CostBackoff == 0 {
		cfg.Sync.CostBackoff = 2 * time.Second
	}
	if cfg.Sync.BatchSize == 0 {
		cfg.Sync.BatchSize = 500
	}
	if cfg.Webhook.RetryDelay == 0 {
		cfg.Webhook.RetryDelay = 30 * time.Second
	}
	if cfg.Webhook.MaxAttempts == 0 {
		cfg.Webhook.MaxAttempts = 5
	}
	if cfg.Webhook.DrainInterval == 0 {
		cfg.Webhook.DrainInterval = 15 * time.Second
	}
	if cfg.Webhook.DrainBatchSize == 0 {
		cfg.Webhook.DrainBatchSize = 50
	}
	if cfg.Webhook.ReceiptTTL == 0 {
		cfg.Webhook.ReceiptTTL = 24 * time.Hour
	}
	if cfg.Purge.BatchSize == 0 {
		cfg.Purge.BatchSize = 1000
	}
	if cfg.Purge.VerifyAttempts == 0 {
		cfg.Purge.VerifyAttempts = 5
	}
	if cfg.Purge.VerifyInitialDelay == 0 {
		cfg.Purge.VerifyInitialDelay = 500 * time.Millisecond
	}
	if cfg.Purge.VerifyMaxDelay == 0 {
		cfg.Purge.VerifyMaxDelay = 8 * time.Second
	}
	if cfg.Recompute.DebounceWindow == 0 {
		cfg.Recompute.DebounceWindow = 5 * time.Second
	}
	if cfg.Recompute.MaxPendingDates == 0 {
		cfg.Recompute.MaxPendingDates = 366
	}
	if cfg.Archive.Region == "" {
		cfg.Archive.Region = "us-east-1"
	}
	if cfg.Archive.Prefix == "" {
		cfg.Archive.Prefix = "abandoned-webhooks"
	}
	if cfg.Scheduler.MaxConcurrentJobs == 0 {
		cfg.Scheduler.MaxConcurrentJobs = 3
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 30 * time.Minute
	}
	if cfg.Scheduler.RetryAttempts == 0 {
		cfg.Scheduler.RetryAttempts = 3
	}
	if cfg.Scheduler.RetryDelay == 0 {
		cfg.Scheduler.RetryDelay = 5 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "storesync-backend"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Sync.MinPageSize < 1 {
		return fmt.Errorf("sync.min_page_size must be at least 1")
	}
	if c.Sync.InitialPageSize < c.Sync.MinPageSize {
		return fmt.Errorf("sync.initial_page_size (%d) cannot be below sync.min_page_size (%d)",
			c.Sync.InitialPageSize, c.Sync.MinPageSize)
	}
	if c.Webhook.MaxAttempts < 1 {
		return fmt.Errorf("webhook.max_attempts must be at least 1")
	}

	if c.App.Env == "production" {
		if c.Shopify.WebhookSecret == "" {
			return fmt.Errorf("shopify.webhook_secret is required in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
		if c.Archive.Enabled && c.Archive.Bucket == "" {
			return fmt.Errorf("archive.bucket is required when archive is enabled in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
