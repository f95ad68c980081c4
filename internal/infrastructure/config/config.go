package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when the configuration fails validation
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Log        LogConfig
	Shopify    ShopifyConfig
	Mirakl     MiraklConfig
	Sync       SyncConfig
	Schedule   ScheduleConfig
	Checkpoint CheckpointConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Storage    StorageConfig
	Telemetry  TelemetryConfig
	HTTP       HTTPConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// ShopifyConfig holds storefront credentials
type ShopifyConfig struct {
	ShopDomain        string `validate:"required_without=APIBaseURL,notplaceholder"`
	AccessToken       string `validate:"required,notplaceholder"`
	APIVersion        string
	APIBaseURL        string `validate:"omitempty,url"`
	TimeoutSeconds    int
	RequestsPerSecond float64
	Burst             int
}

// MiraklConfig holds marketplace credentials
type MiraklConfig struct {
	APIBaseURL        string `validate:"required,url,notplaceholder"`
	APIKey            string `validate:"required,notplaceholder"`
	ShopID            string
	OrderStates       []string
	TimeoutSeconds    int
	RequestsPerSecond float64
	Burst             int
}

// SyncConfig holds sync routine tunables
type SyncConfig struct {
	ProductLimit         int
	TrackingOrderLimit   int
	AbortOnOrderFailure  bool // stop the order pass at the first failed order
	DescriptionMaxLength int  // in characters
	LeadTimeToShip       int  // in days
	HistorySize          int
	RunOnStartup         bool // run every routine once before the scheduler starts
}

// ScheduleConfig holds the sync trigger intervals
type ScheduleConfig struct {
	Enabled           bool
	CheckInterval     time.Duration // how often due routines are looked for
	OffersInterval    time.Duration
	InventoryInterval time.Duration
	OrdersInterval    time.Duration
	TrackingInterval  time.Duration
	RunTimeout        time.Duration // upper bound of a single routine run
}

// CheckpointConfig selects the checkpoint backend
type CheckpointConfig struct {
	Driver string // file, database
	Path   string // JSON file path for the file driver
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // sqlite, postgres
	SQLitePath      string
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

// RedisConfig holds Redis connection settings for the shared run lock
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	LockKey  string
	LockTTL  time.Duration
}

// StorageConfig holds S3 settings for the offer file archive
type StorageConfig struct {
	Enabled         bool
	Bucket          string
	Region          string
	Endpoint        string // custom endpoint for MinIO or other S3-compatible services
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	UsePathStyle    bool
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool          // Whether to export metrics
	CollectorEndpoint string        // OTEL Collector endpoint (e.g., "localhost:4317")
	ServiceName       string        // Service name for metrics
	ServiceVersion    string        // Reported as service.version, "dev" when empty
	Insecure          bool          // Use insecure (non-TLS) connection (development only)
	ExportInterval    time.Duration // Metric export interval
}

// HTTPConfig holds the admin HTTP server configuration
type HTTPConfig struct {
	Enabled      bool
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	AdminToken   string // bearer token for the manual trigger endpoint, empty disables the check
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SYNC_ prefix (e.g., SYNC_SHOPIFY_ACCESS_TOKEN)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	return load(v)
}

// LoadFile loads configuration from an explicit TOML file plus environment variables
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("SYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans that default to true cannot be told apart from "unset" later
	v.SetDefault("sync.abort_on_order_failure", true)
	v.SetDefault("schedule.enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Shopify: ShopifyConfig{
			ShopDomain:        v.GetString("shopify.shop_domain"),
			AccessToken:       v.GetString("shopify.access_token"),
			APIVersion:        v.GetString("shopify.api_version"),
			APIBaseURL:        v.GetString("shopify.api_base_url"),
			TimeoutSeconds:    v.GetInt("shopify.timeout_seconds"),
			RequestsPerSecond: v.GetFloat64("shopify.requests_per_second"),
			Burst:             v.GetInt("shopify.burst"),
		},
		Mirakl: MiraklConfig{
			APIBaseURL:        v.GetString("mirakl.api_base_url"),
			APIKey:            v.GetString("mirakl.api_key"),
			ShopID:            v.GetString("mirakl.shop_id"),
			OrderStates:       v.GetStringSlice("mirakl.order_states"),
			TimeoutSeconds:    v.GetInt("mirakl.timeout_seconds"),
			RequestsPerSecond: v.GetFloat64("mirakl.requests_per_second"),
			Burst:             v.GetInt("mirakl.burst"),
		},
		Sync: SyncConfig{
			ProductLimit:         v.GetInt("sync.product_limit"),
			TrackingOrderLimit:   v.GetInt("sync.tracking_order_limit"),
			AbortOnOrderFailure:  v.GetBool("sync.abort_on_order_failure"),
			DescriptionMaxLength: v.GetInt("sync.description_max_length"),
			LeadTimeToShip:       v.GetInt("sync.leadtime_to_ship"),
			HistorySize:          v.GetInt("sync.history_size"),
			RunOnStartup:         v.GetBool("sync.run_on_startup"),
		},
		Schedule: ScheduleConfig{
			Enabled:           v.GetBool("schedule.enabled"),
			CheckInterval:     v.GetDuration("schedule.check_interval"),
			OffersInterval:    v.GetDuration("schedule.offers_interval"),
			InventoryInterval: v.GetDuration("schedule.inventory_interval"),
			OrdersInterval:    v.GetDuration("schedule.orders_interval"),
			TrackingInterval:  v.GetDuration("schedule.tracking_interval"),
			RunTimeout:        v.GetDuration("schedule.run_timeout"),
		},
		Checkpoint: CheckpointConfig{
			Driver: v.GetString("checkpoint.driver"),
			Path:   v.GetString("checkpoint.path"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			SQLitePath:      v.GetString("database.sqlite_path"),
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
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			LockKey:  v.GetString("redis.lock_key"),
			LockTTL:  v.GetDuration("redis.lock_ttl"),
		},
		Storage: StorageConfig{
			Enabled:         v.GetBool("storage.enabled"),
			Bucket:          v.GetString("storage.bucket"),
			Region:          v.GetString("storage.region"),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			Prefix:          v.GetString("storage.prefix"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			ServiceName:       v.GetString("telemetry.service_name"),
			ServiceVersion:    v.GetString("telemetry.service_version"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
		},
		HTTP: HTTPConfig{
			Enabled:      v.GetBool("http.enabled"),
			Port:         v.GetString("http.port"),
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
			AdminToken:   v.GetString("http.admin_token"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "shopify-mirakl-sync"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
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
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = "2024-01"
	}
	if cfg.Shopify.TimeoutSeconds == 0 {
		cfg.Shopify.TimeoutSeconds = 30
	}
	if cfg.Shopify.RequestsPerSecond == 0 {
		cfg.Shopify.RequestsPerSecond = 2
	}
	if cfg.Shopify.Burst == 0 {
		cfg.Shopify.Burst = 40
	}
	if cfg.Mirakl.TimeoutSeconds == 0 {
		cfg.Mirakl.TimeoutSeconds = 60
	}
	if cfg.Mirakl.RequestsPerSecond == 0 {
		cfg.Mirakl.RequestsPerSecond = 1
	}
	if cfg.Mirakl.Burst == 0 {
		cfg.Mirakl.Burst = 5
	}
	if cfg.Sync.ProductLimit == 0 {
		cfg.Sync.ProductLimit = 250
	}
	if cfg.Sync.TrackingOrderLimit == 0 {
		cfg.Sync.TrackingOrderLimit = 250
	}
	if cfg.Sync.DescriptionMaxLength == 0 {
		cfg.Sync.DescriptionMaxLength = 500
	}
	if cfg.Sync.LeadTimeToShip == 0 {
		cfg.Sync.LeadTimeToShip = 2
	}
	if cfg.Sync.HistorySize == 0 {
		cfg.Sync.HistorySize = 50
	}
	if cfg.Schedule.CheckInterval == 0 {
		cfg.Schedule.CheckInterval = time.Minute
	}
	if cfg.Schedule.OffersInterval == 0 {
		cfg.Schedule.OffersInterval = 60 * time.Minute
	}
	if cfg.Schedule.InventoryInterval == 0 {
		cfg.Schedule.InventoryInterval = 15 * time.Minute
	}
	if cfg.Schedule.OrdersInterval == 0 {
		cfg.Schedule.OrdersInterval = 10 * time.Minute
	}
	if cfg.Schedule.TrackingInterval == 0 {
		cfg.Schedule.TrackingInterval = 30 * time.Minute
	}
	if cfg.Schedule.RunTimeout == 0 {
		cfg.Schedule.RunTimeout = 30 * time.Minute
	}
	if cfg.Checkpoint.Driver == "" {
		cfg.Checkpoint.Driver = "file"
	}
	if cfg.Checkpoint.Path == "" {
		cfg.Checkpoint.Path = "data/sync-state.json"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/sync.db"
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
		cfg.Database.DBName = "sync"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 5
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
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
	if cfg.Redis.LockKey == "" {
		cfg.Redis.LockKey = "sync:run-lock"
	}
	if cfg.Redis.LockTTL == 0 {
		cfg.Redis.LockTTL = 30 * time.Minute
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = "offer-imports"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "shopify-mirakl-sync"
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 60 * time.Second
	}
	if cfg.HTTP.Port == "" {
		cfg.HTTP.Port = "8080"
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
}

// validate performs structural validation on the configuration.
// Credentials are checked separately by ValidateCredentials.
func (c *Config) validate() error {
	switch c.Checkpoint.Driver {
	case "file", "database":
	default:
		return fmt.Errorf("%w: checkpoint.driver must be 'file' or 'database', got %q", ErrInvalidConfig, c.Checkpoint.Driver)
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: database.driver must be 'sqlite' or 'postgres', got %q", ErrInvalidConfig, c.Database.Driver)
	}

	// Validate connection pool settings
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("%w: database.max_open_conns must be positive", ErrInvalidConfig)
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("%w: database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			ErrInvalidConfig, c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Sync.ProductLimit < 0 || c.Sync.ProductLimit > 250 {
		return fmt.Errorf("%w: sync.product_limit must be between 1 and 250", ErrInvalidConfig)
	}
	if c.Sync.LeadTimeToShip < 0 {
		return fmt.Errorf("%w: sync.leadtime_to_ship cannot be negative", ErrInvalidConfig)
	}

	if c.Schedule.CheckInterval < time.Second {
		return fmt.Errorf("%w: schedule.check_interval must be at least 1s", ErrInvalidConfig)
	}
	for name, interval := range map[string]time.Duration{
		"schedule.offers_interval":    c.Schedule.OffersInterval,
		"schedule.inventory_interval": c.Schedule.InventoryInterval,
		"schedule.orders_interval":    c.Schedule.OrdersInterval,
		"schedule.tracking_interval":  c.Schedule.TrackingInterval,
	} {
		if interval < c.Schedule.CheckInterval {
			return fmt.Errorf("%w: %s (%s) must not be shorter than schedule.check_interval (%s)",
				ErrInvalidConfig, name, interval, c.Schedule.CheckInterval)
		}
	}

	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("%w: storage.bucket is required when storage is enabled", ErrInvalidConfig)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Database.Driver == "postgres" && c.Database.SSLMode == "disable" {
			return fmt.Errorf("%w: database.sslmode cannot be 'disable' in production", ErrInvalidConfig)
		}
		if c.HTTP.Enabled && c.HTTP.AdminToken == "" {
			return fmt.Errorf("%w: http.admin_token is required in production when the admin server is enabled", ErrInvalidConfig)
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
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

// RedisAddr returns the host:port address of the Redis server
func (r *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
