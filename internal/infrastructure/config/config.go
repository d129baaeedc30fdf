package config

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Event     EventConfig     `mapstructure:"event"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Mail      MailConfig      `mapstructure:"mail"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Swagger   SwaggerConfig   `mapstructure:"swagger"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Workflow  WorkflowConfig  `mapstructure:"workflow"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, or file path
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// RedisConfig holds Redis connection settings. An empty host disables Redis
// and the in-memory fallbacks are used.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret                 string        `mapstructure:"secret"`
	AccessTokenExpiration  time.Duration `mapstructure:"access_token_expiration"`
	RefreshTokenExpiration time.Duration `mapstructure:"refresh_token_expiration"`
	Issuer                 string        `mapstructure:"issuer"`
	RefreshSecret          string        `mapstructure:"refresh_secret"`
	MaxRefreshCount        int           `mapstructure:"max_refresh_count"`
}

type EventConfig struct {
	// DedupTTL is how long a handled event id is remembered by once-handlers
	DedupTTL time.Duration `mapstructure:"dedup_ttl"`
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	MaxBodySize       int64         `mapstructure:"max_body_size"`
	MaxUploadSize     int64         `mapstructure:"max_upload_size"`
	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	CORSAllowOrigins  []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods  []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders  []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies    []string      `mapstructure:"trusted_proxies"`
}

type SchedulerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	OverdueScanInterval time.Duration `mapstructure:"overdue_scan_interval"`
	JobTimeout          time.Duration `mapstructure:"job_timeout"`
	LockTTL             time.Duration `mapstructure:"lock_ttl"` // how long one instance holds a job lock
}

// MailConfig holds SMTP settings. An empty host disables outgoing mail.
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

// StorageConfig holds S3-compatible object storage settings. An empty
// bucket keeps photos in memory.
type StorageConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	Bucket          string        `mapstructure:"bucket"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UsePathStyle    bool          `mapstructure:"use_path_style"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

type SwaggerConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"` // OTLP gRPC, e.g. localhost:4317
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"` // plaintext gRPC, development only
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`
}

// WorkflowConfig holds procurement workflow tunables
type WorkflowConfig struct {
	VATRate            decimal.Decimal `mapstructure:"vat_rate"`
	MinRFQSuppliers    int             `mapstructure:"min_rfq_suppliers"`
	DelayAlertDedupTTL time.Duration   `mapstructure:"delay_alert_dedup_ttl"`
}

// BootstrapConfig seeds the first administrator on an empty database
type BootstrapConfig struct {
	AdminName     string `mapstructure:"admin_name"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// defaults lists every key. Keys with a zero default are still listed so
// AutomaticEnv can override them during Unmarshal.
var defaults = map[string]any{
	"app.name": "procurement-backend",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "procurement",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.host":     "",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":                   "",
	"jwt.refresh_secret":           "",
	"jwt.access_token_expiration":  "15m",
	"jwt.refresh_token_expiration": "168h",
	"jwt.issuer":                   "procurement-backend",
	"jwt.max_refresh_count":        10,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"event.dedup_ttl": "72h",

	"http.read_timeout":        "15s",
	"http.write_timeout":       "30s",
	"http.idle_timeout":        "60s",
	"http.max_header_bytes":    1 << 20,
	"http.max_body_size":       1 << 20,
	"http.max_upload_size":     12 << 20, // photos are capped at 10MB
	"http.rate_limit_enabled":  false,
	"http.rate_limit_requests": 100,
	"http.rate_limit_window":   "1m",
	// an empty origin list allows no cross-origin requests
	"http.cors_allow_origins": []string{},
	"http.cors_allow_methods": []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers": []string{"Content-Type", "Authorization", "X-Request-ID"},
	"http.trusted_proxies":    []string{},

	"scheduler.enabled":               false,
	"scheduler.overdue_scan_interval": "1h",
	"scheduler.job_timeout":           "10m",
	"scheduler.lock_ttl":              "15m",

	"mail.host":      "",
	"mail.port":      587,
	"mail.username":  "",
	"mail.password":  "",
	"mail.from":      "",
	"mail.from_name": "Phòng Mua Hàng",

	"storage.endpoint":          "",
	"storage.region":            "ap-southeast-1",
	"storage.bucket":            "",
	"storage.access_key_id":     "",
	"storage.secret_access_key": "",
	"storage.use_path_style":    false,
	"storage.presign_expiry":    "15m",

	"swagger.enabled": false,

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "procurement-backend",
	"telemetry.insecure":                false,
	"telemetry.metrics_enabled":         false,
	"telemetry.metrics_interval":        "60s",
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": "200ms",

	"workflow.vat_rate":              "0.1",
	"workflow.min_rfq_suppliers":     2,
	"workflow.delay_alert_dedup_ttl": "24h",

	"bootstrap.admin_name":     "Administrator",
	"bootstrap.admin_email":    "",
	"bootstrap.admin_password": "",
}

// Load reads configuration, highest priority first:
//  1. PROC_ environment variables (PROC_DATABASE_PASSWORD)
//  2. .env in the working directory, loaded into the environment
//  3. config.toml in . or /app
//  4. defaults
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("PROC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		stringToDecimalHook,
	)))
	if err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return &cfg, nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// stringToDecimalHook decodes money and rate settings from their text or
// numeric form.
func stringToDecimalHook(from, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	}
	return data, nil
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
	if c.Workflow.VATRate.IsNegative() || c.Workflow.VATRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("workflow.vat_rate must be in [0, 1), got %s", c.Workflow.VATRate)
	}
	if c.Workflow.MinRFQSuppliers < 2 {
		return fmt.Errorf("workflow.min_rfq_suppliers must be at least 2, got %d", c.Workflow.MinRFQSuppliers)
	}
	if c.Mail.Host != "" && c.Mail.From == "" {
		return fmt.Errorf("mail.from is required when mail.host is set")
	}
	if c.Storage.Bucket != "" && c.Storage.PresignExpiry > 7*24*time.Hour {
		return fmt.Errorf("storage.presign_expiry cannot exceed 7 days")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Swagger.Enabled {
			return fmt.Errorf("swagger must be disabled in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
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

// Addr returns host:port for the Redis client
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Enabled reports whether a Redis server is configured
func (r *RedisConfig) Enabled() bool {
	return r.Host != ""
}
