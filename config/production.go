// Package config provides configuration management and environment variable handling for the application
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Database   DatabaseConfig   `json:"database"`
	Server     ServerConfig     `json:"server"`
	Security   SecurityConfig   `json:"security"`
	ZAPI       ZAPIConfig       `json:"zapi"`
	Redirect   RedirectConfig   `json:"redirect"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
	Cache      CacheConfig      `json:"cache"`
	Scheduler  SchedulerConfig  `json:"scheduler"`
	Deployment DeploymentConfig `json:"deployment"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	BodyLimit       int           `json:"body_limit"`
	ProxyHeader     string        `json:"proxy_header"`
	TrustedProxies  []string      `json:"trusted_proxies"`
}

type SecurityConfig struct {
	// CORS for the management API. Redirect routes always answer with
	// permissive CORS regardless of these values.
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	CORSMaxAge       int      `json:"cors_max_age"`

	// Rate Limiting
	GlobalRateLimit   int           `json:"global_rate_limit"` // requests per window
	RedirectRateLimit int           `json:"redirect_rate_limit"`
	RateLimitWindow   time.Duration `json:"rate_limit_window"`

	// API Security (management routes; authentication itself is delegated
	// to the external auth provider fronting this service)
	RequireAPIKey  bool     `json:"require_api_key"`
	APIKeyHeader   string   `json:"api_key_header"`
	AllowedAPIKeys []string `json:"allowed_api_keys"`
}

// ZAPIConfig configures the Z-API client used both as the membership provider
// (group invitation metadata) and as the outbound messaging proxy.
type ZAPIConfig struct {
	BaseURL       string        `json:"base_url"`
	InstanceID    string        `json:"instance_id"`
	InstanceToken string        `json:"instance_token"`
	ClientToken   string        `json:"client_token"`
	Timeout       time.Duration `json:"timeout"`
}

// RedirectConfig tunes the smart-link resolver.
type RedirectConfig struct {
	// ProbeTimeout bounds a single live member-count probe; on expiry the
	// cached count is used and resolution continues.
	ProbeTimeout time.Duration `json:"probe_timeout"`
	// MemberCacheTTL is how long a probed count stays fresh in Redis.
	MemberCacheTTL time.Duration `json:"member_cache_ttl"`
	// MetadataMaxLen bounds stored click user-agent/referrer strings.
	MetadataMaxLen int `json:"metadata_max_len"`
}

type LoggingConfig struct {
	Level           string `json:"level"`  // debug, info, warn, error
	Format          string `json:"format"` // json, text
	EnableAccessLog bool   `json:"enable_access_log"`

	// Scheduler log file (rotated)
	SchedulerLogPath string `json:"scheduler_log_path"`
	MaxSize          int    `json:"max_size"` // MB
	MaxBackups       int    `json:"max_backups"`
	MaxAge           int    `json:"max_age"` // days
	Compress         bool   `json:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type CacheConfig struct {
	Enabled         bool          `json:"enabled"`
	Provider        string        `json:"provider"` // redis, memory
	RedisURL        string        `json:"redis_url"`
	RedisDB         int           `json:"redis_db"`
	RedisPrefix     string        `json:"redis_prefix"`
	DefaultTTL      time.Duration `json:"default_ttl"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

// SchedulerConfig configures the background member-count sync.
type SchedulerConfig struct {
	Enabled  bool          `json:"enabled"`
	Interval time.Duration `json:"interval"`
}

type DeploymentConfig struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
	CommitHash  string `json:"commit_hash"`
	BuildTime   string `json:"build_time"`
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	// Load environment variables from .env file
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "zaplinks"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
		},
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:       getEnvInt("SERVER_BODY_LIMIT", 4*1024*1024), // 4MB
			ProxyHeader:     getEnvString("SERVER_PROXY_HEADER", "X-Real-IP"),
			TrustedProxies:  getEnvStringSlice("SERVER_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
		Security: SecurityConfig{
			AllowedOrigins:    getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"https://app.zaplinks.io", "https://admin.zaplinks.io"}),
			AllowedMethods:    getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:    getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-API-Key"}),
			AllowCredentials:  getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			CORSMaxAge:        getEnvInt("CORS_MAX_AGE", 86400),
			GlobalRateLimit:   getEnvInt("GLOBAL_RATE_LIMIT", 2000),
			RedirectRateLimit: getEnvInt("REDIRECT_RATE_LIMIT", 600),
			RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
			RequireAPIKey:     getEnvBool("REQUIRE_API_KEY", false),
			APIKeyHeader:      getEnvString("API_KEY_HEADER", "X-API-Key"),
			AllowedAPIKeys:    getEnvStringSlice("ALLOWED_API_KEYS", []string{}),
		},
		ZAPI: ZAPIConfig{
			BaseURL:       getEnvString("ZAPI_BASE_URL", "https://api.z-api.io"),
			InstanceID:    getEnvString("ZAPI_INSTANCE_ID", ""),
			InstanceToken: getEnvString("ZAPI_INSTANCE_TOKEN", ""),
			ClientToken:   getEnvString("ZAPI_CLIENT_TOKEN", ""),
			Timeout:       getEnvDuration("ZAPI_TIMEOUT", 30*time.Second),
		},
		Redirect: RedirectConfig{
			ProbeTimeout:   getEnvDuration("REDIRECT_PROBE_TIMEOUT", 5*time.Second),
			MemberCacheTTL: getEnvDuration("REDIRECT_MEMBER_CACHE_TTL", 60*time.Second),
			MetadataMaxLen: getEnvInt("REDIRECT_METADATA_MAX_LEN", 500),
		},
		Logging: LoggingConfig{
			Level:            getEnvString("LOG_LEVEL", "info"),
			Format:           getEnvString("LOG_FORMAT", "json"),
			EnableAccessLog:  getEnvBool("LOG_ENABLE_ACCESS_LOG", true),
			SchedulerLogPath: getEnvString("LOG_SCHEDULER_PATH", "logs/member-sync.log"),
			MaxSize:          getEnvInt("LOG_MAX_SIZE", 50),
			MaxBackups:       getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAge:           getEnvInt("LOG_MAX_AGE", 30),
			Compress:         getEnvBool("LOG_COMPRESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
		Cache: CacheConfig{
			Enabled:         getEnvBool("CACHE_ENABLED", false),
			Provider:        getEnvString("CACHE_PROVIDER", "redis"),
			RedisURL:        getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:         getEnvInt("CACHE_REDIS_DB", 0),
			RedisPrefix:     getEnvString("CACHE_REDIS_PREFIX", "zaplinks"),
			DefaultTTL:      getEnvDuration("CACHE_DEFAULT_TTL", 5*time.Minute),
			CleanupInterval: getEnvDuration("CACHE_CLEANUP_INTERVAL", 30*time.Second),
		},
		Scheduler: SchedulerConfig{
			Enabled:  getEnvBool("SCHEDULER_ENABLED", true),
			Interval: getEnvDuration("SCHEDULER_INTERVAL", 10*time.Minute),
		},
		Deployment: DeploymentConfig{
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("APP_VERSION", "dev"),
			CommitHash:  getEnvString("APP_COMMIT_HASH", ""),
			BuildTime:   getEnvString("APP_BUILD_TIME", ""),
		},
	}

	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment without overriding variables that are already set.
func loadEnvFile() error {
	file, err := os.Open(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env is optional
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errors []string

	if cfg.Database.Host == "" {
		errors = append(errors, "DB_HOST is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		errors = append(errors, "DB_PORT must be between 1 and 65535")
	}
	if cfg.Database.Name == "" {
		errors = append(errors, "DB_NAME is required")
	}
	if cfg.Database.User == "" {
		errors = append(errors, "DB_USER is required")
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		errors = append(errors, "SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		errors = append(errors, "SERVER_WRITE_TIMEOUT must be positive")
	}

	if cfg.ZAPI.BaseURL == "" {
		errors = append(errors, "ZAPI_BASE_URL is required")
	}
	if cfg.ZAPI.BaseURL != "mock" {
		if cfg.ZAPI.InstanceID == "" {
			errors = append(errors, "ZAPI_INSTANCE_ID is required for the Z-API provider")
		}
		if cfg.ZAPI.InstanceToken == "" {
			errors = append(errors, "ZAPI_INSTANCE_TOKEN is required for the Z-API provider")
		}
	}

	if cfg.Redirect.ProbeTimeout <= 0 {
		errors = append(errors, "REDIRECT_PROBE_TIMEOUT must be positive")
	}
	if cfg.Redirect.MetadataMaxLen <= 0 {
		errors = append(errors, "REDIRECT_METADATA_MAX_LEN must be positive")
	}

	if cfg.Security.RequireAPIKey && len(cfg.Security.AllowedAPIKeys) == 0 {
		errors = append(errors, "ALLOWED_API_KEYS is required when REQUIRE_API_KEY is enabled")
	}

	if cfg.Logging.Level != "" {
		validLevels := []string{"debug", "info", "warn", "error"}
		valid := false
		for _, level := range validLevels {
			if cfg.Logging.Level == level {
				valid = true
				break
			}
		}
		if !valid {
			errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %v", validLevels))
		}
	}

	if cfg.Cache.Enabled {
		if cfg.Cache.Provider == "redis" && cfg.Cache.RedisURL == "" {
			errors = append(errors, "CACHE_REDIS_URL is required when cache is enabled with redis provider")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}
