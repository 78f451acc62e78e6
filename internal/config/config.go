package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-authgate/mailbridge/internal/util"

	"github.com/joho/godotenv"
)

// Lease store constants
const (
	LeaseStoreMemory = "memory"
	LeaseStoreRedis  = "redis"
)

// Rate limit store constants
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// Google endpoints used when no override is configured
const (
	DefaultGoogleAuthURL    = "https://accounts.google.com/o/oauth2/auth"
	DefaultGoogleTokenURL   = "https://oauth2.googleapis.com/token"
	DefaultGoogleRevokeURL  = "https://oauth2.googleapis.com/revoke"
	DefaultGoogleAPIBaseURL = "https://www.googleapis.com/"
	DefaultGmailAPIBaseURL  = "https://gmail.googleapis.com/"
)

// Sync page size bounds
const (
	MaxSyncPageSize     = 500
	DefaultSyncPageSize = 50
	DefaultSyncMaxPages = 20
)

const minStateSecretLength = 32

type Config struct {
	// Server settings
	ServerAddr            string
	BaseURL               string
	IsProduction          bool
	ServerShutdownTimeout time.Duration

	// Database
	DatabaseDriver string // "sqlite", "sqlite-pure" or "postgres"
	DatabaseDSN    string
	DBInitTimeout  time.Duration

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	GoogleScopes       []string
	GoogleAuthURL      string
	GoogleTokenURL     string
	GoogleRevokeURL    string
	GoogleAPIBaseURL   string // userinfo
	GmailAPIBaseURL    string

	// OAuth HTTP client settings
	OAuthTimeout            time.Duration // Bound for every provider call (default: 10s)
	OAuthInsecureSkipVerify bool          // Skip TLS verification (dev/testing only)
	ProviderMaxRetries      int           // Retries for message detail and revoke calls
	ProviderRetryDelay      time.Duration
	ProviderMaxRetryDelay   time.Duration

	// State token
	StateSecret    string
	StateTTL       time.Duration
	StateSingleUse bool

	// Identity of calling users (bearer JWT issued upstream)
	SessionJWTSecret string

	// Browser destination after the OAuth callback; empty answers with JSON
	LinkRedirectURL string

	// Sync engine
	SyncPageSize int
	SyncMaxPages int // pages walked per run, at least 1
	SyncLockTTL  time.Duration

	// Lease store (sync lock and state replay guard)
	LeaseStore string // "memory" or "redis"

	// Redis settings (shared by lease store and rate limiting)
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisConnTimeout time.Duration

	// Rate limiting
	EnableRateLimit          bool
	RateLimitStore           string // "memory" or "redis"
	RateLimitCleanupInterval time.Duration
	ConnectRateLimit         int // requests per minute
	CallbackRateLimit        int
	SyncRateLimit            int

	// Metrics
	MetricsEnabled bool
	MetricsToken   string

	// Audit logging
	EnableAuditLogging   bool
	AuditLogBufferSize   int
	AuditLogRetention    time.Duration
	AuditShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if strings.HasPrefix(driver, "sqlite") {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "mailbridge.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:            getEnv("SERVER_ADDR", ":8080"),
		BaseURL:               getEnv("BASE_URL", "http://localhost:8080"),
		IsProduction:          getEnv("ENVIRONMENT", "development") == "production",
		ServerShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		DatabaseDriver:        driver,
		DatabaseDSN:           dsn,
		DBInitTimeout:         getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),

		// Google OAuth
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		GoogleScopes: getEnvSlice("GOOGLE_SCOPES", []string{
			"https://www.googleapis.com/auth/gmail.readonly",
			"https://www.googleapis.com/auth/userinfo.email",
			"openid",
		}),
		GoogleAuthURL:    getEnv("GOOGLE_AUTH_URL", DefaultGoogleAuthURL),
		GoogleTokenURL:   getEnv("GOOGLE_TOKEN_URL", DefaultGoogleTokenURL),
		GoogleRevokeURL:  getEnv("GOOGLE_REVOKE_URL", DefaultGoogleRevokeURL),
		GoogleAPIBaseURL: getEnv("GOOGLE_API_BASE_URL", DefaultGoogleAPIBaseURL),
		GmailAPIBaseURL:  getEnv("GMAIL_API_BASE_URL", DefaultGmailAPIBaseURL),

		// OAuth HTTP Client Settings
		OAuthTimeout:            getEnvDuration("OAUTH_TIMEOUT", 10*time.Second),
		OAuthInsecureSkipVerify: getEnvBool("OAUTH_INSECURE_SKIP_VERIFY", false),
		ProviderMaxRetries:      getEnvInt("PROVIDER_MAX_RETRIES", 1),
		ProviderRetryDelay:      getEnvDuration("PROVIDER_RETRY_DELAY", 500*time.Millisecond),
		ProviderMaxRetryDelay:   getEnvDuration("PROVIDER_MAX_RETRY_DELAY", 5*time.Second),

		// State token
		StateSecret:    getEnv("STATE_SECRET", ""),
		StateTTL:       getEnvDuration("STATE_TTL", 10*time.Minute),
		StateSingleUse: getEnvBool("STATE_SINGLE_USE", true),

		SessionJWTSecret: getEnv("SESSION_JWT_SECRET", ""),
		LinkRedirectURL:  getEnv("LINK_REDIRECT_URL", ""),

		// Sync engine
		SyncPageSize: getEnvInt("SYNC_PAGE_SIZE", DefaultSyncPageSize),
		SyncMaxPages: getEnvInt("SYNC_MAX_PAGES", DefaultSyncMaxPages),
		SyncLockTTL:  getEnvDuration("SYNC_LOCK_TTL", 15*time.Minute),

		LeaseStore: getEnv("LEASE_STORE", LeaseStoreMemory),

		// Redis
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		RedisConnTimeout: getEnvDuration("REDIS_CONN_TIMEOUT", 5*time.Second),

		// Rate limiting
		EnableRateLimit:          getEnvBool("ENABLE_RATE_LIMIT", true),
		RateLimitStore:           getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		RateLimitCleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		ConnectRateLimit:         getEnvInt("CONNECT_RATE_LIMIT", 10),
		CallbackRateLimit:        getEnvInt("CALLBACK_RATE_LIMIT", 20),
		SyncRateLimit:            getEnvInt("SYNC_RATE_LIMIT", 6),

		// Metrics
		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),

		// Audit logging
		EnableAuditLogging:   getEnvBool("ENABLE_AUDIT_LOGGING", true),
		AuditLogBufferSize:   getEnvInt("AUDIT_LOG_BUFFER_SIZE", 1000),
		AuditLogRetention:    getEnvDuration("AUDIT_LOG_RETENTION", 90*24*time.Hour),
		AuditShutdownTimeout: getEnvDuration("AUDIT_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Validate checks the configuration for values that would break the service at runtime
func (c *Config) Validate() error {
	if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
		return errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	if c.GoogleRedirectURL == "" {
		return errors.New("GOOGLE_REDIRECT_URL is required")
	}
	if len(c.StateSecret) < minStateSecretLength {
		return fmt.Errorf("STATE_SECRET must be at least %d bytes", minStateSecretLength)
	}
	if c.SessionJWTSecret == "" {
		return errors.New("SESSION_JWT_SECRET is required")
	}
	if !util.IsLocalRedirect(c.LinkRedirectURL, c.BaseURL) {
		return errors.New("LINK_REDIRECT_URL must be a relative path or on the BASE_URL host")
	}
	if c.StateTTL <= 0 {
		return fmt.Errorf("invalid STATE_TTL value: %s", c.StateTTL)
	}
	if c.SyncPageSize < 1 || c.SyncPageSize > MaxSyncPageSize {
		return fmt.Errorf(
			"invalid SYNC_PAGE_SIZE value: %d (must be between 1 and %d)",
			c.SyncPageSize,
			MaxSyncPageSize,
		)
	}
	if c.SyncMaxPages < 1 {
		return fmt.Errorf("invalid SYNC_MAX_PAGES value: %d (must be >= 1)", c.SyncMaxPages)
	}
	if c.OAuthTimeout <= 0 {
		return fmt.Errorf("invalid OAUTH_TIMEOUT value: %s", c.OAuthTimeout)
	}

	switch c.LeaseStore {
	case LeaseStoreMemory, LeaseStoreRedis:
	default:
		return fmt.Errorf(
			"invalid LEASE_STORE value: %q (must be one of: memory, redis)",
			c.LeaseStore,
		)
	}

	if c.EnableRateLimit {
		switch c.RateLimitStore {
		case RateLimitStoreMemory, RateLimitStoreRedis:
		default:
			return fmt.Errorf(
				"invalid RATE_LIMIT_STORE value: %q (must be one of: memory, redis)",
				c.RateLimitStore,
			)
		}
	}

	if (c.LeaseStore == LeaseStoreRedis ||
		(c.EnableRateLimit && c.RateLimitStore == RateLimitStoreRedis)) && c.RedisAddr == "" {
		return errors.New("REDIS_ADDR is required when a redis store is selected")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		if parts := splitAndTrim(value, ","); len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
