package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Config holds the core runtime configuration for a service instance.
// It supports environment-based initialization, with sensible defaults.
type Config struct {
	ServiceName string // e.g. "feed-adapter"
	Env         string // e.g. "dev", "prod"
	LogLevel    string // "debug", "info", etc.
	Port        int    // service HTTP/metrics port

	// Upstream feed
	FeedBaseURL     string // e.g. https://api.nike.com
	FeedPath        string // versioned product feed path
	PageSize        int    // count= query parameter per page
	MaxPages        int    // hard bound on cursor-following per channel
	HTTPRetryMax    int    // transport retries for 5xx feed responses
	RefreshInterval time.Duration
	Countries       []string

	// Image resolution
	ImageStrategy string // "probe" or "embedded"
	ImageBaseURL  string // probe strategy image service, e.g. https://secure-images.nike.com

	// Request budget against upstream hosts
	RequestsPerSecond int
	RequestBurst      int

	// Snapshot store
	StoreBackend string // "mongo" or "hybrid"
	MongoURI     string
	MongoDB      string
	DatabaseURL  string // hybrid backend Postgres DSN
	RedisAddr    string
	RedisDB      int

	// Eventing (optional; empty NATS URL disables publishing)
	NATSURL        string
	RefreshSubject string // NATS subject that triggers an off-schedule cycle
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName: GetEnv("SERVICE_NAME", "feed-adapter"),
		Env:         GetEnv("ENV", "dev"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		Port:        GetEnvInt("PORT", 9020),

		FeedBaseURL:     GetEnv("FEED_BASE_URL", "https://api.nike.com"),
		FeedPath:        GetEnv("FEED_PATH", "/product_feed/threads/v3/"),
		PageSize:        GetEnvInt("FEED_PAGE_SIZE", 100),
		MaxPages:        GetEnvInt("FEED_MAX_PAGES", 50),
		HTTPRetryMax:    GetEnvInt("FEED_HTTP_RETRY_MAX", 0),
		RefreshInterval: GetEnvDuration("REFRESH_INTERVAL", 6*time.Hour),
		Countries:       GetEnvList("COUNTRIES", []string{"AU", "JP", "KR", "SG", "MY", "FR", "GB", "CA", "US", "MX"}),

		ImageStrategy: GetEnv("IMAGE_STRATEGY", "probe"),
		ImageBaseURL:  GetEnv("IMAGE_BASE_URL", "https://secure-images.nike.com"),

		RequestsPerSecond: GetEnvInt("REQUESTS_PER_SECOND", 5),
		RequestBurst:      GetEnvInt("REQUEST_BURST", 10),

		StoreBackend: GetEnv("STORE_BACKEND", "mongo"),
		MongoURI:     GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:      GetEnv("MONGODB_DB", "sneakify"),
		DatabaseURL:  GetEnv("DATABASE_URL", ""),
		RedisAddr:    GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      GetEnvInt("REDIS_DB", 0),

		NATSURL:        GetEnv("NATS_URL", ""),
		RefreshSubject: GetEnv("REFRESH_SUBJECT", "cmd.catalog.refresh.v1"),
	}

	return cfg
}
