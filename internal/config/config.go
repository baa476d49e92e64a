// Package config provides configuration management for the stock bot.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Watchlist store backends.
const (
	StoreFile  = "file"
	StoreMongo = "mongo"
)

// Config holds all application configuration.
type Config struct {
	// Telegram settings
	BotToken   string
	PushChatID int64 // chat that receives scheduled report pushes

	// Reference listing settings
	ListingPath string
	ListingSkip bool

	// Watchlist storage settings
	StoreBackend string
	DataDir      string
	MongoURI     string
	MongoDB      string
	MaxWatchlist int

	// OpenAI settings
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Report settings
	ReportConcurrency int
	FetchTimeout      time.Duration
	NewsPerStock      int
	ReportPushAt      string // "HH:MM" in Asia/Seoul
	ReportOnStart     bool

	// Server settings
	HTTPAddr   string
	AdminToken string
	LogFile    string
	Debug      bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Try to load .env file
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{
		// Telegram
		BotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		PushChatID: getEnvInt64("TELEGRAM_CHAT_ID", 0),

		// Reference listing
		ListingPath: getEnv("LISTING_PATH", "./listings.csv"),
		ListingSkip: getEnvBool("LISTING_SKIP", false),

		// Watchlist storage
		StoreBackend: getEnv("STORE_BACKEND", StoreFile),
		DataDir:      getEnv("DATA_DIR", "./data/watchlists"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "stockbot"),
		MaxWatchlist: getEnvInt("MAX_WATCHLIST_SIZE", 30),

		// OpenAI
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		// Report
		ReportConcurrency: getEnvInt("REPORT_CONCURRENCY", 4),
		FetchTimeout:      getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		NewsPerStock:      getEnvInt("NEWS_PER_STOCK", 1),
		ReportPushAt:      getEnv("REPORT_PUSH_AT", "08:30"),
		ReportOnStart:     getEnvBool("REPORT_ON_START", false),

		// Server
		HTTPAddr:   getEnv("HTTP_ADDR", ":8090"),
		AdminToken: getEnv("ADMIN_TOKEN", ""),
		LogFile:    getEnv("LOG_FILE", ""),
		Debug:      getEnvBool("DEBUG", false),
	}

	return cfg, nil
}

// Validate checks if required configuration is present.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.StoreBackend != StoreFile && c.StoreBackend != StoreMongo {
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreFile, StoreMongo, c.StoreBackend)
	}
	if c.OpenAIAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set, news summaries will be disabled")
	}
	if c.PushChatID == 0 {
		log.Debug().Msg("TELEGRAM_CHAT_ID not set, scheduled report pushes are disabled")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
